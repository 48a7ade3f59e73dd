package eval

import (
	"fmt"
	"unsafe"

	"github.com/born-ml/etl/internal/expr"
	"github.com/born-ml/etl/internal/simd"
	"github.com/born-ml/etl/internal/tensor"
)

// Kind is the operator an evaluation applies to the destination.
type Kind int

// Operator kinds.
const (
	KindAssign Kind = iota // dst = e
	KindAdd                // dst += e
	KindSub                // dst -= e
	KindMul                // dst *= e
	KindDiv                // dst /= e
	KindMod                // dst %= e
)

func (k Kind) String() string {
	switch k {
	case KindAssign:
		return "assign"
	case KindAdd:
		return "add"
	case KindSub:
		return "sub"
	case KindMul:
		return "mul"
	case KindDiv:
		return "div"
	case KindMod:
		return "mod"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// operator combines the current destination value l with the source value r.
// Implementations are zero-size so kernels are specialized per operator.
type operator[T tensor.Numeric] interface {
	kind() Kind
	apply(l, r T) T
	applyVec(l, r simd.Vec[T]) simd.Vec[T]
}

type assignOp[T tensor.Numeric] struct{}

func (assignOp[T]) kind() Kind                            { return KindAssign }
func (assignOp[T]) apply(_, r T) T                        { return r }
func (assignOp[T]) applyVec(_, r simd.Vec[T]) simd.Vec[T] { return r }

type addOp[T tensor.Numeric] struct{}

func (addOp[T]) kind() Kind                            { return KindAdd }
func (addOp[T]) apply(l, r T) T                        { return l + r }
func (addOp[T]) applyVec(l, r simd.Vec[T]) simd.Vec[T] { return simd.Add(l, r) }

type subOp[T tensor.Numeric] struct{}

func (subOp[T]) kind() Kind                            { return KindSub }
func (subOp[T]) apply(l, r T) T                        { return l - r }
func (subOp[T]) applyVec(l, r simd.Vec[T]) simd.Vec[T] { return simd.Sub(l, r) }

type mulOp[T tensor.Numeric] struct{}

func (mulOp[T]) kind() Kind                            { return KindMul }
func (mulOp[T]) apply(l, r T) T                        { return l * r }
func (mulOp[T]) applyVec(l, r simd.Vec[T]) simd.Vec[T] { return simd.Mul(l, r) }

type divOp[T tensor.Numeric] struct{}

func (divOp[T]) kind() Kind                            { return KindDiv }
func (divOp[T]) apply(l, r T) T                        { return l / r }
func (divOp[T]) applyVec(l, r simd.Vec[T]) simd.Vec[T] { return simd.Div(l, r) }

type modOp[T tensor.Numeric] struct{}

func (modOp[T]) kind() Kind     { return KindMod }
func (modOp[T]) apply(l, r T) T { return expr.Rem(l, r) }
func (modOp[T]) applyVec(simd.Vec[T], simd.Vec[T]) simd.Vec[T] {
	panic("eval: mod has no vector form")
}

// standardLoop evaluates through the destination interface, one element at a time.
func standardLoop[T tensor.Numeric, O operator[T]](dst tensor.Destination[T], src tensor.Expr[T], n int) {
	var op O
	if op.kind() == KindAssign {
		for i := 0; i < n; i++ {
			dst.Set(i, src.ReadFlat(i))
		}
		return
	}
	for i := 0; i < n; i++ {
		dst.Set(i, op.apply(dst.ReadFlat(i), src.ReadFlat(i)))
	}
}

// scalarKernel evaluates a tile directly into destination memory.
type scalarKernel[T tensor.Numeric, O operator[T]] struct {
	dst    []T
	src    tensor.Expr[T]
	unroll bool
}

func (k *scalarKernel[T, O]) run(first, last int) {
	var op O
	dst, src := k.dst, k.src

	i := first
	if k.unroll {
		for ; i+4 <= last; i += 4 {
			dst[i] = op.apply(dst[i], src.ReadFlat(i))
			dst[i+1] = op.apply(dst[i+1], src.ReadFlat(i+1))
			dst[i+2] = op.apply(dst[i+2], src.ReadFlat(i+2))
			dst[i+3] = op.apply(dst[i+3], src.ReadFlat(i+3))
		}
	}
	for ; i < last; i++ {
		dst[i] = op.apply(dst[i], src.ReadFlat(i))
	}
}

// VectorLoop is the three-phase loop run over one tile by the vectorized
// strategies.
type VectorLoop interface {
	// Peel processes the leading elements of [first, last) one at a time
	// until the destination is register aligned and returns the next index.
	Peel(first, last int) int

	// Aligned reports whether the destination at index i is register aligned.
	Aligned(i int) bool

	// MainAligned processes full registers of [first, last) with aligned
	// stores and returns the first index left over.
	MainAligned(first, last int) int

	// MainUnaligned is MainAligned with unaligned stores.
	MainUnaligned(first, last int) int

	// Remainder processes [first, last) one element at a time.
	Remainder(first, last int)
}

// runVector runs the phases of k over [first, last). Alignment is checked
// once, after the peel.
func runVector(k VectorLoop, first, last int) {
	i := k.Peel(first, last)
	if i < last && k.Aligned(i) {
		i = k.MainAligned(i, last)
	} else {
		i = k.MainUnaligned(i, last)
	}
	k.Remainder(i, last)
}

// vectorKernel implements VectorLoop for operator O over destination memory.
type vectorKernel[T tensor.Numeric, O operator[T]] struct {
	dst    []T
	src    tensor.Expr[T]
	load   tensor.Loader[T]
	lanes  int
	unroll bool
}

var _ VectorLoop = (*vectorKernel[float32, addOp[float32]])(nil)

func newVectorKernel[T tensor.Numeric, O operator[T]](dst []T, src tensor.Expr[T], lanes int, unroll bool) *vectorKernel[T, O] {
	return &vectorKernel[T, O]{
		dst:    dst,
		src:    src,
		load:   src.(tensor.Loader[T]),
		lanes:  lanes,
		unroll: unroll,
	}
}

func (k *vectorKernel[T, O]) laneBytes() uintptr {
	return uintptr(k.lanes * simd.SizeOf[T]())
}

// peelCount returns how many elements separate dst[first] from the next
// register boundary, bounded by the tile. A misalignment that is not a whole
// number of elements can never be fixed by peeling.
func (k *vectorKernel[T, O]) peelCount(first, last int) int {
	if first >= last {
		return 0
	}
	size := uintptr(simd.SizeOf[T]())
	//nolint:gosec // address arithmetic only, nothing is dereferenced
	mis := uintptr(unsafe.Pointer(&k.dst[first])) % k.laneBytes()
	if mis == 0 || mis%size != 0 {
		return 0
	}
	return min(int((k.laneBytes()-mis)/size), last-first)
}

func (k *vectorKernel[T, O]) Peel(first, last int) int {
	n := k.peelCount(first, last)
	k.Remainder(first, first+n)
	return first + n
}

func (k *vectorKernel[T, O]) Aligned(i int) bool {
	//nolint:gosec // address arithmetic only, nothing is dereferenced
	return uintptr(unsafe.Pointer(&k.dst[i]))%k.laneBytes() == 0
}

func (k *vectorKernel[T, O]) MainAligned(first, last int) int {
	return k.main(first, last, simd.Store[T])
}

func (k *vectorKernel[T, O]) MainUnaligned(first, last int) int {
	return k.main(first, last, simd.StoreU[T])
}

func (k *vectorKernel[T, O]) main(first, last int, store func([]T, simd.Vec[T])) int {
	w := k.lanes
	i := first
	if k.unroll {
		for ; i+4*w <= last; i += 4 * w {
			k.step(i, store)
			k.step(i+w, store)
			k.step(i+2*w, store)
			k.step(i+3*w, store)
		}
	}
	for ; i+w <= last; i += w {
		k.step(i, store)
	}
	return i
}

// step combines one register of the destination with one register of the source.
func (k *vectorKernel[T, O]) step(i int, store func([]T, simd.Vec[T])) {
	var op O
	w := k.lanes
	r := k.load.Load(i, w)
	var l simd.Vec[T]
	if op.kind() != KindAssign {
		l = simd.Load(k.dst[i:], w)
	}
	store(k.dst[i:], op.applyVec(l, r))
}

func (k *vectorKernel[T, O]) Remainder(first, last int) {
	var op O
	for i := first; i < last; i++ {
		k.dst[i] = op.apply(k.dst[i], k.src.ReadFlat(i))
	}
}
