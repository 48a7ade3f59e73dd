package simd

import (
	"fmt"
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
)

// Vec is a register of w lanes. A register wider than the native hwy vector
// is held as consecutive hwy vectors, the last one padded.
type Vec[T Numeric] struct {
	parts []hwy.Vec[T]
	width int
}

// NativeLanes returns the lane count of one hwy vector of T.
func NativeLanes[T Numeric]() int {
	return max(hwy.NumLanes[T](), 1)
}

// Width returns the number of meaningful lanes.
func (v Vec[T]) Width() int {
	return v.width
}

// Values returns the meaningful lanes as a new slice.
func (v Vec[T]) Values() []T {
	out := make([]T, v.width)
	StoreU(out, v)
	return out
}

// Load reads w lanes starting at src[0].
func Load[T Numeric](src []T, w int) Vec[T] {
	n := NativeLanes[T]()
	v := Vec[T]{parts: make([]hwy.Vec[T], 0, (w+n-1)/n), width: w}
	for lo := 0; lo < w; lo += n {
		hi := lo + n
		if hi <= w {
			v.parts = append(v.parts, hwy.Load(src[lo:hi]))
			continue
		}
		pad := make([]T, n)
		copy(pad, src[lo:w])
		v.parts = append(v.parts, hwy.Load(pad))
	}
	return v
}

// Broadcast returns a register with x in all w lanes.
func Broadcast[T Numeric](x T, w int) Vec[T] {
	n := NativeLanes[T]()
	v := Vec[T]{parts: make([]hwy.Vec[T], (w+n-1)/n), width: w}
	for k := range v.parts {
		v.parts[k] = hwy.Set(x)
	}
	return v
}

// Store writes v to dst, which must start on a register boundary.
// A misaligned address panics, as an aligned store instruction would fault.
func Store[T Numeric](dst []T, v Vec[T]) {
	laneBytes := uintptr(v.width * SizeOf[T]())
	//nolint:gosec // address arithmetic only, nothing is dereferenced
	if addr := uintptr(unsafe.Pointer(&dst[0])); addr%laneBytes != 0 {
		panic(fmt.Sprintf("simd: aligned store to %#x is not %d-byte aligned", addr, laneBytes))
	}
	StoreU(dst, v)
}

// StoreU writes v to dst without alignment requirement.
func StoreU[T Numeric](dst []T, v Vec[T]) {
	n := NativeLanes[T]()
	for k, part := range v.parts {
		lo := k * n
		hi := lo + n
		if hi <= v.width {
			hwy.Store(part, dst[lo:hi])
			continue
		}
		pad := make([]T, n)
		hwy.Store(part, pad)
		copy(dst[lo:v.width], pad)
	}
}

func lanewise[T Numeric](a, b Vec[T], op func(x, y hwy.Vec[T]) hwy.Vec[T]) Vec[T] {
	if a.width != b.width {
		panic(fmt.Sprintf("simd: register widths differ: %d and %d", a.width, b.width))
	}
	r := Vec[T]{parts: make([]hwy.Vec[T], len(a.parts)), width: a.width}
	for k := range a.parts {
		r.parts[k] = op(a.parts[k], b.parts[k])
	}
	return r
}

// Add returns a + b lane-wise.
func Add[T Numeric](a, b Vec[T]) Vec[T] {
	return lanewise(a, b, hwy.Add[T])
}

// Sub returns a - b lane-wise.
func Sub[T Numeric](a, b Vec[T]) Vec[T] {
	return lanewise(a, b, hwy.Sub[T])
}

// Mul returns a * b lane-wise.
func Mul[T Numeric](a, b Vec[T]) Vec[T] {
	return lanewise(a, b, hwy.Mul[T])
}

// Div returns a / b lane-wise. Integer lanes are divided one at a time so a
// zero divisor panics like the scalar operator.
func Div[T Numeric](a, b Vec[T]) Vec[T] {
	switch x := any(a).(type) {
	case Vec[float32]:
		return any(lanewise(x, any(b).(Vec[float32]), hwy.Div[float32])).(Vec[T])
	case Vec[float64]:
		return any(lanewise(x, any(b).(Vec[float64]), hwy.Div[float64])).(Vec[T])
	}
	l, r := a.Values(), b.Values()
	for i := range l {
		l[i] /= r[i]
	}
	return Load(l, a.width)
}
