package expr

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/born-ml/etl/internal/simd"
	"github.com/born-ml/etl/internal/tensor"
)

// Algorithm computes the value of a temporary into dst, which has the
// temporary's shape. It must write every element, using flat indices in
// dst.Traits().Order.
type Algorithm[T tensor.Numeric] func(dst tensor.Destination[T])

// Temporary is an expression computed as a whole by its own algorithm rather
// than element by element.
//
// Evaluated directly into a destination, the algorithm writes the destination
// itself. Nested inside another expression, the temporary is first
// materialized into a container it owns and then reads like any container.
// Materialization happens once for the life of the temporary.
type Temporary[T tensor.Numeric] struct {
	name     string
	dims     tensor.Shape
	order    tensor.Order
	fn       Algorithm[T]
	operands []tensor.Expr[T]

	once   sync.Once
	result atomic.Pointer[tensor.Dense[T]]
}

// NewTemporary returns a temporary of the given shape computed by fn from
// operands. Its storage order is the order of the first operand with one,
// row-major otherwise.
func NewTemporary[T tensor.Numeric](name string, dims tensor.Shape, fn Algorithm[T], operands ...tensor.Expr[T]) *Temporary[T] {
	if err := dims.Validate(); err != nil {
		panic(errors.Wrapf(err, "temporary %s", name).Error())
	}

	order := tensor.RowMajor
	for _, op := range operands {
		if o := op.Traits().Order; o != tensor.AnyOrder {
			order = o
			break
		}
	}

	return &Temporary[T]{
		name:     name,
		dims:     dims.Clone(),
		order:    order,
		fn:       fn,
		operands: operands,
	}
}

// Name returns the name given at construction.
func (t *Temporary[T]) Name() string {
	return t.name
}

// Materialized reports whether the owned result has been computed.
func (t *Temporary[T]) Materialized() bool {
	return t.result.Load() != nil
}

// Materialize computes the owned result if it does not exist yet and reports
// whether this call computed it.
func (t *Temporary[T]) Materialize() bool {
	created := false
	t.once.Do(func() {
		for _, op := range t.operands {
			Force(op)
		}
		res, err := tensor.FromSize[T](t.order, t.dims.NumElements(), t.dims)
		if err != nil {
			panic(errors.Wrapf(err, "temporary %s", t.name).Error())
		}
		t.fn(res)
		t.result.Store(res)
		created = true
	})
	return created
}

// DirectEvaluate computes the temporary into dst. When an operand reads the
// memory of dst, the temporary is materialized first and then copied.
func (t *Temporary[T]) DirectEvaluate(dst tensor.Destination[T]) {
	if res := t.result.Load(); res != nil {
		copyInto[T](dst, res)
		return
	}

	for _, op := range t.operands {
		Force(op)
	}
	region := dst.Region()
	for _, op := range t.operands {
		if op.Aliases(region) {
			t.Materialize()
			copyInto[T](dst, t.result.Load())
			return
		}
	}
	t.fn(dst)
}

func copyInto[T tensor.Numeric](dst tensor.Destination[T], src tensor.Expr[T]) {
	src = Reorder(src, dst.Traits().Order)
	for i, n := 0, dst.Size(); i < n; i++ {
		dst.Set(i, src.ReadFlat(i))
	}
}

func (t *Temporary[T]) materialized() *tensor.Dense[T] {
	res := t.result.Load()
	if res == nil {
		panic(fmt.Sprintf("expr: temporary %s read before materialization", t.name))
	}
	return res
}

// Children returns the operands.
func (t *Temporary[T]) Children() []tensor.Node {
	nodes := make([]tensor.Node, len(t.operands))
	for i, op := range t.operands {
		nodes[i] = op
	}
	return nodes
}

func (t *Temporary[T]) Dims() tensor.Shape {
	return t.dims
}

func (t *Temporary[T]) Size() int {
	return t.dims.NumElements()
}

func (t *Temporary[T]) ReadFlat(i int) T {
	return t.materialized().At(i)
}

func (t *Temporary[T]) Load(i, w int) simd.Vec[T] {
	return t.materialized().Load(i, w)
}

func (t *Temporary[T]) Memory() []T {
	return t.materialized().Memory()
}

// Traits reports a temporary until materialization, the traits of the owned
// container afterwards.
func (t *Temporary[T]) Traits() tensor.Traits {
	if res := t.result.Load(); res != nil {
		return res.Traits()
	}
	return tensor.Traits{Order: t.order, Temporary: true}
}

// Aliases reports whether the operands read memory in r. Once materialized
// the temporary only reads its own container.
func (t *Temporary[T]) Aliases(r tensor.Region) bool {
	if res := t.result.Load(); res != nil {
		return res.Aliases(r)
	}
	for _, op := range t.operands {
		if op.Aliases(r) {
			return true
		}
	}
	return false
}
