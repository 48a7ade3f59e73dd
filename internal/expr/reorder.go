package expr

import (
	"github.com/born-ml/etl/internal/tensor"
)

// maxInlineDims bounds the multi-index kept on the stack by reorder reads.
const maxInlineDims = 8

// reorderView presents an expression in another storage order: flat index i
// of the view is the element at the same multi-index of the operand.
type reorderView[T tensor.Numeric] struct {
	sub     tensor.Expr[T]
	order   tensor.Order
	strides []int // Operand strides in its own order.
}

// Reorder returns e read in the given storage order. Generators and
// expressions already in a compatible order are returned unchanged.
func Reorder[T tensor.Numeric](e tensor.Expr[T], order tensor.Order) tensor.Expr[T] {
	if e.Traits().Generator || e.Traits().Order.Compatible(order) {
		return e
	}
	return &reorderView[T]{
		sub:     e,
		order:   order,
		strides: e.Dims().Strides(e.Traits().Order),
	}
}

func (v *reorderView[T]) Children() []tensor.Node {
	return []tensor.Node{v.sub}
}

func (v *reorderView[T]) Dims() tensor.Shape {
	return v.sub.Dims()
}

func (v *reorderView[T]) Size() int {
	return v.sub.Size()
}

func (v *reorderView[T]) ReadFlat(i int) T {
	dims := v.sub.Dims()

	var buf [maxInlineDims]int
	var idx []int
	if len(dims) <= maxInlineDims {
		idx = buf[:len(dims)]
	} else {
		idx = make([]int, len(dims))
	}
	dims.Unravel(v.order, i, idx)

	flat := 0
	for d, x := range idx {
		flat += x * v.strides[d]
	}
	return v.sub.ReadFlat(flat)
}

func (v *reorderView[T]) Traits() tensor.Traits {
	return tensor.Traits{Order: v.order}
}

func (v *reorderView[T]) Aliases(r tensor.Region) bool {
	return v.sub.Aliases(r)
}
