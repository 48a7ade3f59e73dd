package expr

import (
	"fmt"

	"github.com/born-ml/etl/internal/tensor"
)

// Transpose is the logical transpose of a 2-D expression, stored in the same
// order as its operand. It is not linear: its flat index i maps to a
// different flat index of the operand.
//
// When the operand is a destination, the transpose is writable and can be
// evaluated into. It exposes no contiguous memory.
type Transpose[T tensor.Numeric] struct {
	sub  tensor.Expr[T]
	rows int // Rows of the operand.
	cols int // Columns of the operand.
}

// NewTranspose returns the transpose of sub. Panics unless sub is 2-D.
func NewTranspose[T tensor.Numeric](sub tensor.Expr[T]) *Transpose[T] {
	dims := sub.Dims()
	if len(dims) != 2 {
		panic(fmt.Sprintf("expr: transpose requires 2 dimensions, got %v", dims))
	}
	return &Transpose[T]{sub: sub, rows: dims[0], cols: dims[1]}
}

// flat maps the flat index i of the transpose to the flat index of the operand.
func (t *Transpose[T]) flat(i int) int {
	if t.sub.Traits().Order == tensor.ColumnMajor {
		r, c := i%t.cols, i/t.cols
		return c + r*t.rows
	}
	r, c := i/t.rows, i%t.rows
	return c*t.cols + r
}

func (t *Transpose[T]) Children() []tensor.Node {
	return []tensor.Node{t.sub}
}

// Dims returns the operand dimensions swapped.
func (t *Transpose[T]) Dims() tensor.Shape {
	return tensor.Shape{t.cols, t.rows}
}

func (t *Transpose[T]) Size() int {
	return t.rows * t.cols
}

func (t *Transpose[T]) ReadFlat(i int) T {
	return t.sub.ReadFlat(t.flat(i))
}

// Set writes through to the operand. Panics when the operand is read-only.
func (t *Transpose[T]) Set(i int, v T) {
	t.destination().Set(t.flat(i), v)
}

// Region returns the memory written through Set.
func (t *Transpose[T]) Region() tensor.Region {
	return t.destination().Region()
}

func (t *Transpose[T]) destination() tensor.Destination[T] {
	dst, ok := t.sub.(tensor.Destination[T])
	if !ok {
		panic(fmt.Sprintf("expr: transpose of %T is not writable", t.sub))
	}
	return dst
}

// Traits reports a non-linear, non-vectorizable view in the operand's order.
func (t *Transpose[T]) Traits() tensor.Traits {
	return tensor.Traits{Order: t.sub.Traits().Order}
}

func (t *Transpose[T]) Aliases(r tensor.Region) bool {
	return t.sub.Aliases(r)
}
