// Package expr implements the expression nodes consumed by the evaluator:
// elementwise binary operations, scalar generators, logical transposes,
// storage-order views and temporaries computed by their own algorithm.
//
// Expressions are immutable trees over containers they do not own. Nothing
// is computed until an expression is evaluated into a destination.
package expr

import (
	"fmt"
	"math"

	"github.com/born-ml/etl/internal/simd"
	"github.com/born-ml/etl/internal/tensor"
)

// Op is an elementwise binary operation.
type Op int

// Binary operations.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// String returns the operator symbol.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Rem returns the remainder of a / b. Floating-point types follow math.Mod,
// integer types truncate toward zero like the % operator.
func Rem[T tensor.Numeric](a, b T) T {
	if tensor.DataTypeOf[T]().IsFloat() {
		return T(math.Mod(float64(a), float64(b)))
	}
	return T(int64(a) % int64(b))
}

// Apply computes a op b.
func Apply[T tensor.Numeric](op Op, a, b T) T {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	case OpMod:
		return Rem(a, b)
	default:
		panic(fmt.Sprintf("expr: unknown operation %v", op))
	}
}

// Binary is the elementwise combination of two expressions of the same shape.
type Binary[T tensor.Numeric] struct {
	op    Op
	lhs   tensor.Expr[T]
	rhs   tensor.Expr[T]
	dims  tensor.Shape
	order tensor.Order
}

// NewBinary returns lhs op rhs. A generator operand takes the shape of the
// other one. When the operands are stored in different orders the right one
// is read through a Reorder view. Panics when the shapes differ.
func NewBinary[T tensor.Numeric](op Op, lhs, rhs tensor.Expr[T]) *Binary[T] {
	ld, rd := lhs.Dims(), rhs.Dims()
	if ld != nil && rd != nil && !ld.Equal(rd) {
		panic(fmt.Sprintf("expr: shape mismatch %v %v %v", ld, op, rd))
	}
	dims := ld
	if dims == nil {
		dims = rd
	}

	order := lhs.Traits().Order
	if ro := rhs.Traits().Order; order == tensor.AnyOrder {
		order = ro
	} else if !ro.Compatible(order) {
		rhs = Reorder(rhs, order)
	}

	return &Binary[T]{op: op, lhs: lhs, rhs: rhs, dims: dims, order: order}
}

// Add returns lhs + rhs.
func Add[T tensor.Numeric](lhs, rhs tensor.Expr[T]) *Binary[T] {
	return NewBinary(OpAdd, lhs, rhs)
}

// Sub returns lhs - rhs.
func Sub[T tensor.Numeric](lhs, rhs tensor.Expr[T]) *Binary[T] {
	return NewBinary(OpSub, lhs, rhs)
}

// Mul returns the elementwise product lhs * rhs.
func Mul[T tensor.Numeric](lhs, rhs tensor.Expr[T]) *Binary[T] {
	return NewBinary(OpMul, lhs, rhs)
}

// Div returns the elementwise quotient lhs / rhs.
func Div[T tensor.Numeric](lhs, rhs tensor.Expr[T]) *Binary[T] {
	return NewBinary(OpDiv, lhs, rhs)
}

// Mod returns the elementwise remainder lhs % rhs.
func Mod[T tensor.Numeric](lhs, rhs tensor.Expr[T]) *Binary[T] {
	return NewBinary(OpMod, lhs, rhs)
}

// Op returns the operation.
func (b *Binary[T]) Op() Op {
	return b.op
}

// Children returns both operands.
func (b *Binary[T]) Children() []tensor.Node {
	return []tensor.Node{b.lhs, b.rhs}
}

// Dims returns the common shape of the operands.
func (b *Binary[T]) Dims() tensor.Shape {
	return b.dims
}

// Size returns the number of elements, 0 when both operands are generators.
func (b *Binary[T]) Size() int {
	if b.dims == nil {
		return 0
	}
	return b.dims.NumElements()
}

// ReadFlat returns lhs[i] op rhs[i].
func (b *Binary[T]) ReadFlat(i int) T {
	return Apply(b.op, b.lhs.ReadFlat(i), b.rhs.ReadFlat(i))
}

// Load returns w lanes of lhs op rhs starting at i.
func (b *Binary[T]) Load(i, w int) simd.Vec[T] {
	l := b.lhs.(tensor.Loader[T]).Load(i, w)
	r := b.rhs.(tensor.Loader[T]).Load(i, w)
	switch b.op {
	case OpAdd:
		return simd.Add(l, r)
	case OpSub:
		return simd.Sub(l, r)
	case OpMul:
		return simd.Mul(l, r)
	case OpDiv:
		return simd.Div(l, r)
	default:
		panic(fmt.Sprintf("expr: operation %v has no vector form", b.op))
	}
}

// Traits combines the traits of the operands. They are recomputed on every
// call since a nested temporary changes its traits once materialized.
func (b *Binary[T]) Traits() tensor.Traits {
	lt, rt := b.lhs.Traits(), b.rhs.Traits()
	return tensor.Traits{
		Generator:    lt.Generator && rt.Generator,
		Linear:       lt.Linear && rt.Linear,
		Order:        b.order,
		Fast:         lt.Fast && rt.Fast,
		Vectorizable: lt.Vectorizable && rt.Vectorizable && b.op != OpMod,
	}
}

// Aliases reports whether either operand reads memory in r.
func (b *Binary[T]) Aliases(r tensor.Region) bool {
	return b.lhs.Aliases(r) || b.rhs.Aliases(r)
}
