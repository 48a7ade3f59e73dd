// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/etl/internal/accel"
	"github.com/born-ml/etl/internal/expr"
	"github.com/born-ml/etl/internal/tensor"
)

// Numeric is the set of element types supported by containers and expressions.
type Numeric = tensor.Numeric

// DataType identifies an element type.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// DataTypeOf returns the data type of T.
func DataTypeOf[T Numeric]() DataType {
	return tensor.DataTypeOf[T]()
}

// Order is the storage order of a container.
type Order = tensor.Order

// Storage orders.
const (
	RowMajor    Order = tensor.RowMajor
	ColumnMajor Order = tensor.ColumnMajor
	AnyOrder    Order = tensor.AnyOrder
)

// Shape represents the dimensions of a container or expression.
// Example: Shape{2, 3, 4} represents a 3D container with dimensions 2×3×4.
type Shape = tensor.Shape

// Region is an address range read or written by an expression.
type Region = tensor.Region

// Traits describes the capabilities of an expression.
type Traits = tensor.Traits

// Expr is an expression that can be evaluated.
type Expr[T Numeric] = tensor.Expr[T]

// Destination is an expression that can be evaluated into.
type Destination[T Numeric] = tensor.Destination[T]

// Dense is a container with runtime dimensions and an owned, aligned buffer.
//
// Example:
//
//	m, err := tensor.New[float64](tensor.RowMajor, 2, 3)
//	m.Put(1.5, 1, 2)
//	fmt.Println(m.Rows(), m.Columns(), m.Get(1, 2)) // 2 3 1.5
type Dense[T Numeric] = tensor.Dense[T]

// Mirror is the accelerator copy of a container.
type Mirror = accel.Mirror

// Device is an accelerator able to hold a container's copy.
type Device = accel.Device

// Buffer is an opaque device allocation.
type Buffer = accel.Buffer

// HostDevice is a memory-backed Device that counts every transfer.
type HostDevice = accel.HostDevice

// MirrorOption configures a mirror.
type MirrorOption = accel.MirrorOption

// NewMirror returns a mirror backed by dev, to attach with Dense.SetMirror.
//
// Example:
//
//	m, _ := tensor.New[float32](tensor.RowMajor, 4)
//	_ = m.SetMirror(tensor.NewMirror(tensor.NewHostDevice()))
//	m.EnsureDeviceCurrent()
func NewMirror(dev Device, opts ...MirrorOption) Mirror {
	return accel.NewMirror(dev, opts...)
}

// NewHostDevice returns a memory-backed device.
func NewHostDevice() *HostDevice {
	return accel.NewHostDevice()
}

// NullMirror returns the mirror of containers without an accelerator.
func NullMirror() Mirror {
	return accel.Null()
}

// Creation functions

// New returns a zero-filled container with the given dimensions.
func New[T Numeric](order Order, dims ...int) (*Dense[T], error) {
	return tensor.New[T](order, dims...)
}

// FromSize returns a zero-filled container of size elements with the given
// dimensions. size must equal the product of dims.
func FromSize[T Numeric](order Order, size int, dims Shape) (*Dense[T], error) {
	return tensor.FromSize[T](order, size, dims)
}

// FromSlice returns a container holding a copy of data, laid out in order.
func FromSlice[T Numeric](data []T, order Order, dims ...int) (*Dense[T], error) {
	return tensor.FromSlice(data, order, dims...)
}

// Empty returns a container of d dimensions, all of extent 0.
func Empty[T Numeric](d int, order Order) *Dense[T] {
	return tensor.Empty[T](d, order)
}

// Like returns a zero-filled container with the dimensions of e.
func Like[T Numeric](e Expr[T], order Order) *Dense[T] {
	return tensor.Like(e, order)
}

// Expressions

// Add returns the lazy elementwise sum lhs + rhs.
func Add[T Numeric](lhs, rhs Expr[T]) Expr[T] {
	return expr.Add(lhs, rhs)
}

// Sub returns the lazy elementwise difference lhs - rhs.
func Sub[T Numeric](lhs, rhs Expr[T]) Expr[T] {
	return expr.Sub(lhs, rhs)
}

// Mul returns the lazy elementwise product lhs * rhs.
func Mul[T Numeric](lhs, rhs Expr[T]) Expr[T] {
	return expr.Mul(lhs, rhs)
}

// Div returns the lazy elementwise quotient lhs / rhs.
func Div[T Numeric](lhs, rhs Expr[T]) Expr[T] {
	return expr.Div(lhs, rhs)
}

// Mod returns the lazy elementwise remainder lhs % rhs.
func Mod[T Numeric](lhs, rhs Expr[T]) Expr[T] {
	return expr.Mod(lhs, rhs)
}

// Scalar returns an expression yielding v at every index.
func Scalar[T Numeric](v T) Expr[T] {
	return expr.NewScalar(v)
}

// Transpose returns the logical transpose of a 2-D expression. Transposing a
// destination gives a destination.
func Transpose[T Numeric](e Expr[T]) Destination[T] {
	return expr.NewTranspose(e)
}

// Temporary is an expression computed as a whole by its own algorithm.
type Temporary[T Numeric] = expr.Temporary[T]

// Algorithm computes a temporary into its destination.
type Algorithm[T Numeric] = expr.Algorithm[T]

// NewTemporary returns a temporary of the given shape computed by fn from operands.
func NewTemporary[T Numeric](name string, dims Shape, fn Algorithm[T], operands ...Expr[T]) *Temporary[T] {
	return expr.NewTemporary(name, dims, fn, operands...)
}

// MatMul returns the matrix product of two 2-D expressions.
//
// Example:
//
//	c, _ := tensor.New[float32](tensor.RowMajor, a.Rows(), b.Columns())
//	eval.Assign[float32](tensor.MatMul[float32](a, b), c)
func MatMul[T Numeric](a, b Expr[T]) *Temporary[T] {
	return expr.MatMul(a, b)
}
