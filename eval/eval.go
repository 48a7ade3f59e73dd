// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package eval evaluates tensor expressions into destinations.
//
// Each call picks one of six execution strategies from the traits of the
// expression and the destination: a scalar loop, an unrolled loop over
// memory, a bulk copy, a vectorized loop, or either loop split across the
// worker pool. The choice never changes the result.
//
// Sources that read the memory they are written to through a non-elementwise
// view, such as the transpose of the destination, are evaluated through a
// temporary. Sources stored in another order than the destination are read
// through a reordering view.
//
// The package-level functions use the process-wide context. Its two
// tunables, the parallel threshold and the worker count, are read at the
// start of every call.
//
// Example:
//
//	eval.SetWorkers(4)
//	eval.Assign[float32](tensor.Add[float32](a, b), c)
//	eval.Mul[float32](tensor.Scalar[float32](2), c) // c *= 2
package eval

import (
	"github.com/born-ml/etl/internal/eval"
	"github.com/born-ml/etl/tensor"
)

// Strategy is the execution path chosen for one evaluation.
type Strategy = eval.Strategy

// Execution strategies.
const (
	Scalar             Strategy = eval.Scalar
	Direct             Strategy = eval.Direct
	BulkCopy           Strategy = eval.BulkCopy
	Vectorized         Strategy = eval.Vectorized
	Parallel           Strategy = eval.Parallel
	ParallelVectorized Strategy = eval.ParallelVectorized
)

// Settings holds the tunables of a Context.
type Settings = eval.Settings

// Context carries tunables, register width, worker pools and counters.
// Use a dedicated context to evaluate with settings of its own.
type Context = eval.Context

// Option configures a Context.
type Option = eval.Option

// Context options.
var (
	WithSettings  = eval.WithSettings
	WithThreshold = eval.WithThreshold
	WithWorkers   = eval.WithWorkers
	WithISA       = eval.WithISA
	WithPool      = eval.WithPool
	WithLogger    = eval.WithLogger
)

// NewContext returns a context with default settings modified by opts.
func NewContext(opts ...Option) *Context {
	return eval.NewContext(opts...)
}

// Default returns the process-wide context.
func Default() *Context {
	return eval.Default()
}

// DefaultSettings returns the default tunables.
func DefaultSettings() Settings {
	return eval.DefaultSettings()
}

// SetParallelThreshold sets the minimum element count of parallel evaluations.
func SetParallelThreshold(n int) {
	eval.Default().SetThreshold(n)
}

// ParallelThreshold returns the minimum element count of parallel evaluations.
func ParallelThreshold() int {
	return eval.Default().Settings().Threshold
}

// SetWorkers sets the number of workers of parallel evaluations, the calling
// goroutine included.
func SetWorkers(n int) {
	eval.Default().SetWorkers(n)
}

// Workers returns the number of workers of parallel evaluations.
func Workers() int {
	return eval.Default().Settings().Workers
}

// Assign evaluates dst = e.
func Assign[T tensor.Numeric](e tensor.Expr[T], dst tensor.Destination[T]) {
	eval.Assign(eval.Default(), e, dst)
}

// Add evaluates dst += e.
func Add[T tensor.Numeric](e tensor.Expr[T], dst tensor.Destination[T]) {
	eval.Add(eval.Default(), e, dst)
}

// Sub evaluates dst -= e.
func Sub[T tensor.Numeric](e tensor.Expr[T], dst tensor.Destination[T]) {
	eval.Sub(eval.Default(), e, dst)
}

// Mul evaluates dst *= e elementwise.
func Mul[T tensor.Numeric](e tensor.Expr[T], dst tensor.Destination[T]) {
	eval.Mul(eval.Default(), e, dst)
}

// Div evaluates dst /= e elementwise.
func Div[T tensor.Numeric](e tensor.Expr[T], dst tensor.Destination[T]) {
	eval.Div(eval.Default(), e, dst)
}

// Mod evaluates dst %= e elementwise, always one element at a time.
func Mod[T tensor.Numeric](e tensor.Expr[T], dst tensor.Destination[T]) {
	eval.Mod(eval.Default(), e, dst)
}

// Force computes every temporary of e without writing a destination.
func Force[T tensor.Numeric](e tensor.Expr[T]) {
	eval.Force(eval.Default(), e)
}
