// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense containers and lazy expressions over them.
//
// # Overview
//
// Expressions describe a computation without running it:
//   - Elementwise arithmetic (Add, Sub, Mul, Div, Mod)
//   - Scalar broadcasting (Scalar)
//   - Logical 2-D transposes, readable and writable (Transpose)
//   - Whole-result algorithms such as matrix products (MatMul, NewTemporary)
//
// Nothing is computed until an expression is evaluated into a destination
// with the eval package, which picks the execution strategy.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/etl/eval"
//	    "github.com/born-ml/etl/tensor"
//	)
//
//	func main() {
//	    a, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.RowMajor, 3)
//	    b, _ := tensor.FromSlice([]float32{10, 20, 30}, tensor.RowMajor, 3)
//	    c, _ := tensor.New[float32](tensor.RowMajor, 3)
//
//	    eval.Assign[float32](tensor.Add[float32](a, b), c) // c = [11 22 33]
//	}
//
// # Element Types
//
// Containers hold float32, float64, int32 or int64 elements, or any type
// defined on one of them.
package tensor
