package tensor

import "github.com/born-ml/etl/internal/simd"

// Traits describes the static capabilities of an expression or container.
// The evaluator chooses an execution strategy from the traits of the source
// expression and of the destination, never from their concrete types.
type Traits struct {
	Generator    bool  // No backing memory; every index yields a computed value.
	Linear       bool  // Evaluation order of indices does not affect the result.
	Order        Order // Storage order of the flat index space.
	Fast         bool  // Shape fixed at construction (generators only here).
	DMA          bool  // Exposes contiguous memory through Memory.
	Vectorizable bool  // Supports Load.
	Temporary    bool  // Only evaluable by an algorithm writing its own output.
}

// Node is an element of an expression tree.
type Node interface {
	// Children returns the direct sub-expressions.
	Children() []Node
}

// Expr is the read side of an evaluation.
//
// Expressions are immutable trees; they may wrap memory they do not own.
type Expr[T Numeric] interface {
	Node

	// Dims returns the extent of each dimension. Generators return nil.
	Dims() Shape

	// Size returns the number of elements. Generators return 0.
	Size() int

	// ReadFlat returns the element at flat index i. It never mutates state.
	ReadFlat(i int) T

	// Traits returns the capability descriptor.
	Traits() Traits

	// Aliases reports whether any memory read by the expression overlaps r.
	Aliases(r Region) bool
}

// Loader is implemented by expressions whose Traits report Vectorizable.
type Loader[T Numeric] interface {
	// Load returns w elements starting at flat index i. It never mutates state.
	Load(i, w int) simd.Vec[T]
}

// Memory is implemented by expressions whose Traits report DMA.
type Memory[T Numeric] interface {
	Memory() []T
}

// Destination is the write side of an evaluation.
type Destination[T Numeric] interface {
	Expr[T]

	// Set writes v at flat index i.
	Set(i int, v T)

	// Region returns the memory written through Set.
	Region() Region
}
