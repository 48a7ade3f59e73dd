// Package eval evaluates expressions into destinations.
//
// Each call classifies the expression and destination traits into exactly one
// execution strategy and runs the matching kernel. Storage-order mismatches
// and aliasing between source and destination are resolved before the
// kernel runs.
package eval

import (
	"fmt"

	"github.com/born-ml/etl/internal/tensor"
)

// Strategy is the execution path chosen for one evaluation.
type Strategy int

// Execution strategies.
const (
	Scalar             Strategy = iota // Set/ReadFlat loop through the destination interface.
	Direct                             // Unrolled loop over destination memory.
	BulkCopy                           // copy between two equally laid out buffers.
	Vectorized                         // Peel, vector main loop, remainder.
	Parallel                           // Direct kernel on the worker pool.
	ParallelVectorized                 // Vectorized kernel on the worker pool.

	numStrategies
)

// String returns a human-readable name for the strategy.
func (s Strategy) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case Direct:
		return "direct"
	case BulkCopy:
		return "bulk-copy"
	case Vectorized:
		return "vectorized"
	case Parallel:
		return "parallel"
	case ParallelVectorized:
		return "parallel-vectorized"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{Scalar, Direct, BulkCopy, Vectorized, Parallel, ParallelVectorized}
}

// Settings is a snapshot of the tunables taken at the start of a call.
type Settings struct {
	Threshold int  // Minimum element count for the parallel strategies.
	Workers   int  // Worker count, the calling goroutine included.
	Vectorize bool // Allow the vectorized strategies.
	Unroll    bool // Unroll kernel loops by 4.
}

// Select classifies one evaluation. src and dst are the traits of the source
// expression and of the destination, n the destination size and lanes the
// register lane count for the element type.
//
// Mod and destinations without contiguous memory always run Scalar. Plain
// assignment between equally laid out buffers is a BulkCopy. Otherwise the
// parallel and vectorized choices compose: parallel wraps whichever serial
// kernel would run.
func Select(kind Kind, src, dst tensor.Traits, n int, s Settings, lanes int) Strategy {
	if kind == KindMod || !dst.DMA {
		return Scalar
	}
	if kind == KindAssign && src.DMA && src.Linear && !src.Generator && src.Order == dst.Order {
		return BulkCopy
	}

	vec := s.Vectorize && lanes > 1 && src.Vectorizable && dst.Vectorizable
	par := n >= s.Threshold && s.Workers > 1

	switch {
	case vec && par:
		return ParallelVectorized
	case vec:
		return Vectorized
	case par:
		return Parallel
	default:
		return Direct
	}
}
