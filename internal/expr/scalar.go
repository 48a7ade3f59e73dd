package expr

import (
	"github.com/born-ml/etl/internal/simd"
	"github.com/born-ml/etl/internal/tensor"
)

// Scalar is a generator yielding the same value at every index.
type Scalar[T tensor.Numeric] struct {
	value T
}

// NewScalar returns a generator broadcasting v.
func NewScalar[T tensor.Numeric](v T) *Scalar[T] {
	return &Scalar[T]{value: v}
}

// Value returns the broadcast value.
func (s *Scalar[T]) Value() T {
	return s.value
}

func (s *Scalar[T]) Children() []tensor.Node { return nil }

func (s *Scalar[T]) Dims() tensor.Shape { return nil }

func (s *Scalar[T]) Size() int { return 0 }

func (s *Scalar[T]) ReadFlat(int) T { return s.value }

func (s *Scalar[T]) Load(_, w int) simd.Vec[T] { return simd.Broadcast(s.value, w) }

func (s *Scalar[T]) Aliases(tensor.Region) bool { return false }

func (s *Scalar[T]) Traits() tensor.Traits {
	return tensor.Traits{
		Generator:    true,
		Linear:       true,
		Order:        tensor.AnyOrder,
		Fast:         true,
		Vectorizable: true,
	}
}
