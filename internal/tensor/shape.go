package tensor

import "fmt"

// Order is the storage order of a container's elements.
type Order int

// Storage orders.
const (
	RowMajor    Order = iota // Last index varies fastest.
	ColumnMajor              // First index varies fastest.
	AnyOrder                 // Generators: compatible with every order.
)

// String returns a human-readable name for the order.
func (o Order) String() string {
	switch o {
	case RowMajor:
		return "row-major"
	case ColumnMajor:
		return "column-major"
	case AnyOrder:
		return "any"
	default:
		return "unknown"
	}
}

// Compatible reports whether data laid out in o can be copied index by index
// into a destination laid out in dst.
func (o Order) Compatible(dst Order) bool {
	return o == AnyOrder || dst == AnyOrder || o == dst
}

// Shape represents the dimensions of a container or expression.
type Shape []int

// NumElements returns the product of the dimensions.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape has at least one dimension and no negative extent.
// Zero extents are allowed: they describe an empty container.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shape must have at least one dimension")
	}
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Strides calculates the element strides of the shape laid out in order.
// AnyOrder is treated as row-major.
func (s Shape) Strides(order Order) []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	if order == ColumnMajor {
		strides[0] = 1
		for i := 1; i < len(s); i++ {
			strides[i] = strides[i-1] * s[i-1]
		}
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Offset returns the flat position of idx in a container of this shape laid
// out in order. Panics when idx is out of bounds.
func (s Shape) Offset(order Order, idx []int) int {
	if len(idx) != len(s) {
		panic(fmt.Sprintf("index %v has %d components, shape %v has %d", idx, len(idx), s, len(s)))
	}
	strides := s.Strides(order)
	flat := 0
	for d, i := range idx {
		if i < 0 || i >= s[d] {
			panic(fmt.Sprintf("index %v out of bounds for shape %v", idx, s))
		}
		flat += i * strides[d]
	}
	return flat
}

// Unravel converts the flat position i in order into a multi-index, written to idx.
func (s Shape) Unravel(order Order, i int, idx []int) {
	if order == ColumnMajor {
		for d := 0; d < len(s); d++ {
			idx[d] = i % s[d]
			i /= s[d]
		}
		return
	}
	for d := len(s) - 1; d >= 0; d-- {
		idx[d] = i % s[d]
		i /= s[d]
	}
}
