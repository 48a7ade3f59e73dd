// Package tensor provides the dense container and the expression contract of
// the evaluation engine.
package tensor

import "github.com/born-ml/etl/internal/simd"

// Numeric is the constraint for element types: float32, float64, int32, int64
// and types derived from them.
type Numeric = simd.Numeric

// DataType represents runtime type information for elements.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// DataTypeOf infers the DataType of T from its underlying type.
func DataTypeOf[T Numeric]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	}
	// Named types fall through the switch above; classify by size and by
	// whether a fractional value survives a round trip.
	half := T(1) / T(2)
	switch simd.SizeOf[T]() {
	case 4:
		if half != 0 {
			return Float32
		}
		return Int32
	default:
		if half != 0 {
			return Float64
		}
		return Int64
	}
}
