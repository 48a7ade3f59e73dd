package tensor

import (
	"unsafe"

	"github.com/born-ml/etl/internal/simd"
)

// Alignment is the byte boundary of every container buffer. It covers the
// widest register of any supported ISA.
const Alignment = simd.MaxBytes

// alignedMake allocates n zeroed elements whose first element sits on an
// Alignment boundary.
func alignedMake[T Numeric](n int) []T {
	if n == 0 {
		return nil
	}
	size := simd.SizeOf[T]()
	// Allocate extra elements so that an aligned start always exists.
	buf := make([]T, n+Alignment/size)

	//nolint:gosec // address arithmetic only, nothing is dereferenced
	ptr := uintptr(unsafe.Pointer(&buf[0]))
	offset := 0
	if mod := int(ptr % Alignment); mod != 0 {
		offset = (Alignment - mod) / size
	}
	return buf[offset : offset+n : offset+n]
}

// AlignedSlice returns n zeroed elements starting on an Alignment boundary.
func AlignedSlice[T Numeric](n int) []T {
	return alignedMake[T](n)
}
