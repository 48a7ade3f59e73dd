package tensor

import "unsafe"

// Region is the half-open address range [Start, End) of a memory block.
type Region struct {
	Start uintptr
	End   uintptr
}

// RegionOf returns the address range covered by s.
func RegionOf[T Numeric](s []T) Region {
	if len(s) == 0 {
		return Region{}
	}
	//nolint:gosec // address arithmetic only, nothing is dereferenced
	start := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	return Region{Start: start, End: start + uintptr(len(s))*unsafe.Sizeof(s[0])}
}

// Empty reports whether the region covers no bytes.
func (r Region) Empty() bool {
	return r.End <= r.Start
}

// Overlaps reports whether r and o share at least one byte.
func (r Region) Overlaps(o Region) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Start < o.End && o.Start < r.End
}
