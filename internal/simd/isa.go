// Package simd provides the vector registers used by the vectorized evaluation
// kernels on top of go-highway's portable hwy vectors.
//
// A register has a width w chosen by the ISA in use, which may be narrower or
// wider than the native hwy vector. The kernels are written against this
// model so that the loop structure (peel, aligned main loop, unaligned main
// loop, remainder) matches what a hardware backend would execute.
package simd

import (
	"fmt"
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
	"golang.org/x/exp/constraints"
	"golang.org/x/sys/cpu"
)

// Numeric is the set of element types the engine evaluates.
type Numeric interface {
	constraints.Float | ~int32 | ~int64
}

const (
	// MaxBytes is the widest register width supported (AVX-512).
	MaxBytes = 64
	// MaxLanes is the lane count of the widest register for 4-byte elements.
	MaxLanes = MaxBytes / 4
)

// ISA describes the vector instruction set used by the kernels.
type ISA struct {
	Name  string // Human-readable name.
	Bytes int    // Register width in bytes, 0 when vectorization is unavailable.
}

// String returns the ISA name with its width.
func (isa ISA) String() string {
	return fmt.Sprintf("%s/%d", isa.Name, isa.Bytes*8)
}

// Detect returns the ISA hwy dispatches to on the running CPU. The register
// width is the byte width of a native hwy vector.
func Detect() ISA {
	bytes := hwy.NumLanes[uint8]()
	if bytes < 16 || bytes > MaxBytes || bytes&(bytes-1) != 0 {
		bytes = 16
	}
	if hwy.NoSimdEnv() {
		return ISA{Name: "portable", Bytes: bytes}
	}
	return ISA{Name: cpuName(), Bytes: bytes}
}

func cpuName() string {
	switch {
	case cpu.X86.HasAVX512F:
		return "avx512"
	case cpu.X86.HasAVX2, cpu.X86.HasAVX:
		return "avx"
	case cpu.X86.HasSSE2:
		return "sse2"
	case cpu.ARM64.HasASIMD:
		return "neon"
	default:
		return "portable"
	}
}

// Fixed returns an ISA with the given register width.
// Width must be 0 (no vectorization) or a power of two up to MaxBytes.
func Fixed(bytes int) ISA {
	if bytes < 0 || bytes > MaxBytes || bytes&(bytes-1) != 0 {
		panic(fmt.Sprintf("simd: invalid register width %d", bytes))
	}
	if bytes == 0 {
		return ISA{Name: "none"}
	}
	return ISA{Name: "fixed", Bytes: bytes}
}

// SizeOf returns the byte size of T.
func SizeOf[T Numeric]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Lanes returns how many elements of T fit in one register of isa.
// A result of 1 or less means T cannot be vectorized on isa.
func Lanes[T Numeric](isa ISA) int {
	return min(isa.Bytes/SizeOf[T](), MaxLanes)
}

// Misalignment returns the byte offset of p past the previous register boundary.
func (isa ISA) Misalignment(p unsafe.Pointer) int {
	if isa.Bytes == 0 {
		return 0
	}
	return int(uintptr(p) % uintptr(isa.Bytes))
}

// Aligned reports whether p sits on a register boundary.
func (isa ISA) Aligned(p unsafe.Pointer) bool {
	return isa.Misalignment(p) == 0
}
