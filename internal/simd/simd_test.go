package simd

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alignedFloats returns n float32 values starting on a 64-byte boundary.
func alignedFloats(n int) []float32 {
	buf := make([]float32, n+16)
	off := 0
	for uintptr(unsafe.Pointer(&buf[off]))%64 != 0 {
		off++
	}
	return buf[off : off+n]
}

func TestDetect(t *testing.T) {
	isa := Detect()
	assert.NotEmpty(t, isa.Name)
	assert.Contains(t, []int{16, 32, 64}, isa.Bytes)
	assert.GreaterOrEqual(t, NativeLanes[float32](), 1)
}

func TestFixed(t *testing.T) {
	assert.Equal(t, 16, Fixed(16).Bytes)
	assert.Equal(t, 0, Fixed(0).Bytes)
	assert.Panics(t, func() { Fixed(24) })
	assert.Panics(t, func() { Fixed(128) })
}

func TestLanes(t *testing.T) {
	tests := []struct {
		bytes    int
		f32, f64 int
		i32, i64 int
	}{
		{0, 0, 0, 0, 0},
		{16, 4, 2, 4, 2},
		{32, 8, 4, 8, 4},
		{64, 16, 8, 16, 8},
	}
	for _, tt := range tests {
		isa := Fixed(tt.bytes)
		assert.Equal(t, tt.f32, Lanes[float32](isa), "float32 @ %d", tt.bytes)
		assert.Equal(t, tt.f64, Lanes[float64](isa), "float64 @ %d", tt.bytes)
		assert.Equal(t, tt.i32, Lanes[int32](isa), "int32 @ %d", tt.bytes)
		assert.Equal(t, tt.i64, Lanes[int64](isa), "int64 @ %d", tt.bytes)
	}
}

func TestMisalignment(t *testing.T) {
	isa := Fixed(16)
	buf := alignedFloats(8)
	for i := 0; i < 8; i++ {
		assert.Equal(t, (i*4)%16, isa.Misalignment(unsafe.Pointer(&buf[i])), "element %d", i)
	}
	assert.True(t, isa.Aligned(unsafe.Pointer(&buf[4])))
	assert.False(t, isa.Aligned(unsafe.Pointer(&buf[1])))
}

func TestLoadStore(t *testing.T) {
	src := []float32{1, 2, 3, 4, 5}
	v := Load(src, 4)
	assert.Equal(t, 4, v.Width())
	assert.Equal(t, []float32{1, 2, 3, 4}, v.Values())

	dst := alignedFloats(8)
	Store(dst, v)
	StoreU(dst[5:], Load(src, 3))
	assert.Equal(t, []float32{1, 2, 3, 4, 0, 1, 2, 3}, dst)
}

func TestLoadStoreAcrossNativeWidth(t *testing.T) {
	n := NativeLanes[float64]()
	for _, w := range []int{1, n - 1, n, n + 1, 2*n + 1, 8} {
		if w < 1 {
			continue
		}
		src := make([]float64, w+2)
		for i := range src {
			src[i] = float64(i + 1)
		}
		dst := make([]float64, w+2)
		StoreU(dst, Load(src, w))
		assert.Equal(t, src[:w], dst[:w], "w=%d", w)
		assert.Equal(t, []float64{0, 0}, dst[w:], "w=%d wrote past the register", w)
	}
}

func TestStoreRequiresAlignment(t *testing.T) {
	dst := alignedFloats(8)
	v := Broadcast[float32](1, 4)
	require.NotPanics(t, func() { Store(dst[4:], v) })
	assert.Panics(t, func() { Store(dst[1:], v) })
}

func TestBroadcast(t *testing.T) {
	for _, w := range []int{1, 3, 4, 16} {
		assert.Equal(t, []int64{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}[:w], Broadcast[int64](7, w).Values())
	}
}

func TestArithmetic(t *testing.T) {
	a := Load([]float64{8, 6}, 2)
	b := Load([]float64{2, 3}, 2)

	assert.Equal(t, []float64{10, 9}, Add(a, b).Values())
	assert.Equal(t, []float64{6, 3}, Sub(a, b).Values())
	assert.Equal(t, []float64{16, 18}, Mul(a, b).Values())
	assert.Equal(t, []float64{4, 2}, Div(a, b).Values())
}

func TestIntegerDivision(t *testing.T) {
	a := Load([]int32{9, -7, 6, 1, 5}, 5)
	b := Load([]int32{2, 2, 3, 1, 5}, 5)
	assert.Equal(t, []int32{4, -3, 2, 1, 1}, Div(a, b).Values())

	zero := Load([]int32{1, 0, 1, 1, 1}, 5)
	assert.Panics(t, func() { Div(a, zero) })
}

func TestWidthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { Add(Broadcast[int32](5, 2), Broadcast[int32](1, 4)) })
}
