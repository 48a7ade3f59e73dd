package tensor

import (
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"

	"github.com/born-ml/etl/internal/accel"
)

func TestEmpty(t *testing.T) {
	d := Empty[float32](3, RowMajor)

	if d.Size() != 0 {
		t.Errorf("Size = %d, want 0", d.Size())
	}
	if d.NumDims() != 3 {
		t.Errorf("NumDims = %d, want 3", d.NumDims())
	}
	if diff := cmp.Diff(Shape{0, 0, 0}, d.Dims()); diff != "" {
		t.Errorf("Dims mismatch (-want +got):\n%s", diff)
	}
	if !d.Region().Empty() {
		t.Error("empty container should have an empty region")
	}
}

func TestEmptyRequiresOneDimension(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Empty(0) should panic")
		}
	}()
	Empty[float64](0, RowMajor)
}

func TestNewInvariant(t *testing.T) {
	d, err := New[float64](RowMajor, 2, 3, 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if d.Size() != 24 {
		t.Errorf("Size = %d, want 24", d.Size())
	}
	if d.Size() != d.Dims().NumElements() {
		t.Errorf("size %d != product of dims %v", d.Size(), d.Dims())
	}
	if d.Rows() != 2 || d.Columns() != 3 || d.Dim(2) != 4 {
		t.Errorf("Rows/Columns/Dim(2) = %d/%d/%d, want 2/3/4", d.Rows(), d.Columns(), d.Dim(2))
	}
}

func TestNewRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		dims []int
	}{
		{"no dimensions", nil},
		{"negative", []int{2, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New[float32](RowMajor, tt.dims...); err == nil {
				t.Errorf("New(%v) should fail", tt.dims)
			}
		})
	}
}

func TestFromSizeValidatesProduct(t *testing.T) {
	if _, err := FromSize[int32](RowMajor, 7, Shape{2, 3}); err == nil {
		t.Error("FromSize with mismatching size should fail")
	}
	d, err := FromSize[int32](RowMajor, 6, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSize failed: %v", err)
	}
	if d.Size() != 6 {
		t.Errorf("Size = %d, want 6", d.Size())
	}
}

func TestColumnsPanicsFor1D(t *testing.T) {
	d, _ := New[float32](RowMajor, 5)
	if d.Rows() != 5 {
		t.Errorf("Rows = %d, want 5", d.Rows())
	}
	defer func() {
		if recover() == nil {
			t.Error("Columns on a 1-D container should panic")
		}
	}()
	d.Columns()
}

func TestLikeCopiesShapeNotData(t *testing.T) {
	src, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, ColumnMajor, 2, 3)
	d := Like[float32](src, src.Order())

	if !d.Dims().Equal(src.Dims()) {
		t.Errorf("Dims = %v, want %v", d.Dims(), src.Dims())
	}
	if d.Order() != ColumnMajor {
		t.Errorf("Order = %v, want column-major", d.Order())
	}
	if diff := cmp.Diff(make([]float32, 6), d.Memory()); diff != "" {
		t.Errorf("Like should be zero-filled (-want +got):\n%s", diff)
	}
	if d.Aliases(src.Region()) {
		t.Error("Like must allocate its own buffer")
	}
}

func TestBufferIsAligned(t *testing.T) {
	for _, n := range []int{1, 3, 7, 16, 1000} {
		d, _ := New[float64](RowMajor, n)
		//nolint:gosec // address check only
		if addr := uintptr(unsafe.Pointer(&d.Memory()[0])); addr%Alignment != 0 {
			t.Errorf("n=%d: buffer at %#x is not %d-byte aligned", n, addr, Alignment)
		}
		if len(d.Memory()) != n {
			t.Errorf("n=%d: len(Memory) = %d", n, len(d.Memory()))
		}
	}
}

func TestGetPutRespectsOrder(t *testing.T) {
	rm, _ := FromSlice([]int64{1, 2, 3, 4, 5, 6}, RowMajor, 2, 3)
	cm, _ := FromSlice([]int64{1, 4, 2, 5, 3, 6}, ColumnMajor, 2, 3)

	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if rm.Get(i, j) != cm.Get(i, j) {
				t.Errorf("(%d,%d): row-major %d != column-major %d", i, j, rm.Get(i, j), cm.Get(i, j))
			}
		}
	}

	cm.Put(42, 1, 0)
	if cm.At(1) != 42 {
		t.Errorf("Put(1,0) in column-major should write flat index 1, got %v", cm.Memory())
	}
}

func TestAliases(t *testing.T) {
	a, _ := New[float32](RowMajor, 8)
	b, _ := New[float32](RowMajor, 8)

	if !a.Aliases(a.Region()) {
		t.Error("a container aliases itself")
	}
	if a.Aliases(b.Region()) {
		t.Error("distinct containers must not alias")
	}
	half := RegionOf(a.Memory()[4:])
	if !a.Aliases(half) {
		t.Error("a container aliases a sub-range of its buffer")
	}
}

func TestReadFlatAndLoad(t *testing.T) {
	d, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8}, RowMajor, 8)

	if d.ReadFlat(5) != 6 {
		t.Errorf("ReadFlat(5) = %v, want 6", d.ReadFlat(5))
	}
	v := d.Load(4, 4)
	if diff := cmp.Diff([]float32{5, 6, 7, 8}, v.Values()); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestReleaseFreesMirror(t *testing.T) {
	dev := accel.NewHostDevice()
	d, _ := FromSlice([]float32{1, 2, 3}, RowMajor, 3)
	if err := d.SetMirror(accel.NewMirror(dev)); err != nil {
		t.Fatalf("SetMirror: %v", err)
	}

	d.EnsureDeviceCurrent()
	if dev.LiveBuffers() != 1 {
		t.Fatalf("LiveBuffers = %d, want 1", dev.LiveBuffers())
	}

	if err := d.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if dev.LiveBuffers() != 0 {
		t.Errorf("LiveBuffers after release = %d, want 0", dev.LiveBuffers())
	}
	if d.Size() != 0 || d.Memory() != nil {
		t.Error("Release should drop the buffer")
	}
	if d.Size() != d.Dims().NumElements() {
		t.Errorf("invariant broken after release: size %d, dims %v", d.Size(), d.Dims())
	}
}

func TestDeviceRoundTrip(t *testing.T) {
	dev := accel.NewHostDevice()
	d, _ := FromSlice([]int32{1, 2, 3, 4}, RowMajor, 4)
	_ = d.SetMirror(accel.NewMirror(dev))

	d.EnsureDeviceCurrent()
	d.EnsureHostCurrent()
	if diff := cmp.Diff([]int32{1, 2, 3, 4}, d.Memory()); diff != "" {
		t.Errorf("host changed (-want +got):\n%s", diff)
	}

	d.Set(0, 10)
	d.InvalidateDevice()
	d.EnsureDeviceCurrent()
	d.EnsureDeviceCurrent()
	if dev.Uploads() != 2 {
		t.Errorf("Uploads = %d, want 2", dev.Uploads())
	}
}

func TestTransferMirror(t *testing.T) {
	dev := accel.NewHostDevice()
	a, _ := FromSlice([]float64{1, 2}, RowMajor, 2)
	b := Like[float64](a, RowMajor)
	_ = a.SetMirror(accel.NewMirror(dev))
	_ = b.SetMirror(accel.NewMirror(dev))

	a.EnsureDeviceCurrent()
	a.TransferMirrorTo(b)
	b.EnsureHostCurrent()

	if diff := cmp.Diff([]float64{1, 2}, b.Memory()); diff != "" {
		t.Errorf("transferred data mismatch (-want +got):\n%s", diff)
	}
}

func TestTransferMirrorSizeMismatch(t *testing.T) {
	dev := accel.NewHostDevice()
	a, _ := FromSlice([]float64{1, 2}, RowMajor, 2)
	b, _ := New[float64](RowMajor, 3)
	_ = a.SetMirror(accel.NewMirror(dev))
	_ = b.SetMirror(accel.NewMirror(dev))

	a.EnsureDeviceCurrent()
	defer func() {
		if recover() == nil {
			t.Fatal("transfer into a larger container should panic")
		}
		if !a.Mirror().Allocated() || b.Mirror().Allocated() {
			t.Error("a rejected transfer should leave both mirrors as they were")
		}
	}()
	a.TransferMirrorTo(b)
}

func TestDataTypeOf(t *testing.T) {
	type celsius float32
	tests := []struct {
		got, want DataType
	}{
		{DataTypeOf[float32](), Float32},
		{DataTypeOf[float64](), Float64},
		{DataTypeOf[int32](), Int32},
		{DataTypeOf[int64](), Int64},
		{DataTypeOf[celsius](), Float32},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("DataTypeOf = %s, want %s", tt.got, tt.want)
		}
	}
}
