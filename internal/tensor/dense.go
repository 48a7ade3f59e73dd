package tensor

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/born-ml/etl/internal/accel"
	"github.com/born-ml/etl/internal/simd"
)

// Dense is a container with runtime dimensions and an owned, aligned buffer.
//
// The number of dimensions is fixed at construction and size always equals
// the product of the dimensions. Dense is both an expression (it can be read
// as a source) and a destination.
type Dense[T Numeric] struct {
	data   []T          // Aligned buffer, len == size
	dims   Shape        // Extent of each dimension
	size   int          // Number of elements
	order  Order        // Storage order
	mirror accel.Mirror // Accelerator copy, accel.Null() when none
}

// Empty returns a container of d dimensions, all of extent 0.
func Empty[T Numeric](d int, order Order) *Dense[T] {
	if d < 1 {
		panic(fmt.Sprintf("tensor: a container must have at least 1 dimension, got %d", d))
	}
	return &Dense[T]{
		dims:   make(Shape, d),
		order:  storageOrder(order),
		mirror: accel.Null(),
	}
}

// New returns a zero-filled container with the given dimensions.
func New[T Numeric](order Order, dims ...int) (*Dense[T], error) {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	return FromSize[T](order, shape.NumElements(), shape)
}

// FromSize returns a zero-filled container of size elements with the given
// dimensions. size must equal the product of dims.
func FromSize[T Numeric](order Order, size int, dims Shape) (*Dense[T], error) {
	if err := dims.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	if n := dims.NumElements(); n != size {
		return nil, errors.Errorf("size %d does not match dimensions %v (%d elements)", size, dims, n)
	}
	return &Dense[T]{
		data:   alignedMake[T](size),
		dims:   dims.Clone(),
		size:   size,
		order:  storageOrder(order),
		mirror: accel.Null(),
	}, nil
}

// FromSlice returns a container holding a copy of data, laid out in order.
func FromSlice[T Numeric](data []T, order Order, dims ...int) (*Dense[T], error) {
	d, err := New[T](order, dims...)
	if err != nil {
		return nil, err
	}
	if len(data) != d.size {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", d.dims, d.size, len(data))
	}
	copy(d.data, data)
	return d, nil
}

// Like returns a zero-filled container with the dimensions of e.
// Only the shape is copied, not the values.
func Like[T Numeric](e Expr[T], order Order) *Dense[T] {
	dims := e.Dims()
	if len(dims) == 0 {
		panic("tensor: cannot take the shape of a generator")
	}
	d, err := FromSize[T](order, e.Size(), dims)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func storageOrder(order Order) Order {
	if order == AnyOrder {
		return RowMajor
	}
	return order
}

// NumDims returns the number of dimensions.
func (d *Dense[T]) NumDims() int {
	return len(d.dims)
}

// Dims returns the extent of each dimension.
func (d *Dense[T]) Dims() Shape {
	return d.dims
}

// Dim returns the extent of dimension i.
func (d *Dense[T]) Dim(i int) int {
	if i < 0 || i >= len(d.dims) {
		panic(fmt.Sprintf("tensor: invalid dimension %d of %d", i, len(d.dims)))
	}
	return d.dims[i]
}

// Size returns the number of elements in O(1).
func (d *Dense[T]) Size() int {
	return d.size
}

// Rows returns the first dimension.
func (d *Dense[T]) Rows() int {
	return d.dims[0]
}

// Columns returns the second dimension. Panics for 1-dimensional containers.
func (d *Dense[T]) Columns() int {
	if len(d.dims) < 2 {
		panic("tensor: Columns is only valid for containers with 2 or more dimensions")
	}
	return d.dims[1]
}

// Order returns the storage order.
func (d *Dense[T]) Order() Order {
	return d.order
}

// At returns the element at flat index i.
func (d *Dense[T]) At(i int) T {
	return d.data[i]
}

// Set writes v at flat index i.
func (d *Dense[T]) Set(i int, v T) {
	d.data[i] = v
}

// ReadFlat returns the element at flat index i.
func (d *Dense[T]) ReadFlat(i int) T {
	return d.data[i]
}

// Get returns the element at the multi-index idx.
func (d *Dense[T]) Get(idx ...int) T {
	return d.data[d.dims.Offset(d.order, idx)]
}

// Put writes v at the multi-index idx.
func (d *Dense[T]) Put(v T, idx ...int) {
	d.data[d.dims.Offset(d.order, idx)] = v
}

// Load returns w elements starting at flat index i.
func (d *Dense[T]) Load(i, w int) simd.Vec[T] {
	return simd.Load(d.data[i:], w)
}

// Memory returns the underlying buffer.
// WARNING: Direct access to owned memory. Writing through it bypasses the
// accelerator bookkeeping; call InvalidateDevice afterwards.
func (d *Dense[T]) Memory() []T {
	return d.data
}

// Bytes returns the buffer reinterpreted as bytes.
func (d *Dense[T]) Bytes() []byte {
	if len(d.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by size
	return unsafe.Slice((*byte)(unsafe.Pointer(&d.data[0])), d.size*simd.SizeOf[T]())
}

// Region returns the address range of the buffer.
func (d *Dense[T]) Region() Region {
	return RegionOf(d.data)
}

// Aliases reports whether the buffer overlaps r.
func (d *Dense[T]) Aliases(r Region) bool {
	return d.Region().Overlaps(r)
}

// Traits returns the container's capabilities.
func (d *Dense[T]) Traits() Traits {
	return Traits{
		Linear:       true,
		Order:        d.order,
		DMA:          true,
		Vectorizable: true,
	}
}

// Children returns nil: a container is a leaf.
func (d *Dense[T]) Children() []Node {
	return nil
}

// Release frees the buffer and the accelerator copy, if any.
func (d *Dense[T]) Release() error {
	var err error
	if d.mirror != nil {
		err = multierr.Append(err, d.mirror.Release())
	}
	d.data = nil
	d.size = 0
	for i := range d.dims {
		d.dims[i] = 0
	}
	d.mirror = accel.Null()
	return err
}

// Mirror returns the accelerator mirror.
func (d *Dense[T]) Mirror() accel.Mirror {
	return d.mirror
}

// SetMirror attaches an accelerator mirror, releasing the previous one.
func (d *Dense[T]) SetMirror(m accel.Mirror) error {
	if m == nil {
		m = accel.Null()
	}
	err := d.mirror.Release()
	d.mirror = m
	return err
}

// EnsureHostCurrent copies the device data back if the host is stale.
func (d *Dense[T]) EnsureHostCurrent() {
	d.mirror.EnsureHostCurrent(d.Bytes())
}

// EnsureHostAllocated makes the host current without a download, for a
// write that overwrites every element.
func (d *Dense[T]) EnsureHostAllocated() {
	d.mirror.EnsureHostAllocated()
}

// EnsureDeviceCurrent uploads the host data if the device is stale.
func (d *Dense[T]) EnsureDeviceCurrent() {
	d.mirror.EnsureDeviceCurrent(d.Bytes())
}

// EnsureDeviceAllocated allocates device memory to be fully overwritten.
func (d *Dense[T]) EnsureDeviceAllocated() {
	d.mirror.EnsureDeviceAllocated(d.size * simd.SizeOf[T]())
}

// InvalidateHost marks host memory stale after a device write.
func (d *Dense[T]) InvalidateHost() {
	d.mirror.InvalidateHost()
}

// InvalidateDevice marks device memory stale after a host write.
func (d *Dense[T]) InvalidateDevice() {
	d.mirror.InvalidateDevice()
}

// Evict frees the device copy.
func (d *Dense[T]) Evict() {
	d.mirror.Evict(d.Bytes())
}

// TransferMirrorTo hands this container's device memory over to dst.
// Panics when dst does not have the same byte size.
func (d *Dense[T]) TransferMirrorTo(dst *Dense[T]) {
	d.mirror.TransferTo(dst.mirror, d.Bytes(), dst.size*simd.SizeOf[T]())
}
