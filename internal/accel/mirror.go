// Package accel keeps a host buffer and an optional accelerator-resident copy
// of it coherent.
//
// A Mirror tracks which side holds current data. Transfers are synchronous and
// happen only on demand: asking for a side that is already current costs
// nothing, asking for a stale side costs exactly one blocking copy.
package accel

// Mirror is the coherence state of one container's accelerator copy.
//
// The most recent write always marks its own side current and the other side
// stale, so at least one side is current at any time. A Mirror is not safe for
// concurrent use; the container owning it is its single writer.
type Mirror interface {
	// HostCurrent reports whether the host buffer holds current data.
	HostCurrent() bool

	// DeviceCurrent reports whether the device buffer holds current data.
	DeviceCurrent() bool

	// Allocated reports whether a device buffer exists.
	Allocated() bool

	// EnsureDeviceAllocated allocates the device buffer if needed and marks it
	// current. Used when a device kernel is about to overwrite it entirely.
	EnsureDeviceAllocated(size int)

	// EnsureDeviceCurrent uploads host to the device if the device is stale.
	EnsureDeviceCurrent(host []byte)

	// EnsureHostCurrent downloads the device copy into host if host is stale.
	EnsureHostCurrent(host []byte)

	// EnsureHostAllocated marks the host current without a download and the
	// device stale. Used when the host is about to be overwritten entirely.
	EnsureHostAllocated()

	// InvalidateHost marks the host side stale after a device write.
	InvalidateHost()

	// InvalidateDevice marks the device side stale after a host write.
	InvalidateDevice()

	// Evict frees the device buffer, syncing host first when it is stale.
	Evict(host []byte)

	// TransferTo hands the device buffer over to dst, whose host buffer is
	// dstSize bytes. dst becomes device-current and host-stale. Panics when the
	// device buffer does not have dstSize bytes.
	TransferTo(dst Mirror, host []byte, dstSize int)

	// Release frees any device resources.
	Release() error
}
