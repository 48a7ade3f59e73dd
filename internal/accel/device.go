package accel

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Buffer is an opaque device allocation.
type Buffer interface {
	// Size returns the usable size in bytes.
	Size() int
}

// Device is an accelerator able to hold buffers and copy to and from host memory.
// All copies are blocking.
type Device interface {
	Name() string
	Allocate(size int) (Buffer, error)
	Upload(dst Buffer, src []byte) error
	Download(dst []byte, src Buffer) error
	Free(buf Buffer) error
}

// deviceMirror implements Mirror on top of a Device.
type deviceMirror struct {
	dev    Device
	buf    Buffer
	logger klog.Logger

	hostCurrent   bool
	deviceCurrent bool
}

// MirrorOption configures a device mirror.
type MirrorOption func(*deviceMirror)

// WithLogger sets the logger used to report transfers.
func WithLogger(logger klog.Logger) MirrorOption {
	return func(m *deviceMirror) {
		m.logger = logger
	}
}

// NewMirror returns a mirror backed by dev.
// The host starts current and no device memory is allocated until needed.
func NewMirror(dev Device, opts ...MirrorOption) Mirror {
	m := &deviceMirror{
		dev:         dev,
		logger:      klog.Background(),
		hostCurrent: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *deviceMirror) HostCurrent() bool   { return m.hostCurrent }
func (m *deviceMirror) DeviceCurrent() bool { return m.deviceCurrent }
func (m *deviceMirror) Allocated() bool     { return m.buf != nil }

func (m *deviceMirror) EnsureDeviceAllocated(size int) {
	m.allocate(size)
	m.deviceCurrent = true
}

func (m *deviceMirror) EnsureDeviceCurrent(host []byte) {
	m.allocate(len(host))
	if m.deviceCurrent {
		return
	}
	if !m.hostCurrent {
		panic("accel: upload from stale host memory")
	}
	if err := m.dev.Upload(m.buf, host); err != nil {
		panic(errors.Wrapf(err, "accel: upload of %d bytes to %s", len(host), m.dev.Name()).Error())
	}
	m.deviceCurrent = true
	m.logger.V(2).Info("host to device", "device", m.dev.Name(), "bytes", len(host))
}

func (m *deviceMirror) EnsureHostCurrent(host []byte) {
	if m.hostCurrent {
		return
	}
	if m.buf == nil || !m.deviceCurrent {
		panic("accel: download from stale device memory")
	}
	if err := m.dev.Download(host, m.buf); err != nil {
		panic(errors.Wrapf(err, "accel: download of %d bytes from %s", len(host), m.dev.Name()).Error())
	}
	m.hostCurrent = true
	m.logger.V(2).Info("device to host", "device", m.dev.Name(), "bytes", len(host))
}

func (m *deviceMirror) EnsureHostAllocated() {
	m.hostCurrent = true
	m.deviceCurrent = false
}

func (m *deviceMirror) InvalidateHost() {
	if !m.deviceCurrent {
		panic("accel: invalidating host while device is stale")
	}
	m.hostCurrent = false
}

func (m *deviceMirror) InvalidateDevice() {
	if !m.hostCurrent {
		panic("accel: invalidating device while host is stale")
	}
	m.deviceCurrent = false
}

func (m *deviceMirror) Evict(host []byte) {
	if m.buf == nil {
		m.deviceCurrent = false
		return
	}
	m.EnsureHostCurrent(host)
	if err := m.free(); err != nil {
		panic(err.Error())
	}
}

func (m *deviceMirror) TransferTo(dst Mirror, host []byte, dstSize int) {
	to, ok := dst.(*deviceMirror)
	if !ok || to.dev != m.dev {
		panic(fmt.Sprintf("accel: cannot transfer %s memory to %T", m.dev.Name(), dst))
	}
	if m.buf == nil {
		return
	}
	if m.buf.Size() != dstSize {
		panic(fmt.Sprintf("accel: cannot transfer a %d-byte buffer to a %d-byte container", m.buf.Size(), dstSize))
	}
	m.EnsureHostCurrent(host)
	if err := to.free(); err != nil {
		panic(err.Error())
	}

	to.buf, m.buf = m.buf, nil
	m.deviceCurrent = false
	to.deviceCurrent = true
	to.hostCurrent = false
}

func (m *deviceMirror) Release() error {
	return m.free()
}

func (m *deviceMirror) allocate(size int) {
	if m.buf != nil {
		return
	}
	buf, err := m.dev.Allocate(size)
	if err != nil {
		panic(errors.Wrapf(err, "accel: allocating %d bytes on %s", size, m.dev.Name()).Error())
	}
	m.buf = buf
	m.logger.V(2).Info("allocated device buffer", "device", m.dev.Name(), "bytes", size)
}

func (m *deviceMirror) free() error {
	if m.buf == nil {
		return nil
	}
	buf := m.buf
	m.buf = nil
	m.deviceCurrent = false
	return errors.Wrapf(m.dev.Free(buf), "accel: freeing buffer on %s", m.dev.Name())
}
