package accel

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// HostDevice is a Device whose "device memory" is a separate host allocation.
// It stands in for an accelerator on machines without one and counts every
// transfer, which makes coherence behaviour observable.
type HostDevice struct {
	uploads   atomic.Int64
	downloads atomic.Int64
	live      atomic.Int64
}

type hostBuffer struct {
	data []byte
}

func (b *hostBuffer) Size() int { return len(b.data) }

// NewHostDevice returns a memory-backed device.
func NewHostDevice() *HostDevice {
	return &HostDevice{}
}

// Name returns the device name.
func (d *HostDevice) Name() string { return "host" }

// Allocate returns a zeroed buffer of size bytes.
func (d *HostDevice) Allocate(size int) (Buffer, error) {
	if size < 0 {
		return nil, errors.Errorf("negative allocation size %d", size)
	}
	d.live.Add(1)
	return &hostBuffer{data: make([]byte, size)}, nil
}

// Upload copies src into dst.
func (d *HostDevice) Upload(dst Buffer, src []byte) error {
	buf, err := d.buffer(dst)
	if err != nil {
		return err
	}
	if len(src) > len(buf.data) {
		return errors.Errorf("upload of %d bytes into %d-byte buffer", len(src), len(buf.data))
	}
	copy(buf.data, src)
	d.uploads.Add(1)
	return nil
}

// Download copies src into dst.
func (d *HostDevice) Download(dst []byte, src Buffer) error {
	buf, err := d.buffer(src)
	if err != nil {
		return err
	}
	copy(dst, buf.data)
	d.downloads.Add(1)
	return nil
}

// Free releases buf.
func (d *HostDevice) Free(buf Buffer) error {
	if _, err := d.buffer(buf); err != nil {
		return err
	}
	d.live.Add(-1)
	return nil
}

// Uploads returns the number of host-to-device copies performed.
func (d *HostDevice) Uploads() int64 { return d.uploads.Load() }

// Downloads returns the number of device-to-host copies performed.
func (d *HostDevice) Downloads() int64 { return d.downloads.Load() }

// LiveBuffers returns the number of allocated, not yet freed, buffers.
func (d *HostDevice) LiveBuffers() int64 { return d.live.Load() }

func (d *HostDevice) buffer(b Buffer) (*hostBuffer, error) {
	buf, ok := b.(*hostBuffer)
	if !ok {
		return nil, errors.Errorf("buffer %T does not belong to the host device", b)
	}
	return buf, nil
}
