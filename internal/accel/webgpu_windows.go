//go:build windows

package accel

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
)

// WebGPU is a Device backed by a WebGPU adapter.
type WebGPU struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu        sync.Mutex
	allocated uint64
}

type gpuBuffer struct {
	buffer *wgpu.Buffer
	size   int    // Requested size.
	padded uint64 // Size rounded up to COPY_BUFFER_ALIGNMENT.
}

func (b *gpuBuffer) Size() int { return b.size }

// OpenWebGPU requests a high-performance adapter and its default queue.
// Returns an error if WebGPU is not available.
func OpenWebGPU() (dev *WebGPU, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, errors.Wrap(err, "webgpu: create instance")
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrap(err, "webgpu: request adapter")
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(err, "webgpu: request device")
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.New("webgpu: failed to get queue")
	}

	return &WebGPU{instance: instance, adapter: adapter, device: device, queue: queue}, nil
}

// ProbeWebGPU opens and releases a WebGPU device, reporting why none is usable.
func ProbeWebGPU() error {
	dev, err := OpenWebGPU()
	if err != nil {
		return err
	}
	dev.Release()
	return nil
}

// Name returns the device name.
func (g *WebGPU) Name() string { return "webgpu" }

// Allocate creates a storage buffer able to hold size bytes.
func (g *WebGPU) Allocate(size int) (Buffer, error) {
	padded := paddedSize(size)
	buffer := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  padded,
	})
	if buffer == nil {
		return nil, errors.Errorf("webgpu: CreateBuffer(%d) failed", padded)
	}

	g.mu.Lock()
	g.allocated += padded
	g.mu.Unlock()

	return &gpuBuffer{buffer: buffer, size: size, padded: padded}, nil
}

// Upload copies src into dst through a mapped staging buffer.
func (g *WebGPU) Upload(dst Buffer, src []byte) error {
	buf, err := g.gpuBuffer(dst)
	if err != nil {
		return err
	}
	padded := paddedSize(len(src))
	staging := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageMapWrite | wgpu.BufferUsageCopySrc,
		Size:             padded,
		MappedAtCreation: wgpu.True,
	})
	if staging == nil {
		return errors.Errorf("webgpu: staging buffer of %d bytes", padded)
	}
	defer staging.Release()

	mappedPtr := staging.GetMappedRange(0, padded)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), padded), src)
	staging.Unmap()

	encoder := g.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, buf.buffer, 0, padded)
	g.queue.Submit(encoder.Finish(nil))
	return nil
}

// Download reads src back into dst through a staging buffer.
func (g *WebGPU) Download(dst []byte, src Buffer) error {
	buf, err := g.gpuBuffer(src)
	if err != nil {
		return err
	}
	staging := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  buf.padded,
	})
	if staging == nil {
		return errors.Errorf("webgpu: staging buffer of %d bytes", buf.padded)
	}
	defer staging.Release()

	encoder := g.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(buf.buffer, 0, staging, 0, buf.padded)
	g.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(g.device, wgpu.MapModeRead, 0, buf.padded); err != nil {
		return errors.Wrap(err, "webgpu: map staging buffer")
	}
	mappedPtr := staging.GetMappedRange(0, buf.padded)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(dst, unsafe.Slice((*byte)(mappedPtr), buf.padded)[:buf.size])
	staging.Unmap()
	return nil
}

// Free releases buf.
func (g *WebGPU) Free(b Buffer) error {
	buf, err := g.gpuBuffer(b)
	if err != nil {
		return err
	}
	buf.buffer.Release()

	g.mu.Lock()
	g.allocated -= buf.padded
	g.mu.Unlock()
	return nil
}

// AllocatedBytes returns the bytes currently held in device buffers.
func (g *WebGPU) AllocatedBytes() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allocated
}

// Release releases all WebGPU objects. Buffers must be freed first.
func (g *WebGPU) Release() {
	if g.queue != nil {
		g.queue.Release()
		g.queue = nil
	}
	if g.device != nil {
		g.device.Release()
		g.device = nil
	}
	if g.adapter != nil {
		g.adapter.Release()
		g.adapter = nil
	}
	if g.instance != nil {
		g.instance.Release()
		g.instance = nil
	}
}

func (g *WebGPU) gpuBuffer(b Buffer) (*gpuBuffer, error) {
	buf, ok := b.(*gpuBuffer)
	if !ok {
		return nil, errors.Errorf("webgpu: buffer %T does not belong to this device", b)
	}
	return buf, nil
}

// paddedSize rounds size up to a non-zero multiple of 4 bytes.
func paddedSize(size int) uint64 {
	n := uint64(max(size, 4)) //nolint:gosec // G115: sizes are non-negative.
	return (n + 3) &^ 3
}
