//go:build !windows

package accel

import "github.com/pkg/errors"

// ProbeWebGPU reports that no WebGPU device is built for this platform.
func ProbeWebGPU() error {
	return errors.New("webgpu: not supported on this platform")
}
