//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides a WebGPU device for container mirrors.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	m, _ := tensor.New[float32](tensor.RowMajor, 1024, 1024)
//	_ = m.SetMirror(tensor.NewMirror(gpu))
package webgpu

import (
	"github.com/born-ml/etl/internal/accel"
	"github.com/born-ml/etl/tensor"
)

// Device is a WebGPU adapter with its default queue.
type Device = accel.WebGPU

// Compile-time check that Device implements tensor.Device.
var _ tensor.Device = (*Device)(nil)

// New opens a high-performance WebGPU device. Call Release when done.
//
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
func New() (*Device, error) {
	return accel.OpenWebGPU()
}

// IsAvailable reports whether a WebGPU device can be opened.
func IsAvailable() bool {
	return accel.ProbeWebGPU() == nil
}
