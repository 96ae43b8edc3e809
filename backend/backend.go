package backend

import (
	"errors"

	"github.com/weebcore/atlas"
)

// Backend name constants.
const (
	// NameSoftware is the CPU-side backend that keeps one image per texture.
	NameSoftware = "software"
	// NameWGPU is the GPU backend built on gogpu/wgpu HAL.
	NameWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory creates a texture uploader for an atlas manager.
//
// A GPU backend needs a device before it can be constructed, so hosts
// register it themselves once the device exists:
//
//	backend.Register(backend.NameWGPU, func() (atlas.TextureUploader, error) {
//		return wgpu.New(device, queue), nil
//	})
type Factory func() (atlas.TextureUploader, error)
