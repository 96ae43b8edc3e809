// Package atlas packs many small images into a few large texture pages.
//
// # Overview
//
// A Manager hands out integer handles to rectangular regions of fixed-size
// pages. Each page is a CPU-side 0xAARRGGBB pixel buffer with its own
// best-fit rectangle packer (see package packer) and a texture owned by a
// TextureUploader. Writes go to the CPU buffer and mark the page dirty;
// FlushDirty uploads all dirty pages in one pass.
//
// # Quick Start
//
//	import "github.com/weebcore/atlas"
//
//	m, err := atlas.New(atlas.Config{PageSize: 1024}, atlas.WithUploader(up))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h, err := m.Allocate(32, 32)
//	if err != nil {
//	    // too large for a page, or the page limit was reached
//	}
//	m.Write(h, pixels, 32, 32, 0, 0)
//
//	// once per frame
//	m.FlushDirty()
//
//	pl, _ := m.Placement(h) // texture + UVs for the draw call
//
// # Handles
//
// Handles are small positive integers; InvalidHandle (0) is never issued.
// Freeing a handle makes its value available to later allocations, so
// callers must drop handles they have freed. Operations on unknown or freed
// handles fail with an error wrapping ErrInvalidHandle.
//
// # Backends
//
// The manager does not know how pixels reach the GPU:
//   - backend/software keeps an image per texture (tests, tooling)
//   - backend/wgpu uploads through gogpu/wgpu HAL
//
// Without an uploader the manager issues logical texture ids only.
//
// # Coordinate System
//
// Origin (0,0) at the top-left of a page, X increases right, Y increases
// down.
package atlas
