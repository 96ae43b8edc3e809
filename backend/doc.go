// Package backend selects the texture uploader an atlas manager hands its
// pages to.
//
// # Backend Registration
//
// Backends register a Factory under a name. The software backend registers
// itself when imported:
//
//	import _ "github.com/weebcore/atlas/backend/software"
//
// The wgpu backend needs a device and is registered by the host once one
// exists.
//
// # Backend Selection
//
// Use Default() for the best available backend, or Get() to request one by
// name:
//
//	up, err := backend.Get("software")
//	if err != nil {
//		log.Fatal(err)
//	}
//	m, err := atlas.New(atlas.DefaultConfig(), atlas.WithUploader(up))
//
// # Available Backends
//
//   - "software": one image.NRGBA per texture (always available)
//   - "wgpu": textures on a gogpu/wgpu HAL device
package backend
