// Package wgpu uploads atlas pages to textures on a gogpu/wgpu HAL device.
//
// Each page becomes an RGBA8Unorm texture with a matching 2D view that
// callers bind when drawing:
//
//	up := wgpu.New(device, queue)
//	m, _ := atlas.New(atlas.DefaultConfig(), atlas.WithUploader(up))
//	...
//	m.FlushDirty()
//	pl, _ := m.Placement(h)
//	view := up.View(pl.Texture)
//
// A device shared with a gogpu application can be taken from its
// gpucontext.DeviceProvider with NewFromProvider.
//
// Build with the nogpu tag to exclude the package contents.
package wgpu
