//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/weebcore/atlas"
)

var (
	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrUnknownTexture is returned for texture ids this uploader did not create.
	ErrUnknownTexture = errors.New("wgpu: unknown texture")
)

// texture is one page texture with its sampling view.
type texture struct {
	tex  hal.Texture
	view hal.TextureView
	size uint32
}

// Uploader creates and fills page textures on a HAL device.
//
// Uploader is safe for concurrent use.
type Uploader struct {
	mu       sync.Mutex
	device   hal.Device
	queue    hal.Queue
	textures map[atlas.TextureID]*texture
	next     atlas.TextureID

	// staging holds the RGBA bytes of the last upload, reused across calls.
	staging []byte
}

// New creates an uploader on device and queue. The caller keeps ownership
// of both.
func New(device hal.Device, queue hal.Queue) *Uploader {
	return &Uploader{
		device:   device,
		queue:    queue,
		textures: make(map[atlas.TextureID]*texture),
	}
}

// NewFromProvider creates an uploader on the device of a gpucontext
// provider. The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Uploader, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue), nil
}

// CreateTexture creates a size x size RGBA8Unorm texture and its view.
func (u *Uploader) CreateTexture(size int) (atlas.TextureID, error) {
	if size <= 0 {
		return atlas.InvalidTexture, fmt.Errorf("wgpu: invalid texture size %d", size)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	id := u.next + 1
	s := uint32(size) //nolint:gosec // page size is validated by atlas.Config

	tex, err := u.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("atlas_page_%d", id),
		Size:          hal.Extent3D{Width: s, Height: s, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return atlas.InvalidTexture, fmt.Errorf("wgpu: create atlas texture: %w", err)
	}

	view, err := u.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("atlas_page_%d_view", id),
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		u.device.DestroyTexture(tex)
		return atlas.InvalidTexture, fmt.Errorf("wgpu: create atlas texture view: %w", err)
	}

	u.next = id
	u.textures[id] = &texture{tex: tex, view: view, size: s}
	return id, nil
}

// UploadTexture writes the whole page to texture id.
func (u *Uploader) UploadTexture(id atlas.TextureID, pixels []uint32, size int) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	t, ok := u.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	if int(t.size) != size || len(pixels) < size*size {
		return fmt.Errorf("wgpu: texture %d is %d px wide, upload is %d px with %d pixels",
			id, t.size, size, len(pixels))
	}

	u.staging = argbToRGBA(u.staging, pixels[:size*size])

	u.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
		},
		u.staging,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  t.size * 4,
			RowsPerImage: t.size,
		},
		&hal.Extent3D{Width: t.size, Height: t.size, DepthOrArrayLayers: 1},
	)
	return nil
}

// DestroyTexture releases texture id and its view. Unknown ids are ignored.
func (u *Uploader) DestroyTexture(id atlas.TextureID) {
	u.mu.Lock()
	defer u.mu.Unlock()

	t, ok := u.textures[id]
	if !ok {
		return
	}
	u.release(t)
	delete(u.textures, id)
}

// View returns the sampling view of texture id, or nil if id is unknown.
func (u *Uploader) View(id atlas.TextureID) hal.TextureView {
	u.mu.Lock()
	defer u.mu.Unlock()

	if t, ok := u.textures[id]; ok {
		return t.view
	}
	return nil
}

// Len returns the number of live textures.
func (u *Uploader) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.textures)
}

// Destroy releases every texture still held. The device and queue are not
// destroyed.
func (u *Uploader) Destroy() {
	u.mu.Lock()
	defer u.mu.Unlock()

	for id, t := range u.textures {
		u.release(t)
		delete(u.textures, id)
	}
	u.staging = nil
}

// release destroys the view and texture of t. Must be called with the lock held.
func (u *Uploader) release(t *texture) {
	if t.view != nil {
		u.device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		u.device.DestroyTexture(t.tex)
	}
}

// argbToRGBA converts 0xAARRGGBB pixels to RGBA bytes, reusing dst.
func argbToRGBA(dst []byte, pixels []uint32) []byte {
	n := len(pixels) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, c := range pixels {
		a, r, g, b := atlas.UnpackARGB(c)
		dst[i*4+0] = r
		dst[i*4+1] = g
		dst[i*4+2] = b
		dst[i*4+3] = a
	}
	return dst
}
