// Package software implements an atlas texture backend that keeps each
// texture as an image in memory.
//
// It is the backend used by tooling that exports atlas pages as files and
// by tests that need to inspect what was uploaded.
package software

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sort"
	"sync"

	"github.com/weebcore/atlas"
	"github.com/weebcore/atlas/backend"
)

func init() {
	backend.Register(backend.NameSoftware, func() (atlas.TextureUploader, error) {
		return New(), nil
	})
}

// Uploader stores one NRGBA image per texture.
//
// Uploader is safe for concurrent use.
type Uploader struct {
	mu       sync.Mutex
	textures map[atlas.TextureID]*image.NRGBA
	next     atlas.TextureID
	uploads  int
}

// New creates an empty software uploader.
func New() *Uploader {
	return &Uploader{textures: make(map[atlas.TextureID]*image.NRGBA)}
}

// CreateTexture creates a transparent size x size image.
func (u *Uploader) CreateTexture(size int) (atlas.TextureID, error) {
	if size <= 0 {
		return atlas.InvalidTexture, fmt.Errorf("software: invalid texture size %d", size)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.next++
	u.textures[u.next] = image.NewNRGBA(image.Rect(0, 0, size, size))
	return u.next, nil
}

// UploadTexture converts pixels into the image of id.
func (u *Uploader) UploadTexture(id atlas.TextureID, pixels []uint32, size int) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	img, ok := u.textures[id]
	if !ok {
		return fmt.Errorf("software: unknown texture %d", id)
	}
	if img.Rect.Dx() != size || len(pixels) < size*size {
		return fmt.Errorf("software: texture %d is %d px wide, upload is %d px with %d pixels",
			id, img.Rect.Dx(), size, len(pixels))
	}

	for i, c := range pixels[:size*size] {
		a, r, g, b := atlas.UnpackARGB(c)
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = r, g, b, a
	}
	u.uploads++
	return nil
}

// DestroyTexture drops the image of id. Unknown ids are ignored.
func (u *Uploader) DestroyTexture(id atlas.TextureID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.textures, id)
}

// Image returns a copy of the image of id.
func (u *Uploader) Image(id atlas.TextureID) (*image.NRGBA, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	img, ok := u.textures[id]
	if !ok {
		return nil, false
	}
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out, true
}

// Textures returns the live texture ids in ascending order.
func (u *Uploader) Textures() []atlas.TextureID {
	u.mu.Lock()
	defer u.mu.Unlock()

	ids := make([]atlas.TextureID, 0, len(u.textures))
	for id := range u.textures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Uploads returns the number of successful UploadTexture calls.
func (u *Uploader) Uploads() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.uploads
}

// SavePNG writes the image of id to path.
func (u *Uploader) SavePNG(id atlas.TextureID, path string) (err error) {
	img, ok := u.Image(id)
	if !ok {
		return fmt.Errorf("software: unknown texture %d", id)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}
