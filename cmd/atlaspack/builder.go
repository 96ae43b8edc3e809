package main

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/weebcore/atlas"
	"github.com/weebcore/atlas/backend"
	"github.com/weebcore/atlas/backend/software"
)

// supportedExt lists the image extensions atlaspack decodes.
var supportedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

func isImage(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// builder packs sprite files into an atlas and exports its pages.
type builder struct {
	cfg   config
	log   *slog.Logger
	atlas *atlas.Manager
	up    *software.Uploader

	sprites  map[string]atlas.Handle // by sprite name
	exported map[int]bool            // pages written at least once
}

func newBuilder(cfg config, logger *slog.Logger) (*builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	u, err := backend.Get(backend.NameSoftware)
	if err != nil {
		return nil, err
	}
	up, ok := u.(*software.Uploader)
	if !ok {
		return nil, fmt.Errorf("backend %q is %T, want a software uploader", backend.NameSoftware, u)
	}

	m, err := atlas.New(cfg.atlasConfig(), atlas.WithUploader(up))
	if err != nil {
		return nil, err
	}

	return &builder{
		cfg:      cfg,
		log:      logger,
		atlas:    m,
		up:       up,
		sprites:  make(map[string]atlas.Handle),
		exported: make(map[int]bool),
	}, nil
}

func (b *builder) close() {
	b.atlas.Close()
}

// scan adds every image below the configured inputs.
func (b *builder) scan() error {
	var errs []error
	for _, in := range b.cfg.Inputs {
		err := filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isImage(path) {
				return nil
			}
			if err := b.add(path); err != nil {
				errs = append(errs, err)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", in, err))
		}
	}
	return errors.Join(errs...)
}

// spriteName returns the slash-separated name of path relative to the
// input it belongs to. A file given directly as input is named by its base
// name.
func (b *builder) spriteName(path string) (string, bool) {
	clean := filepath.Clean(path)
	for _, in := range b.cfg.Inputs {
		in = filepath.Clean(in)
		if clean == in {
			return filepath.Base(clean), true
		}
		rel, err := filepath.Rel(in, clean)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

// add decodes path and packs it, replacing a sprite of the same name.
func (b *builder) add(path string) error {
	name, ok := b.spriteName(path)
	if !ok {
		return fmt.Errorf("%s is outside the inputs", path)
	}

	img, err := decodeFile(path)
	if err != nil {
		return err
	}
	img = scale(img, b.cfg.Scale)

	if err := b.remove(name); err != nil {
		return err
	}

	h, err := b.atlas.AllocateImage(img)
	if err != nil {
		return fmt.Errorf("pack %s: %w", name, err)
	}
	b.sprites[name] = h
	b.log.Debug("packed sprite", "name", name, "handle", int(h),
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}

// remove frees the sprite called name, if any.
func (b *builder) remove(name string) error {
	h, ok := b.sprites[name]
	if !ok {
		return nil
	}
	delete(b.sprites, name)
	if err := b.atlas.Free(h); err != nil {
		return fmt.Errorf("free %s: %w", name, err)
	}
	b.log.Debug("freed sprite", "name", name)
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// scale resizes img by factor with Catmull-Rom filtering. Sizes are
// rounded and never drop below one pixel.
func scale(img image.Image, factor float64) image.Image {
	if factor == 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// export flushes the atlas, writes the pages that changed since the last
// export and rewrites the manifest.
func (b *builder) export() error {
	if err := os.MkdirAll(b.cfg.Output, 0o755); err != nil {
		return err
	}

	pages := b.atlas.PageCount()
	var changed []int
	for i := 0; i < pages; i++ {
		dirty, err := b.atlas.PageDirty(i)
		if err != nil {
			return err
		}
		if dirty || !b.exported[i] {
			changed = append(changed, i)
		}
	}

	if err := b.atlas.FlushDirty(); err != nil {
		return err
	}

	for _, i := range changed {
		tex, err := b.atlas.PageTexture(i)
		if err != nil {
			return err
		}
		if err := b.up.SavePNG(tex, filepath.Join(b.cfg.Output, pageFile(i))); err != nil {
			return fmt.Errorf("write page %d: %w", i, err)
		}
		b.exported[i] = true
	}

	m := &manifest{PageSize: b.atlas.PageSize()}
	for i := 0; i < pages; i++ {
		m.Pages = append(m.Pages, manifestPage{Index: i, File: pageFile(i)})
	}
	for name, h := range b.sprites {
		pl, err := b.atlas.Placement(h)
		if err != nil {
			return err
		}
		m.Sprites = append(m.Sprites, sprite{
			Name: name, Page: pl.Page,
			X: pl.X, Y: pl.Y, Width: pl.Width, Height: pl.Height,
			U0: pl.U0, V0: pl.V0, U1: pl.U1, V1: pl.V1,
		})
	}
	m.sortSprites()

	if err := writeManifest(filepath.Join(b.cfg.Output, manifestFile), m); err != nil {
		return err
	}

	st := b.atlas.Stats()
	b.log.Info("exported atlas", "pages", st.Pages, "sprites", st.Regions, "written", len(changed))
	return nil
}
