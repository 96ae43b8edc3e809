package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weebcore/atlas"
	"github.com/weebcore/atlas/backend"
	"github.com/weebcore/atlas/backend/software"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

var (
	red  = color.NRGBA{R: 0xFF, A: 0xFF}
	blue = color.NRGBA{B: 0xFF, A: 0xFF}
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlaspack.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
page_size = 512
max_pages = 3
output = "build"
inputs = ["a", "b"]
scale = 0.5
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config{
		PageSize: 512,
		MaxPages: 3,
		Output:   "build",
		Inputs:   []string{"a", "b"},
		Scale:    0.5,
	}, cfg)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte(`inputs = ["x"]`), 0o644))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.PageSize)
	assert.Equal(t, 1.0, cfg.Scale)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("page_sise = 256\n"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_sise")
}

func TestConfigValidate(t *testing.T) {
	base := defaultConfig()
	base.Inputs = []string{"in"}
	require.NoError(t, base.validate())

	tests := []struct {
		name   string
		modify func(*config)
	}{
		{"no inputs", func(c *config) { c.Inputs = nil }},
		{"no output", func(c *config) { c.Output = "" }},
		{"zero scale", func(c *config) { c.Scale = 0 }},
		{"zero page size", func(c *config) { c.PageSize = 0 }},
		{"negative max pages", func(c *config) { c.MaxPages = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			c.Inputs = append([]string(nil), base.Inputs...)
			tt.modify(&c)
			assert.Error(t, c.validate())
		})
	}
}

func TestRun_PacksDirectory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sprites")
	out := filepath.Join(dir, "out")

	writePNG(t, filepath.Join(in, "a.png"), 10, 10, red)
	writePNG(t, filepath.Join(in, "sub", "b.png"), 20, 5, blue)
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("skip"), 0o644))

	err := run(context.Background(), []string{"-out", out, "-size", "50", in}, io.Discard)
	require.NoError(t, err)

	m, err := readManifest(filepath.Join(out, manifestFile))
	require.NoError(t, err)
	assert.Equal(t, 64, m.PageSize)
	require.Len(t, m.Pages, 1)
	assert.Equal(t, "page-0.png", m.Pages[0].File)
	require.Len(t, m.Sprites, 2)
	assert.Equal(t, "a.png", m.Sprites[0].Name)
	assert.Equal(t, "sub/b.png", m.Sprites[1].Name)

	page := readPNG(t, filepath.Join(out, "page-0.png"))
	assert.Equal(t, 64, page.Bounds().Dx())

	for _, s := range m.Sprites {
		want := red
		if s.Name == "sub/b.png" {
			want = blue
			assert.Equal(t, [2]int{20, 5}, [2]int{s.Width, s.Height})
		}
		got := color.NRGBAModel.Convert(page.At(s.X+s.Width/2, s.Y+s.Height/2)).(color.NRGBA)
		assert.Equal(t, want, got, s.Name)
		assert.InDelta(t, float64(s.X)/64, float64(s.U0), 1e-6)
	}
}

func TestRun_ConfigFileAndScale(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writePNG(t, filepath.Join(in, "big.png"), 40, 20, red)

	cfgPath := filepath.Join(dir, "atlaspack.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
page_size = 32
output = "`+filepath.ToSlash(out)+`"
inputs = ["`+filepath.ToSlash(in)+`"]
scale = 0.5
`), 0o644))

	require.NoError(t, run(context.Background(), []string{"-config", cfgPath}, io.Discard))

	m, err := readManifest(filepath.Join(out, manifestFile))
	require.NoError(t, err)
	require.Len(t, m.Sprites, 1)
	assert.Equal(t, 20, m.Sprites[0].Width)
	assert.Equal(t, 10, m.Sprites[0].Height)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()

	err := run(context.Background(), []string{"-out", dir}, io.Discard)
	assert.Error(t, err, "no inputs")

	in := filepath.Join(dir, "in")
	writePNG(t, filepath.Join(in, "huge.png"), 100, 10, red)
	err = run(context.Background(), []string{"-out", filepath.Join(dir, "out"), "-size", "64", in}, io.Discard)
	assert.Error(t, err, "sprite larger than a page")

	err = run(context.Background(), []string{"-nope"}, io.Discard)
	assert.Error(t, err)
}

func newTestBuilder(t *testing.T, in, out string, pageSize int) *builder {
	t.Helper()
	cfg := defaultConfig()
	cfg.PageSize = pageSize
	cfg.Output = out
	cfg.Inputs = []string{in}

	b, err := newBuilder(cfg, newLogger(io.Discard, false))
	require.NoError(t, err)
	t.Cleanup(b.close)
	return b
}

func TestBuilder_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	a := filepath.Join(in, "a.png")
	writePNG(t, a, 8, 8, red)

	b := newTestBuilder(t, in, filepath.Join(dir, "out"), 64)
	require.NoError(t, b.scan())
	require.NoError(t, b.export())
	require.Contains(t, b.sprites, "a.png")

	// Rewritten with a new size: freed and packed again.
	writePNG(t, a, 12, 4, blue)
	assert.True(t, b.handleEvent(nil, fsnotify.Event{Name: a, Op: fsnotify.Write}))
	r, err := b.atlas.Region(b.sprites["a.png"])
	require.NoError(t, err)
	assert.Equal(t, float32(12), r.Width())
	assert.Equal(t, 1, b.atlas.Stats().Regions)

	// Non-images are ignored.
	txt := filepath.Join(in, "readme.txt")
	require.NoError(t, os.WriteFile(txt, nil, 0o644))
	assert.False(t, b.handleEvent(nil, fsnotify.Event{Name: txt, Op: fsnotify.Create}))

	// New directory: its images are packed.
	sub := filepath.Join(in, "icons")
	writePNG(t, filepath.Join(sub, "x.png"), 4, 4, red)
	assert.True(t, b.handleEvent(nil, fsnotify.Event{Name: sub, Op: fsnotify.Create}))
	assert.Contains(t, b.sprites, "icons/x.png")

	// Removal frees the sprite.
	require.NoError(t, os.Remove(a))
	assert.True(t, b.handleEvent(nil, fsnotify.Event{Name: a, Op: fsnotify.Remove}))
	assert.NotContains(t, b.sprites, "a.png")
	assert.False(t, b.handleEvent(nil, fsnotify.Event{Name: a, Op: fsnotify.Remove}))

	require.NoError(t, b.export())
	m, err := readManifest(filepath.Join(b.cfg.Output, manifestFile))
	require.NoError(t, err)
	require.Len(t, m.Sprites, 1)
	assert.Equal(t, "icons/x.png", m.Sprites[0].Name)
}

func TestBuilder_ExportOnlyChangedPages(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writePNG(t, filepath.Join(in, "a.png"), 8, 8, red)

	b := newTestBuilder(t, in, out, 16)
	require.NoError(t, b.scan())
	require.NoError(t, b.export())
	assert.Equal(t, 1, b.up.Uploads())

	require.NoError(t, b.export())
	assert.Equal(t, 1, b.up.Uploads(), "clean pages are not uploaded again")

	// A full-page sprite cannot share page 0.
	writePNG(t, filepath.Join(in, "b.png"), 16, 16, blue)
	require.NoError(t, b.add(filepath.Join(in, "b.png")))
	require.NoError(t, b.export())
	assert.Equal(t, 2, b.up.Uploads())
	assert.FileExists(t, filepath.Join(out, "page-1.png"))
}

func TestSpriteName(t *testing.T) {
	b := &builder{cfg: config{Inputs: []string{"assets", "extra/logo.png"}}}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"assets/a.png", "a.png", true},
		{filepath.Join("assets", "ui", "b.png"), "ui/b.png", true},
		{"extra/logo.png", "logo.png", true},
		{"elsewhere/c.png", "", false},
	}
	for _, tt := range tests {
		got, ok := b.spriteName(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestScale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 3))
	assert.Same(t, img, scale(img, 1))

	half := scale(img, 0.5)
	assert.Equal(t, image.Rect(0, 0, 5, 2), half.Bounds())

	tiny := scale(img, 0.01)
	assert.Equal(t, image.Rect(0, 0, 1, 1), tiny.Bounds())
}

func TestIsImage(t *testing.T) {
	for _, p := range []string{"a.png", "b.JPG", "c.webp", "d.tiff", "e.bmp", "f.gif"} {
		assert.True(t, isImage(p), p)
	}
	for _, p := range []string{"a.txt", "b", "c.svg"} {
		assert.False(t, isImage(p), p)
	}
}

func TestNewBuilder_UsesRegisteredBackend(t *testing.T) {
	cfg := defaultConfig()
	cfg.Inputs = []string{t.TempDir()}

	b, err := newBuilder(cfg, newLogger(io.Discard, false))
	require.NoError(t, err)
	defer b.close()
	assert.NotNil(t, b.up)

	backend.Unregister(backend.NameSoftware)
	t.Cleanup(func() {
		backend.Register(backend.NameSoftware, func() (atlas.TextureUploader, error) {
			return software.New(), nil
		})
	})

	_, err = newBuilder(cfg, newLogger(io.Discard, false))
	assert.ErrorIs(t, err, backend.ErrBackendNotAvailable)
}
