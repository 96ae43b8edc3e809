// Package glyph rasterizes font glyphs into atlas regions on first use.
//
// A Cache maps runes to atlas handles for one font face. Glyphs are drawn
// white with coverage in the alpha channel, so a draw call tints them by
// multiplying with the text color.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/weebcore/atlas"
)

// ErrNoGlyph is returned when the face has no glyph for a rune.
var ErrNoGlyph = errors.New("glyph: rune not in face")

// Entry is a cached glyph.
type Entry struct {
	// Handle is the atlas region holding the glyph mask, or
	// atlas.InvalidHandle for glyphs without pixels such as spaces.
	Handle atlas.Handle

	// Bounds is the glyph box relative to the dot, in pixels.
	Bounds image.Rectangle

	// Advance is the horizontal advance in pixels.
	Advance float64
}

// Stats holds cache statistics.
type Stats struct {
	Hits      atomic.Uint64
	Misses    atomic.Uint64
	Evictions atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxGlyphs bounds the number of cached glyphs. When the bound is
// reached the least recently used glyph is evicted and its region freed.
// Zero means unbounded.
func WithMaxGlyphs(n int) Option {
	return func(c *Cache) {
		c.maxGlyphs = max(0, n)
	}
}

// cached is a cache entry with its recency node.
type cached struct {
	Entry
	node *lruNode
}

// Cache rasterizes glyphs of one face into an atlas manager.
//
// When the atlas runs out of pages (Config.MaxPages) the least recently
// used glyphs are evicted until the new one fits.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	atlas     *atlas.Manager
	face      font.Face
	entries   map[rune]*cached
	lru       lruList
	maxGlyphs int

	// ownsFace is set when the cache created face and must close it.
	ownsFace bool

	stats Stats
}

// New creates a cache drawing glyphs of face into m. The caller keeps
// ownership of face.
func New(m *atlas.Manager, face font.Face, opts ...Option) *Cache {
	c := &Cache{
		atlas:   m,
		face:    face,
		entries: make(map[rune]*cached),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGoRegular creates a cache for the Go Regular font at size pixels per em.
func NewGoRegular(m *atlas.Manager, size float64, opts ...Option) (*Cache, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse go regular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph: create face: %w", err)
	}

	c := New(m, face, opts...)
	c.ownsFace = true
	return c, nil
}

// Glyph returns the entry for r, rasterizing it into the atlas if it is not
// cached yet.
func (c *Cache) Glyph(r rune) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[r]; ok {
		c.stats.Hits.Add(1)
		c.lru.moveToFront(e.node)
		return e.Entry, nil
	}
	c.stats.Misses.Add(1)

	e, err := c.rasterize(r)
	if err != nil {
		return Entry{}, err
	}
	if c.maxGlyphs > 0 && len(c.entries) >= c.maxGlyphs {
		c.evictOldest()
	}
	c.entries[r] = &cached{Entry: e, node: c.lru.pushFront(r)}
	return e, nil
}

// evictOldest drops the least recently used glyph and reports whether there
// was one. Must be called with the lock held.
func (c *Cache) evictOldest() bool {
	n := c.lru.oldest()
	if n == nil {
		return false
	}
	if err := c.drop(n.r); err != nil {
		atlas.Logger().Warn("glyph: evict failed", "rune", string(n.r), "error", err)
	}
	c.stats.Evictions.Add(1)
	return true
}

// drop removes r and frees its region. Must be called with the lock held.
func (c *Cache) drop(r rune) error {
	e, ok := c.entries[r]
	if !ok {
		return nil
	}
	delete(c.entries, r)
	c.lru.remove(e.node)
	if e.Handle == atlas.InvalidHandle {
		return nil
	}
	return c.atlas.Free(e.Handle)
}

// allocate reserves a region, evicting old glyphs while the atlas is full.
// Must be called with the lock held.
func (c *Cache) allocate(w, h int) (atlas.Handle, error) {
	for {
		handle, err := c.atlas.Allocate(w, h)
		if !errors.Is(err, atlas.ErrAtlasFull) || !c.evictOldest() {
			return handle, err
		}
	}
}

// rasterize draws r and stores it in the atlas. Must be called with the
// lock held.
func (c *Cache) rasterize(r rune) (Entry, error) {
	bounds, advance, ok := c.face.GlyphBounds(r)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %U", ErrNoGlyph, r)
	}

	rect := image.Rect(
		bounds.Min.X.Floor(), bounds.Min.Y.Floor(),
		bounds.Max.X.Ceil(), bounds.Max.Y.Ceil(),
	)
	e := Entry{
		Handle:  atlas.InvalidHandle,
		Bounds:  rect,
		Advance: float64(advance) / 64,
	}
	if rect.Empty() {
		return e, nil
	}

	mask := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: c.face,
		Dot:  fixed.P(-rect.Min.X, -rect.Min.Y),
	}
	d.DrawString(string(r))

	h, err := c.allocate(rect.Dx(), rect.Dy())
	if err != nil {
		return Entry{}, fmt.Errorf("glyph: allocate %U: %w", r, err)
	}
	if err := c.atlas.Write(h, maskToARGB(mask), rect.Dx(), rect.Dy(), 0, 0); err != nil {
		_ = c.atlas.Free(h)
		return Entry{}, fmt.Errorf("glyph: write %U: %w", r, err)
	}

	e.Handle = h
	atlas.Logger().Debug("glyph: rasterized", "rune", string(r), "handle", int(h),
		"width", rect.Dx(), "height", rect.Dy())
	return e, nil
}

// maskToARGB turns coverage into white pixels with matching alpha.
func maskToARGB(mask *image.Alpha) []uint32 {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	out := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x, a := range row {
			out[y*w+x] = atlas.PackARGB(a, 0xFF, 0xFF, 0xFF)
		}
	}
	return out
}

// Preload rasterizes every rune of s after NFC normalization. Runes the
// face does not have are skipped; other failures are returned joined.
func (c *Cache) Preload(s string) error {
	var errs []error
	for _, r := range norm.NFC.String(s) {
		if _, err := c.Glyph(r); err != nil && !errors.Is(err, ErrNoGlyph) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Release drops r from the cache and frees its atlas region.
func (c *Cache) Release(r rune) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drop(r)
}

// Len returns the number of cached glyphs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the cache statistics.
func (c *Cache) Stats() *Stats {
	return &c.stats
}

// Close frees every cached region, and closes the face if the cache
// created it.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for r, e := range c.entries {
		if e.Handle != atlas.InvalidHandle {
			if err := c.atlas.Free(e.Handle); err != nil && !errors.Is(err, atlas.ErrClosed) {
				errs = append(errs, err)
			}
		}
		delete(c.entries, r)
	}
	c.lru.clear()
	if c.ownsFace {
		errs = append(errs, c.face.Close())
		c.ownsFace = false
	}
	return errors.Join(errs...)
}
