package atlas

import (
	"errors"
	"fmt"
	"sync"

	"github.com/weebcore/atlas/packer"
)

// Handle identifies one allocated region. Handles are small positive
// integers; a freed handle value may be issued again by a later Allocate.
type Handle int

// InvalidHandle is returned by failed allocations.
const InvalidHandle Handle = 0

// freeSlot marks a region table entry whose handle has been freed.
const freeSlot = -1

// region is one entry of the handle table.
type region struct {
	page int // index into Manager.pages, or freeSlot
	rect packer.Rect
}

// Manager allocates rectangular regions from a growing set of fixed-size
// pages, copies pixels into them and uploads changed pages in batches.
//
// Pages are created when no existing page can hold a request and are only
// released by Reset or Close. Writes touch the CPU-side page buffers; the
// textures are brought up to date by FlushDirty, typically once per frame.
//
// Manager is safe for concurrent use. A single lock guards every operation.
type Manager struct {
	mu sync.Mutex

	config   Config
	pageSize int
	uploader TextureUploader

	pages     []*page
	regions   []region
	freeSlots []int // indices into regions, reused LIFO

	closed bool
}

// New creates a manager. The page size is rounded up to a power of two.
func New(config Config, opts ...Option) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.uploader == nil {
		o.uploader = &logicalUploader{}
	}

	return &Manager{
		config:   config,
		pageSize: nextPowerOfTwo(config.PageSize),
		uploader: o.uploader,
		pages:    make([]*page, 0, 4),
	}, nil
}

// NewDefault creates a manager with the default configuration and no
// texture backend.
func NewDefault() *Manager {
	m, _ := New(DefaultConfig())
	return m
}

// PageSize returns the page width and height in pixels.
func (m *Manager) PageSize() int {
	return m.pageSize
}

// Config returns the configuration the manager was created with.
func (m *Manager) Config() Config {
	return m.config
}

// Allocate reserves a width x height region and returns its handle.
//
// Existing pages are tried in order; when none has room a new page is
// created. Requests larger than the page size always fail with an error
// wrapping ErrTooLarge and InvalidHandle.
func (m *Manager) Allocate(width, height int) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return InvalidHandle, ErrClosed
	}
	if width <= 0 || height <= 0 {
		return InvalidHandle, &SizeError{Width: width, Height: height, PageSize: m.pageSize, Err: ErrInvalidSize}
	}
	if width > m.pageSize || height > m.pageSize {
		return InvalidHandle, &SizeError{Width: width, Height: height, PageSize: m.pageSize, Err: ErrTooLarge}
	}

	r := packer.Size(float32(width), float32(height))
	var target *page
	for _, p := range m.pages {
		if p.packer.Pack(&r) {
			target = p
			break
		}
	}

	if target == nil {
		p, err := m.addPage()
		if err != nil {
			return InvalidHandle, err
		}
		if !p.packer.Pack(&r) {
			return InvalidHandle, &SizeError{Width: width, Height: height, PageSize: m.pageSize, Err: ErrTooLarge}
		}
		target = p
	}

	target.live++
	target.usedArea += width * height
	return m.storeRegion(region{page: target.index, rect: r}), nil
}

// addPage creates a page and its texture. Must be called with the lock held.
func (m *Manager) addPage() (*page, error) {
	if m.config.MaxPages > 0 && len(m.pages) >= m.config.MaxPages {
		return nil, ErrAtlasFull
	}

	index := len(m.pages)
	tex, err := m.uploader.CreateTexture(m.pageSize)
	if err != nil {
		Logger().Warn("atlas: texture creation failed", "atlas", m.config.Label, "page", index, "error", err)
		return nil, fmt.Errorf("atlas: create texture for page %d: %w", index, err)
	}

	p := newPage(index, m.pageSize, tex)
	m.pages = append(m.pages, p)
	Logger().Debug("atlas: page created", "atlas", m.config.Label, "page", index, "size", m.pageSize, "texture", tex)
	return p, nil
}

// storeRegion puts r in a free slot or a new one and returns its handle.
func (m *Manager) storeRegion(r region) Handle {
	if n := len(m.freeSlots); n > 0 {
		slot := m.freeSlots[n-1]
		m.freeSlots = m.freeSlots[:n-1]
		m.regions[slot] = r
		return Handle(slot + 1)
	}
	m.regions = append(m.regions, r)
	return Handle(len(m.regions))
}

// lookup returns the live region for h. Must be called with the lock held.
func (m *Manager) lookup(op string, h Handle) (*region, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if h <= InvalidHandle || int(h) > len(m.regions) {
		return nil, &HandleError{Op: op, Handle: h}
	}
	r := &m.regions[h-1]
	if r.page == freeSlot {
		return nil, &HandleError{Op: op, Handle: h}
	}
	return r, nil
}

// Write copies a width x height block of 0xAARRGGBB pixels (row-major,
// stride width) into the region of h, offset by (dx, dy) from the region's
// top-left corner. Pixels falling outside the region are cropped silently.
//
// The owning page is marked dirty only if a pixel value actually changed.
func (m *Manager) Write(h Handle, pixels []uint32, width, height, dx, dy int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.lookup("write", h)
	if err != nil {
		return err
	}
	if width < 0 || height < 0 {
		return &SizeError{Width: width, Height: height, PageSize: m.pageSize, Err: ErrInvalidSize}
	}
	if height > 0 && width > len(pixels)/height {
		return fmt.Errorf("%w: have %d, need %dx%d", ErrShortBuffer, len(pixels), width, height)
	}

	p := m.pages[r.page]
	if p.write(r.rect, pixels, width, height, dx, dy) {
		p.dirty = true
	}
	return nil
}

// Read returns a copy of the pixels of h's region, row-major with stride
// equal to the region width.
func (m *Manager) Read(h Handle) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.lookup("read", h)
	if err != nil {
		return nil, err
	}
	return m.pages[r.page].read(r.rect), nil
}

// Free releases the region of h back to its page. The page's pixels are
// left as they are. The handle must not be used afterwards; its value may
// be issued again by Allocate.
func (m *Manager) Free(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.lookup("free", h)
	if err != nil {
		return err
	}

	p := m.pages[r.page]
	p.packer.Free(r.rect)
	p.live--
	p.usedArea -= int(r.rect.Area())

	*r = region{page: freeSlot}
	m.freeSlots = append(m.freeSlots, int(h)-1)
	return nil
}

// FlushDirty uploads every dirty page to its texture and clears the dirty
// flags. This is the only place uploads happen; call it once per batch of
// writes, e.g. once per frame.
//
// A page whose upload fails stays dirty. The remaining pages are still
// flushed and the failures are returned joined.
func (m *Manager) FlushDirty() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var errs []error
	uploaded := 0
	for _, p := range m.pages {
		if !p.dirty {
			continue
		}
		if err := m.uploader.UploadTexture(p.texture, p.pixels, p.size); err != nil {
			Logger().Warn("atlas: page upload failed", "page", p.index, "error", err)
			errs = append(errs, fmt.Errorf("atlas: upload page %d: %w", p.index, err))
			continue
		}
		p.dirty = false
		uploaded++
	}

	if uploaded > 0 {
		Logger().Debug("atlas: flushed", "pages", uploaded)
	}
	return errors.Join(errs...)
}

// Reset releases every page and handle. Page textures are destroyed and
// new pages are created on demand by later allocations. All handles issued
// before Reset become invalid.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.releasePages()
}

// releasePages destroys all pages. Must be called with the lock held.
func (m *Manager) releasePages() {
	for _, p := range m.pages {
		m.uploader.DestroyTexture(p.texture)
	}
	clear(m.pages)
	m.pages = m.pages[:0]
	m.regions = nil
	m.freeSlots = nil
}

// Close releases all pages and textures.
// The manager should not be used after Close is called.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.releasePages()
	m.closed = true
}

// IsClosed returns true if the manager has been closed.
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
