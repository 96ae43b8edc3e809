package atlas

import "github.com/weebcore/atlas/packer"

// Placement describes where a region lives, for building draw geometry.
type Placement struct {
	// Page is the index of the page holding the region.
	Page int

	// Texture is the page's texture.
	Texture TextureID

	// Pixel coordinates in the page.
	X, Y, Width, Height int

	// UV coordinates [0, 1] for texture sampling.
	U0, V0, U1, V1 float32
}

// Placement returns the page texture and position of h.
func (m *Manager) Placement(h Handle) (Placement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.lookup("placement", h)
	if err != nil {
		return Placement{}, err
	}

	size := float32(m.pageSize)
	return Placement{
		Page:    r.page,
		Texture: m.pages[r.page].texture,
		X:       int(r.rect.Left),
		Y:       int(r.rect.Top),
		Width:   int(r.rect.Width()),
		Height:  int(r.rect.Height()),
		U0:      r.rect.Left / size,
		V0:      r.rect.Top / size,
		U1:      r.rect.Right / size,
		V1:      r.rect.Bottom / size,
	}, nil
}

// Region returns the rectangle of h within its page.
func (m *Manager) Region(h Handle) (packer.Rect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.lookup("region", h)
	if err != nil {
		return packer.Rect{}, err
	}
	return r.rect, nil
}

// PageCount returns the number of pages currently allocated.
func (m *Manager) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// page returns page i. Must be called with the lock held.
func (m *Manager) page(i int) (*page, error) {
	if i < 0 || i >= len(m.pages) {
		return nil, ErrPageOutOfRange
	}
	return m.pages[i], nil
}

// PageTexture returns the texture of page i.
func (m *Manager) PageTexture(i int) (TextureID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.page(i)
	if err != nil {
		return InvalidTexture, err
	}
	return p.texture, nil
}

// PageFreeRects returns a copy of the free rectangles of page i, for
// visualizing fragmentation.
func (m *Manager) PageFreeRects(i int) ([]packer.Rect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.page(i)
	if err != nil {
		return nil, err
	}
	return p.packer.FreeRects(), nil
}

// PagePixels returns a copy of the pixel buffer of page i.
func (m *Manager) PagePixels(i int) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.page(i)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(p.pixels))
	copy(out, p.pixels)
	return out, nil
}

// PageDirty reports whether page i has writes not yet flushed.
func (m *Manager) PageDirty(i int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.page(i)
	if err != nil {
		return false, err
	}
	return p.dirty, nil
}

// PageInfo contains information about a single page.
type PageInfo struct {
	Index       int
	Texture     TextureID
	Regions     int
	FreeRects   int
	Utilization float64
	Dirty       bool
	MemoryBytes int
}

// PageInfos returns information about all pages.
func (m *Manager) PageInfos() []PageInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]PageInfo, len(m.pages))
	for i, p := range m.pages {
		infos[i] = PageInfo{
			Index:       i,
			Texture:     p.texture,
			Regions:     p.live,
			FreeRects:   p.packer.Len(),
			Utilization: p.utilization(),
			Dirty:       p.dirty,
			MemoryBytes: len(p.pixels) * 4,
		}
	}
	return infos
}

// Stats summarizes the manager's state.
type Stats struct {
	Pages       int
	Regions     int // live handles
	FreeSlots   int // handle slots waiting for reuse
	DirtyPages  int
	MemoryBytes int64
}

// Stats returns a snapshot of the manager's state.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Pages:     len(m.pages),
		Regions:   len(m.regions) - len(m.freeSlots),
		FreeSlots: len(m.freeSlots),
	}
	for _, p := range m.pages {
		if p.dirty {
			s.DirtyPages++
		}
		s.MemoryBytes += int64(len(p.pixels)) * 4
	}
	return s
}
