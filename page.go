package atlas

import (
	"slices"

	"github.com/weebcore/atlas/packer"
)

// page is one fixed-size pixel buffer with its own packer.
type page struct {
	index   int
	size    int
	pixels  []uint32 // 0xAARRGGBB, row-major, stride size
	packer  *packer.Packer
	texture TextureID

	// dirty marks if the page needs an upload.
	dirty bool

	live     int // live regions on this page
	usedArea int
}

func newPage(index, size int, texture TextureID) *page {
	return &page{
		index:   index,
		size:    size,
		pixels:  make([]uint32, size*size),
		packer:  packer.New(size, size),
		texture: texture,
	}
}

// write copies a width x height block of pixels (stride width) into dst at
// offset (dx, dy), cropped to dst. It reports whether any pixel changed.
func (p *page) write(dst packer.Rect, pixels []uint32, width, height, dx, dy int) bool {
	x0, y0 := int(dst.Left), int(dst.Top)
	rw, rh := int(dst.Width()), int(dst.Height())

	sx0, sx1 := max(0, -dx), min(width, rw-dx)
	sy0, sy1 := max(0, -dy), min(height, rh-dy)
	if sx0 >= sx1 || sy0 >= sy1 {
		return false
	}

	changed := false
	for sy := sy0; sy < sy1; sy++ {
		src := pixels[sy*width+sx0 : sy*width+sx1]
		off := (y0+dy+sy)*p.size + x0 + dx + sx0
		row := p.pixels[off : off+len(src)]
		if !changed && slices.Equal(row, src) {
			continue
		}
		copy(row, src)
		changed = true
	}
	return changed
}

// read copies the pixels under r into a new slice with stride r.Width().
func (p *page) read(r packer.Rect) []uint32 {
	x0, y0 := int(r.Left), int(r.Top)
	w, h := int(r.Width()), int(r.Height())
	out := make([]uint32, 0, w*h)
	for y := y0; y < y0+h; y++ {
		out = append(out, p.pixels[y*p.size+x0:y*p.size+x0+w]...)
	}
	return out
}

func (p *page) utilization() float64 {
	total := p.size * p.size
	if total == 0 {
		return 0
	}
	return float64(p.usedArea) / float64(total)
}
