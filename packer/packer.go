package packer

import "math"

// Packer places rectangles inside a fixed-size area using a best-fit
// free-rectangle search.
//
// The packer tracks the unoccupied space as a list of possibly overlapping
// free rectangles. Pack picks the smallest free rectangle that can hold the
// request, places the request at its top-left corner and splits every free
// rectangle the placement overlaps. Fragments that end up inside another
// fragment are pruned after each call, which keeps the list short.
//
// Adjacent free rectangles are never merged, so long alloc/free churn can
// fragment the free space.
//
// Packer is not safe for concurrent use.
type Packer struct {
	width  int
	height int

	free    []Rect
	scratch []Rect
}

// New creates a packer for a width x height area. The whole area starts free.
func New(width, height int) *Packer {
	p := &Packer{
		width:   width,
		height:  height,
		free:    make([]Rect, 0, 16),
		scratch: make([]Rect, 0, 16),
	}
	p.Reset()
	return p
}

// Width returns the width of the packed area.
func (p *Packer) Width() int { return p.width }

// Height returns the height of the packed area.
func (p *Packer) Height() int { return p.height }

// Len returns the number of free rectangles.
func (p *Packer) Len() int { return len(p.free) }

// FreeRects returns a copy of the current free rectangles.
func (p *Packer) FreeRects() []Rect {
	out := make([]Rect, len(p.free))
	copy(out, p.free)
	return out
}

// Reset makes the whole area free again.
func (p *Packer) Reset() {
	p.free = append(p.free[:0], Rect{Right: float32(p.width), Bottom: float32(p.height)})
}

// Pack finds room for r. Only the size of r is used on input; on success r
// is moved to its placement and Pack returns true. When nothing fits, Pack
// returns false and leaves both r and the free list untouched. A failed Pack
// is routine: callers are expected to try another area.
func (p *Packer) Pack(r *Rect) bool {
	if r.Width() < 0 || r.Height() < 0 {
		return false
	}

	best := p.bestFit(*r)
	if best < 0 {
		return false
	}

	r.SetPos(p.free[best].Left, p.free[best].Top)
	p.split(*r)
	p.prune()
	return true
}

// Free returns r to the free space. r should be a rectangle that was
// previously packed, or is otherwise known to be unoccupied.
func (p *Packer) Free(r Rect) {
	p.free = append(p.free, r)
	p.prune()
}

// bestFit returns the index of the smallest free rectangle r fits in, or -1.
// Ties go to the first one found.
func (p *Packer) bestFit(r Rect) int {
	best := -1
	bestArea := float32(math.MaxFloat32)
	for i, f := range p.free {
		if !r.FitsIn(f) {
			continue
		}
		if area := f.Area(); area < bestArea {
			bestArea = area
			best = i
		}
	}
	return best
}

// split replaces every free rectangle overlapping placed with the strips
// of it that lie left, right, above and below placed.
func (p *Packer) split(placed Rect) {
	out := p.scratch[:0]
	for _, f := range p.free {
		if !placed.Intersects(f) {
			out = append(out, f)
			continue
		}
		if placed.Left > f.Left {
			out = append(out, Rect{Left: f.Left, Right: placed.Left, Top: f.Top, Bottom: f.Bottom})
		}
		if placed.Right < f.Right {
			out = append(out, Rect{Left: placed.Right, Right: f.Right, Top: f.Top, Bottom: f.Bottom})
		}
		if placed.Top > f.Top {
			out = append(out, Rect{Left: f.Left, Right: f.Right, Top: f.Top, Bottom: placed.Top})
		}
		if placed.Bottom < f.Bottom {
			out = append(out, Rect{Left: f.Left, Right: f.Right, Top: placed.Bottom, Bottom: f.Bottom})
		}
	}
	p.scratch, p.free = p.free, out
}

// prune drops free rectangles that lie inside another free rectangle, and
// any rectangle without positive area. Containment is non-strict, so of two
// identical rectangles only one survives.
func (p *Packer) prune() {
	rects := p.free
	for i := range rects {
		if rects[i].Empty() {
			continue
		}
		for j := range rects {
			if i == j || rects[j].Empty() {
				continue
			}
			if rects[j].Contains(rects[i]) {
				// zero width marks it for removal
				rects[i].Left, rects[i].Right = 0, 0
				break
			}
		}
	}

	n := 0
	for _, r := range rects {
		if !r.Empty() {
			rects[n] = r
			n++
		}
	}
	p.free = rects[:n]
}
