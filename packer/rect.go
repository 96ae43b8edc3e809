package packer

import "fmt"

// Rect is an axis-aligned rectangle stored as its four edges.
//
// A Rect is normalized when Left <= Right and Top <= Bottom. Most methods
// expect normalized input and return meaningless results otherwise.
type Rect struct {
	Left, Right, Top, Bottom float32
}

// NewRect returns a rectangle at (x, y) with the given size.
func NewRect(x, y, width, height float32) Rect {
	return Rect{Left: x, Right: x + width, Top: y, Bottom: y + height}
}

// Size returns a rectangle at the origin with the given size.
// It is the form Pack expects as input.
func Size(width, height float32) Rect {
	return Rect{Right: width, Bottom: height}
}

// X returns the left edge.
func (r Rect) X() float32 { return r.Left }

// Y returns the top edge.
func (r Rect) Y() float32 { return r.Top }

// Width returns Right - Left.
func (r Rect) Width() float32 { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// Area returns Width * Height.
func (r Rect) Area() float32 { return r.Width() * r.Height() }

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// SetPos moves the rectangle so its top-left corner is at (x, y),
// keeping its size.
func (r *Rect) SetPos(x, y float32) {
	w, h := r.Width(), r.Height()
	r.Left, r.Top = x, y
	r.Right, r.Bottom = x+w, y+h
}

// Normalize swaps edges so that width and height are not negative.
func (r *Rect) Normalize() {
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
}

// Intersects reports whether r and o overlap. Edges are half-open, so
// rectangles that only touch do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && r.Right > o.Left && r.Top < o.Bottom && r.Bottom > o.Top
}

// Contains reports whether o lies entirely inside r. Shared edges count as
// inside.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Right <= r.Right && o.Top >= r.Top && o.Bottom <= r.Bottom
}

// FitsIn reports whether a rectangle of r's size would fit inside o,
// ignoring position.
func (r Rect) FitsIn(o Rect) bool {
	return r.Width() <= o.Width() && r.Height() <= o.Height()
}

// ContainsPoint reports whether (x, y) lies inside r.
func (r Rect) ContainsPoint(x, y float32) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// String returns a string representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g,%g %gx%g)", r.Left, r.Top, r.Width(), r.Height())
}
