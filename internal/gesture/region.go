package gesture

// Region is the calibrated interaction rectangle in pixel space.
// It is twice as wide as it is tall: Size sets the horizontal half-extent
// and Size/2 the vertical one.
type Region struct {
	CenterX    float64 `json:"centerX"`
	CenterY    float64 `json:"centerY"`
	HalfWidth  float64 `json:"halfWidth"`
	HalfHeight float64 `json:"halfHeight"`
}

// NewRegion returns the region centered on (x, y) for the given size.
func NewRegion(x, y, size float64) Region {
	return Region{
		CenterX:    x,
		CenterY:    y,
		HalfWidth:  size,
		HalfHeight: size / 2,
	}
}

// Contains reports whether (x, y) lies inside the region. Points on the
// boundary are inside.
func (r Region) Contains(x, y float64) bool {
	return x >= r.CenterX-r.HalfWidth &&
		x <= r.CenterX+r.HalfWidth &&
		y >= r.CenterY-r.HalfHeight &&
		y <= r.CenterY+r.HalfHeight
}

// Rect returns the top-left corner and full extent of the region.
func (r Region) Rect() (x, y, w, h float64) {
	return r.CenterX - r.HalfWidth, r.CenterY - r.HalfHeight, 2 * r.HalfWidth, 2 * r.HalfHeight
}
