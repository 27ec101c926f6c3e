package surface

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"github.com/ayusman/pinchsign/internal/painter"
)

// Memory is a pure-Go canvas backed by an RGBA image. It also keeps every
// segment it was asked to draw, in order.
type Memory struct {
	mu       sync.Mutex
	img      *image.RGBA
	raster   *vector.Rasterizer
	segments []painter.Segment
	closed   bool
}

// NewMemory creates a transparent width x height canvas.
func NewMemory(width, height int) *Memory {
	return &Memory{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		raster: vector.NewRasterizer(width, height),
	}
}

// DrawSegment implements Surface. The segment is filled as a quad of the
// stroke width.
func (m *Memory) DrawSegment(seg painter.Segment) error {
	c, err := ParseColor(seg.StrokeColor)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.segments = append(m.segments, seg)

	b := m.img.Bounds()
	m.raster.Reset(b.Dx(), b.Dy())
	half := float64(thickness(seg.StrokeWidth)) / 2
	dx, dy := seg.X2-seg.X1, seg.Y2-seg.Y1
	length := math.Hypot(dx, dy)
	// Unit direction; a zero-length segment becomes a square dot.
	ux, uy := 1.0, 0.0
	if length > 0 {
		ux, uy = dx/length, dy/length
	}
	// Normal scaled to half the width, and the ends extended by the same.
	nx, ny := -uy*half, ux*half
	ex, ey := ux*half, uy*half
	x1, y1 := seg.X1-ex, seg.Y1-ey
	x2, y2 := seg.X2+ex, seg.Y2+ey

	m.raster.MoveTo(float32(x1+nx), float32(y1+ny))
	m.raster.LineTo(float32(x2+nx), float32(y2+ny))
	m.raster.LineTo(float32(x2-nx), float32(y2-ny))
	m.raster.LineTo(float32(x1-nx), float32(y1-ny))
	m.raster.ClosePath()
	m.raster.DrawOp = draw.Over
	m.raster.Draw(m.img, b, image.NewUniform(c), image.Point{})
	return nil
}

// Clear implements Surface.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	clear(m.img.Pix)
	m.segments = nil
	return nil
}

// Bounds implements Surface.
func (m *Memory) Bounds() image.Rectangle {
	return m.img.Bounds()
}

// Image implements Surface. The result is a copy.
func (m *Memory) Image() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	out := image.NewRGBA(m.img.Bounds())
	copy(out.Pix, m.img.Pix)
	return out, nil
}

// Segments returns the drawn segments in order.
func (m *Memory) Segments() []painter.Segment {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]painter.Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// Close implements Surface.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
