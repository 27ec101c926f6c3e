package surface

import (
	"fmt"
	"image"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchsign/internal/painter"
)

// MatSurface is a transparent BGRA gocv canvas.
type MatSurface struct {
	mu     sync.Mutex
	mat    gocv.Mat
	width  int
	height int
	closed bool
}

// NewMatSurface allocates a transparent width x height canvas.
func NewMatSurface(width, height int) *MatSurface {
	return &MatSurface{
		mat:    gocv.Zeros(height, width, gocv.MatTypeCV8UC4),
		width:  width,
		height: height,
	}
}

// DrawSegment implements Surface.
func (s *MatSurface) DrawSegment(seg painter.Segment) error {
	c, err := ParseColor(seg.StrokeColor)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	p1 := image.Pt(int(math.Round(seg.X1)), int(math.Round(seg.Y1)))
	p2 := image.Pt(int(math.Round(seg.X2)), int(math.Round(seg.Y2)))
	gocv.Line(&s.mat, p1, p2, c, thickness(seg.StrokeWidth))
	return nil
}

// Clear implements Surface.
func (s *MatSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	return nil
}

// Bounds implements Surface.
func (s *MatSurface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Image implements Surface.
func (s *MatSurface) Image() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert canvas: %w", err)
	}
	return img, nil
}

// CloneMat returns a copy of the canvas. The caller owns the result.
func (s *MatSurface) CloneMat() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return gocv.NewMat(), ErrClosed
	}
	return s.mat.Clone(), nil
}

// Close releases the canvas memory.
func (s *MatSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.mat.Close()
}
