// Package surface provides the persistent drawing canvas the painters ink
// onto. Coordinates are natural (non-mirrored) pixels; any mirroring happens
// at display and export time.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/ayusman/pinchsign/internal/painter"
)

// ErrClosed is returned when drawing on a released surface.
var ErrClosed = errors.New("surface is closed")

// Surface is a drawing target for painter segments.
type Surface interface {
	DrawSegment(seg painter.Segment) error
	Clear() error
	Bounds() image.Rectangle
	// Image returns the current canvas contents in natural orientation.
	Image() (image.Image, error)
	Close() error
}

// namedColors covers the stroke colors the painters use.
var namedColors = map[string]color.RGBA{
	"black": {A: 0xff},
	"white": {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":   {R: 0xff, A: 0xff},
	"green": {G: 0x80, A: 0xff},
	"blue":  {B: 0xff, A: 0xff},
}

// ParseColor resolves a stroke color name or #rrggbb value. Empty means
// black.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return namedColors["black"], nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

// thickness converts a stroke width to whole pixels, at least one.
func thickness(w float64) int {
	t := int(math.Round(w))
	if t < 1 {
		return 1
	}
	return t
}
