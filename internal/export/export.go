// Package export renders a recorded stroke into its saved artifacts: a
// mirror-corrected PNG of the canvas, an ordered SVG path of the reference
// segments and the normalized coordinate log.
//
// The canvas and the recorded segments are in natural camera orientation.
// The on-screen preview is mirrored, so both exports apply the same
// horizontal flip and agree with what the signer saw.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/pinchsign/internal/painter"
	"github.com/ayusman/pinchsign/internal/surface"
)

// Artifact file names.
const (
	RasterFile      = "signature.png"
	VectorFile      = "signature.svg"
	CoordinatesFile = "coordinates.txt"
)

// ErrMalformedPath is returned when an SVG path cannot be parsed back into
// segments.
var ErrMalformedPath = errors.New("malformed signature path")

// Artifacts is the result of one save.
type Artifacts struct {
	PNG         []byte
	SVG         []byte
	Coordinates string
	Segments    []painter.Segment
	Width       int
	Height      int
}

// Empty reports whether no stroke was recorded.
func (a *Artifacts) Empty() bool {
	return len(a.Segments) == 0
}

// Build exports the canvas and the recorded stroke.
func Build(s surface.Surface, segs []painter.Segment, trace []r2.Vec) (*Artifacts, error) {
	b := s.Bounds()
	png, err := Raster(s)
	if err != nil {
		return nil, err
	}
	svg, err := Vector(segs, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	return &Artifacts{
		PNG:         png,
		SVG:         svg,
		Coordinates: Coordinates(trace),
		Segments:    segs,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// WriteDir writes the three artifact files into dir, creating it if needed.
func (a *Artifacts) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	files := []struct {
		name string
		data []byte
	}{
		{RasterFile, a.PNG},
		{VectorFile, a.SVG},
		{CoordinatesFile, []byte(a.Coordinates)},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// Coordinates formats the normalized target log as "(x,y), " entries.
func Coordinates(points []r2.Vec) string {
	var sb strings.Builder
	for _, p := range points {
		sb.WriteByte('(')
		sb.WriteString(formatFloat(p.X))
		sb.WriteByte(',')
		sb.WriteString(formatFloat(p.Y))
		sb.WriteString("), ")
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
