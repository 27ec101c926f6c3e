package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/ayusman/pinchsign/internal/painter"
)

const (
	svgNamespace = "http://www.w3.org/2000/svg"
	pathStyle    = "fill:none;stroke:black;stroke-width:2"
)

type svgDocument struct {
	XMLName xml.Name `xml:"svg"`
	Xmlns   string   `xml:"xmlns,attr"`
	Width   int      `xml:"width,attr"`
	Height  int      `xml:"height,attr"`
	Group   svgGroup `xml:"g"`
}

type svgGroup struct {
	Transform string  `xml:"transform,attr"`
	Path      svgPath `xml:"path"`
}

type svgPath struct {
	D     string `xml:"d,attr"`
	Style string `xml:"style,attr,omitempty"`
}

// Line is one parsed move-to/line-to pair.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// LinesOf drops the stroke attributes of segs.
func LinesOf(segs []painter.Segment) []Line {
	out := make([]Line, len(segs))
	for i, s := range segs {
		out[i] = Line{X1: s.X1, Y1: s.Y1, X2: s.X2, Y2: s.Y2}
	}
	return out
}

// VectorDoc is a parsed signature document.
type VectorDoc struct {
	Width     int
	Height    int
	Transform string
	Lines     []Line
}

// MirrorTransform is the group transform that flips a width-wide canvas
// horizontally.
func MirrorTransform(width int) string {
	return fmt.Sprintf("translate(%d,0) scale(-1,1)", width)
}

// PathData builds the path "d" attribute: one "M x1 y1 L x2 y2" pair per
// segment in recorded order.
func PathData(segs []painter.Segment) string {
	var sb strings.Builder
	for i, s := range segs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "M %s %s L %s %s",
			formatFloat(s.X1), formatFloat(s.Y1), formatFloat(s.X2), formatFloat(s.Y2))
	}
	return sb.String()
}

// Vector renders segs as an SVG document mirrored to match the raster
// export.
func Vector(segs []painter.Segment, width, height int) ([]byte, error) {
	doc := svgDocument{
		Xmlns:  svgNamespace,
		Width:  width,
		Height: height,
		Group: svgGroup{
			Transform: MirrorTransform(width),
			Path:      svgPath{D: PathData(segs), Style: pathStyle},
		},
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode svg: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseVector reads a document produced by Vector.
func ParseVector(data []byte) (*VectorDoc, error) {
	var doc svgDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode svg: %w", err)
	}
	lines, err := ParsePathData(doc.Group.Path.D)
	if err != nil {
		return nil, err
	}
	return &VectorDoc{
		Width:     doc.Width,
		Height:    doc.Height,
		Transform: doc.Group.Transform,
		Lines:     lines,
	}, nil
}

// ParsePathData parses a sequence of "M x y L x y" pairs.
func ParsePathData(d string) ([]Line, error) {
	fields := strings.Fields(d)
	if len(fields)%6 != 0 {
		return nil, fmt.Errorf("%w: %d tokens", ErrMalformedPath, len(fields))
	}
	lines := make([]Line, 0, len(fields)/6)
	for i := 0; i < len(fields); i += 6 {
		if fields[i] != "M" || fields[i+3] != "L" {
			return nil, fmt.Errorf("%w: expected M/L at token %d", ErrMalformedPath, i)
		}
		var v [4]float64
		for j, idx := range [4]int{i + 1, i + 2, i + 4, i + 5} {
			f, err := strconv.ParseFloat(fields[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: token %d: %v", ErrMalformedPath, idx, err)
			}
			v[j] = f
		}
		lines = append(lines, Line{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]})
	}
	return lines, nil
}
