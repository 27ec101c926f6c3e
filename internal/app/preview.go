package app

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchsign/internal/capture"
	"github.com/ayusman/pinchsign/internal/session"
)

var (
	regionColor   = color.RGBA{G: 0xff, A: 0xff}
	fingerColor   = color.RGBA{B: 0xff, A: 0xff}
	pinchingColor = color.RGBA{R: 0xff, A: 0xff}
)

const markerRadius = 6

// composePreview draws the ink and overlay onto a copy of the BGR frame,
// mirrors it and encodes it as JPEG.
func composePreview(frame, ink gocv.Mat, ov session.Overlay) ([]byte, error) {
	canvas := frame.Clone()
	defer canvas.Close()

	if err := stampInk(&canvas, ink); err != nil {
		return nil, err
	}
	drawOverlay(&canvas, ov)

	mirrored := capture.Mirror(canvas)
	defer mirrored.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mirrored)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}

// stampInk copies every inked pixel of the BGRA canvas onto dst.
func stampInk(dst *gocv.Mat, ink gocv.Mat) error {
	if ink.Empty() {
		return nil
	}
	if ink.Cols() != dst.Cols() || ink.Rows() != dst.Rows() {
		return fmt.Errorf("ink %dx%d does not match frame %dx%d", ink.Cols(), ink.Rows(), dst.Cols(), dst.Rows())
	}

	channels := gocv.Split(ink)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(ink, &bgr, gocv.ColorBGRAToBGR)
	bgr.CopyToWithMask(dst, channels[3])
	return nil
}

func drawOverlay(dst *gocv.Mat, ov session.Overlay) {
	if ov.Region != nil {
		gocv.Rectangle(dst, *ov.Region, regionColor, 2)
	}
	if !ov.HandVisible {
		return
	}
	c := fingerColor
	if ov.Pinching {
		c = pinchingColor
	}
	for _, p := range []image.Point{
		image.Pt(int(ov.Thumb.X), int(ov.Thumb.Y)),
		image.Pt(int(ov.Index.X), int(ov.Index.Y)),
	} {
		gocv.Circle(dst, p, markerRadius, c, 2)
	}
}
