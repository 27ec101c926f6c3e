package export

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchsign/internal/surface"
)

// horizontalFlip is the gocv.Flip code for mirroring around the y axis.
const horizontalFlip = 1

// Raster encodes the canvas as PNG, flipped horizontally.
func Raster(s surface.Surface) ([]byte, error) {
	// canvasMat releases its Mat on error.
	src, err := canvasMat(s)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Flip(src, &dst, horizontalFlip)

	return encodePNG(dst)
}

func canvasMat(s surface.Surface) (gocv.Mat, error) {
	if ms, ok := s.(*surface.MatSurface); ok {
		m, err := ms.CloneMat()
		if err != nil {
			m.Close()
			return gocv.Mat{}, fmt.Errorf("read canvas: %w", err)
		}
		return m, nil
	}
	img, err := s.Image()
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("read canvas: %w", err)
	}
	m, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("convert canvas: %w", err)
	}
	return m, nil
}

func encodePNG(m gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, m)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
