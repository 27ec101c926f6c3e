package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Normalize resizes frame in place to the standard capture size.
func Normalize(frame *gocv.Mat) error {
	if frame.Cols() == StandardWidth && frame.Rows() == StandardHeight {
		return nil
	}
	resized := gocv.NewMat()
	gocv.Resize(*frame, &resized, image.Pt(StandardWidth, StandardHeight), 0, 0, gocv.InterpolationLinear)
	if resized.Empty() {
		resized.Close()
		return fmt.Errorf("resize frame from %dx%d", frame.Cols(), frame.Rows())
	}
	frame.Close()
	*frame = resized
	return nil
}

// Mirror returns frame flipped horizontally, as the signer sees it on
// screen. The caller closes the result.
func Mirror(frame gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.Flip(frame, &out, 1)
	return out
}

// BlankFrame returns a black frame at the standard size.
func BlankFrame() gocv.Mat {
	return gocv.Zeros(StandardHeight, StandardWidth, gocv.MatTypeCV8UC3)
}
