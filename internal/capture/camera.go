// Package capture provides the webcam frame source used while signing.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Standard capture geometry. The canvas and all pixel coordinates use it.
const (
	StandardWidth  = 640
	StandardHeight = 480
	DefaultFPS     = 30
)

// ErrCameraNotOpen is returned when reading from a source that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// ErrEndOfStream is returned when a finite source has no more frames.
var ErrEndOfStream = errors.New("end of stream")

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

type cameraImpl struct {
	deviceID int
	path     string
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a Camera for the given device id.
func NewCamera(deviceID int) Camera {
	return &cameraImpl{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// NewVideoFile creates a Camera that plays a video file once.
func NewVideoFile(path string) Camera {
	return &cameraImpl{
		path: path,
		fps:  DefaultFPS,
	}
}

// Open starts capture at the standard resolution.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.path != "" {
		capture, err = gocv.VideoCaptureFile(c.path)
	} else {
		capture, err = gocv.OpenVideoCapture(c.deviceID)
	}
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}

	if c.path == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, StandardWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, StandardHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true
	return nil
}

// Close stops capture.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// ReadFrame reads the next frame, resized to the standard resolution if the
// device ignored the requested size.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		if c.path != "" {
			return nil, ErrEndOfStream
		}
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	if err := Normalize(&mat); err != nil {
		mat.Close()
		return nil, err
	}
	return &mat, nil
}

// SetFPS sets the capture rate. Values <= 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil && c.path == "" {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the capture rate.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether capture is running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
