package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back frames for tests and headless runs.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	fps     int
	mu      sync.Mutex
	running bool
}

// NewMockCamera plays frames in order, looping if loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// NewBlankCamera returns a looping camera producing n black frames.
func NewBlankCamera(n int) *MockCamera {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := BlankFrame()
		frames[i] = &m
	}
	return NewMockCamera(frames, true)
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if c.index >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrEndOfStream
		}
		c.index = 0
	}

	// Clone so callers may close what they get.
	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Release closes every frame the camera owns.
func (c *MockCamera) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.frames {
		f.Close()
	}
	c.frames = nil
}
