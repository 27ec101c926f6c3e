package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Queued results are returned first, in order; afterwards every call
// returns the fixed hands set with SetHands.
type MockDetector struct {
	mu    sync.Mutex
	queue []Result
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once the queue is drained.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends results to be returned by subsequent Detect calls.
func (m *MockDetector) Enqueue(results ...Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the fixed hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return Result{MultiHandLandmarks: m.hands}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// openPalm is a right hand, palm facing the camera, with the index tip at
// (0.58, 0.35) and the thumb spread well away from it.
var openPalm = [NumLandmarks]Point3D{
	Wrist:     {X: 0.5, Y: 0.8},
	ThumbCMC:  {X: 0.55, Y: 0.75, Z: 0.02},
	ThumbMCP:  {X: 0.62, Y: 0.70, Z: 0.03},
	ThumbIP:   {X: 0.68, Y: 0.65, Z: 0.03},
	ThumbTip:  {X: 0.73, Y: 0.60, Z: 0.03},
	IndexMCP:  {X: 0.55, Y: 0.68},
	IndexPIP:  {X: 0.57, Y: 0.55},
	IndexDIP:  {X: 0.58, Y: 0.45},
	IndexTip:  {X: 0.58, Y: 0.35},
	MiddleMCP: {X: 0.50, Y: 0.66},
	MiddlePIP: {X: 0.50, Y: 0.52},
	MiddleDIP: {X: 0.50, Y: 0.40},
	MiddleTip: {X: 0.50, Y: 0.28},
	RingMCP:   {X: 0.45, Y: 0.68},
	RingPIP:   {X: 0.43, Y: 0.55},
	RingDIP:   {X: 0.42, Y: 0.45},
	RingTip:   {X: 0.42, Y: 0.35},
	PinkyMCP:  {X: 0.40, Y: 0.70},
	PinkyPIP:  {X: 0.37, Y: 0.60},
	PinkyDIP:  {X: 0.35, Y: 0.50},
	PinkyTip:  {X: 0.34, Y: 0.42},
}

// handAt translates openPalm so the index tip lands on (x, y).
func handAt(x, y float64) HandLandmarks {
	tip := openPalm[IndexTip]
	dx, dy := x-tip.X, y-tip.Y

	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	for i, p := range openPalm {
		h.Points[i] = Point3D{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
	}
	h.Points[IndexTip] = Point3D{X: x, Y: y}
	return h
}

// OpenHandLandmarks returns an open hand whose index tip is at (x, y).
// The thumb-index distance is far above any pinch threshold.
func OpenHandLandmarks(x, y float64) HandLandmarks {
	return handAt(x, y)
}

// PinchLandmarks returns a hand whose thumb tip touches the index tip at (x, y).
func PinchLandmarks(x, y float64) HandLandmarks {
	h := handAt(x, y)
	h.Points[ThumbIP] = Point3D{X: x + 0.04, Y: y + 0.06, Z: 0.02}
	h.Points[ThumbTip] = Point3D{X: x, Y: y, Z: 0.01}
	return h
}

// PinchResult wraps PinchLandmarks in a single-hand frame result.
func PinchResult(x, y float64) Result {
	return Result{MultiHandLandmarks: []HandLandmarks{PinchLandmarks(x, y)}}
}

// OpenHandResult wraps OpenHandLandmarks in a single-hand frame result.
func OpenHandResult(x, y float64) Result {
	return Result{MultiHandLandmarks: []HandLandmarks{OpenHandLandmarks(x, y)}}
}
