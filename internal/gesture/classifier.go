// Package gesture turns per-frame thumb and index keypoints into pinch
// events, calibrating an interaction region on the first held pinch.
package gesture

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the pinch detection constants.
type Config struct {
	// PinchThreshold is the normalized thumb-index distance below which
	// the hand is pinching. The boundary itself is not a pinch.
	PinchThreshold float64

	// DebounceFrames is the number of consecutive pinching frames needed
	// before calibration fires.
	DebounceFrames int

	// RegionSize is the horizontal half-extent of the calibration region
	// in pixels.
	RegionSize float64
}

// DefaultConfig returns the capture constants.
func DefaultConfig() Config {
	return Config{
		PinchThreshold: 0.05,
		DebounceFrames: 5,
		RegionSize:     200,
	}
}

// Phase is the classifier's gesture state.
type Phase int

const (
	// PhaseIdle means not calibrated and not pinching.
	PhaseIdle Phase = iota
	// PhaseCalibrating means pinching but the debounce count is not reached yet.
	PhaseCalibrating
	// PhaseArmed means calibrated with no drag in progress.
	PhaseArmed
	// PhaseDragging means a pinch inside the region is driving the pen.
	PhaseDragging
	// PhaseReleased means the last drag ended with the pinch opening.
	PhaseReleased
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCalibrating:
		return "calibrating"
	case PhaseArmed:
		return "armed"
	case PhaseDragging:
		return "dragging"
	case PhaseReleased:
		return "released"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// EventKind identifies what a frame did to the gesture state.
type EventKind int

const (
	// EventNone means the frame changed nothing observable.
	EventNone EventKind = iota
	// EventCalibrated means the region was just fixed.
	EventCalibrated
	// EventDrag means a pinch inside the region moved the target.
	EventDrag
	// EventOutside means a calibrated pinch fell outside the region and was ignored.
	EventOutside
	// EventReleased means an active drag ended.
	EventReleased
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventCalibrated:
		return "calibrated"
	case EventDrag:
		return "drag"
	case EventOutside:
		return "outside"
	case EventReleased:
		return "released"
	default:
		return "unknown"
	}
}

// PinchSample is derived from one frame's thumb and index tips. The pen
// position is the index tip.
type PinchSample struct {
	Distance float64 `json:"distance"`
	PixelX   float64 `json:"pixelX"`
	PixelY   float64 `json:"pixelY"`
	NormX    float64 `json:"normX"`
	NormY    float64 `json:"normY"`
}

// Pinching reports whether the sample is below threshold.
func (s PinchSample) Pinching(threshold float64) bool {
	return s.Distance < threshold
}

// Pixel returns the pen position in pixel space.
func (s PinchSample) Pixel() r2.Vec {
	return r2.Vec{X: s.PixelX, Y: s.PixelY}
}

// Norm returns the pen position in normalized detector space.
func (s PinchSample) Norm() r2.Vec {
	return r2.Vec{X: s.NormX, Y: s.NormY}
}

// NewPinchSample computes the sample for a frame of the given pixel size.
func NewPinchSample(thumb, index r2.Vec, width, height float64) PinchSample {
	return PinchSample{
		Distance: r2.Norm(r2.Sub(thumb, index)),
		PixelX:   index.X * width,
		PixelY:   index.Y * height,
		NormX:    index.X,
		NormY:    index.Y,
	}
}

// Event is the outcome of classifying one frame.
type Event struct {
	Kind   EventKind
	Sample PinchSample
}

// Classifier is the pinch state machine for one capture session.
// It is not safe for concurrent use.
type Classifier struct {
	cfg         Config
	width       float64
	height      float64
	pinchFrames int
	region      *Region
	phase       Phase
	dragging    bool
}

// NewClassifier creates a classifier for frames of width x height pixels.
func NewClassifier(cfg Config, width, height int) *Classifier {
	return &Classifier{
		cfg:    cfg,
		width:  float64(width),
		height: float64(height),
	}
}

// Observe classifies one frame's thumb and index tips.
func (c *Classifier) Observe(thumb, index r2.Vec) Event {
	sample := NewPinchSample(thumb, index, c.width, c.height)

	if !sample.Pinching(c.cfg.PinchThreshold) {
		c.pinchFrames = 0
		if c.dragging {
			c.dragging = false
			c.phase = PhaseReleased
			return Event{Kind: EventReleased, Sample: sample}
		}
		if c.region == nil {
			c.phase = PhaseIdle
		}
		return Event{Kind: EventNone, Sample: sample}
	}

	c.pinchFrames++

	if c.region == nil {
		if c.pinchFrames >= c.cfg.DebounceFrames {
			r := NewRegion(sample.PixelX, sample.PixelY, c.cfg.RegionSize)
			c.region = &r
			c.phase = PhaseArmed
			return Event{Kind: EventCalibrated, Sample: sample}
		}
		c.phase = PhaseCalibrating
		return Event{Kind: EventNone, Sample: sample}
	}

	if !c.region.Contains(sample.PixelX, sample.PixelY) {
		return Event{Kind: EventOutside, Sample: sample}
	}

	c.dragging = true
	c.phase = PhaseDragging
	return Event{Kind: EventDrag, Sample: sample}
}

// EndDrag abandons an active drag without emitting a release. Calibration
// is kept; a continued pinch starts a new drag on the next frame.
func (c *Classifier) EndDrag() {
	c.dragging = false
	if c.region != nil {
		c.phase = PhaseArmed
	}
}

// Reset clears calibration, the region and all counters.
func (c *Classifier) Reset() {
	c.pinchFrames = 0
	c.region = nil
	c.dragging = false
	c.phase = PhaseIdle
}

// Calibrated reports whether a region has been fixed.
func (c *Classifier) Calibrated() bool {
	return c.region != nil
}

// Region returns a copy of the calibration region, or nil.
func (c *Classifier) Region() *Region {
	if c.region == nil {
		return nil
	}
	r := *c.region
	return &r
}

// Phase returns the current gesture state.
func (c *Classifier) Phase() Phase {
	return c.phase
}

// Dragging reports whether a drag is active.
func (c *Classifier) Dragging() bool {
	return c.dragging
}

// PinchFrames returns the consecutive pinching frame count.
func (c *Classifier) PinchFrames() int {
	return c.pinchFrames
}
