// Package session binds the gesture classifier, calibration region, painter
// ensemble, segment recorder, tick scheduler and drawing surface into one
// explicit signing session.
//
// A Session is not safe for concurrent use. Frames, ticks and user actions
// must all be delivered from the same goroutine; the scheduler's dispatch
// is expected to post ticks onto that goroutine.
package session

import (
	"fmt"
	"image"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/pinchsign/internal/capture"
	"github.com/ayusman/pinchsign/internal/detector"
	"github.com/ayusman/pinchsign/internal/export"
	"github.com/ayusman/pinchsign/internal/gesture"
	"github.com/ayusman/pinchsign/internal/painter"
	"github.com/ayusman/pinchsign/internal/scheduler"
	"github.com/ayusman/pinchsign/internal/surface"
)

// Options configures a Session. Zero values take defaults.
type Options struct {
	Width  int
	Height int

	Gesture gesture.Config
	Painter painter.Config

	// Scheduler drives the animation tick. Defaults to a manual scheduler.
	Scheduler scheduler.Scheduler

	// Surface is the persistent canvas. Defaults to an in-memory canvas.
	Surface surface.Surface

	// Rand seeds painter ease factors.
	Rand *rand.Rand
}

func (o *Options) withDefaults() {
	if o.Width <= 0 {
		o.Width = capture.StandardWidth
	}
	if o.Height <= 0 {
		o.Height = capture.StandardHeight
	}
	if o.Gesture == (gesture.Config{}) {
		o.Gesture = gesture.DefaultConfig()
	}
	if o.Painter == (painter.Config{}) {
		o.Painter = painter.DefaultConfig()
	}
	if o.Scheduler == nil {
		o.Scheduler = scheduler.NewManual()
	}
	if o.Surface == nil {
		o.Surface = surface.NewMemory(o.Width, o.Height)
	}
}

// Target is the live pen position in pixel and normalized space.
type Target struct {
	Pixel r2.Vec `json:"pixel"`
	Norm  r2.Vec `json:"norm"`
}

// Overlay describes what the preview draws over the camera image, in
// natural pixel space.
type Overlay struct {
	HandVisible bool             `json:"handVisible"`
	Thumb       r2.Vec           `json:"thumb"`
	Index       r2.Vec           `json:"index"`
	Pinching    bool             `json:"pinching"`
	Region      *image.Rectangle `json:"region,omitempty"`
}

// State is a read-only view of a session.
type State struct {
	Phase         gesture.Phase   `json:"phase"`
	Calibrated    bool            `json:"calibrated"`
	Region        *gesture.Region `json:"region,omitempty"`
	Dragging      bool            `json:"dragging"`
	Target        *Target         `json:"target,omitempty"`
	EnsembleSize  int             `json:"ensembleSize"`
	SegmentCount  int             `json:"segmentCount"`
	TickPending   bool            `json:"tickPending"`
	SaveAvailable bool            `json:"saveAvailable"`
	Overlay       Overlay         `json:"overlay"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
}

// Session is one signing session.
type Session struct {
	opts Options

	classifier *gesture.Classifier
	ensemble   *painter.Ensemble
	recorder   *painter.Recorder
	trace      painter.Trace
	sched      scheduler.Scheduler
	surf       surface.Surface

	target        *Target
	saveAvailable bool
	overlay       Overlay
	listeners     []func(Event)
}

// New creates an idle, uncalibrated session.
func New(opts Options) *Session {
	opts.withDefaults()
	return &Session{
		opts:       opts,
		classifier: gesture.NewClassifier(opts.Gesture, opts.Width, opts.Height),
		ensemble:   painter.NewEnsemble(opts.Painter, opts.Rand),
		recorder:   painter.NewRecorder(),
		sched:      opts.Scheduler,
		surf:       opts.Surface,
	}
}

// OnEvent registers fn to receive session events.
func (s *Session) OnEvent(fn func(Event)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) emit(ev Event) {
	ev.SegmentCount = s.recorder.Len()
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// HandleFrame consumes one detector result. Frames without a hand change
// nothing.
func (s *Session) HandleFrame(res detector.Result) {
	hand, ok := res.Primary()
	if !ok {
		return
	}
	thumb := hand.Keypoint(detector.ThumbTip)
	index := hand.Keypoint(detector.IndexTip)

	ev := s.classifier.Observe(thumb, index)
	s.updateOverlay(thumb, index, ev.Sample)

	switch ev.Kind {
	case gesture.EventCalibrated:
		r := s.classifier.Region()
		Logger().Info("calibrated", "x", r.CenterX, "y", r.CenterY)
		s.emit(Event{Kind: EventCalibrated})

	case gesture.EventDrag:
		s.target = &Target{Pixel: ev.Sample.Pixel(), Norm: ev.Sample.Norm()}
		if s.ensemble.Empty() {
			s.ensemble.Seed(s.target.Pixel)
			Logger().Debug("drag started", "x", s.target.Pixel.X, "y", s.target.Pixel.Y)
			s.emit(Event{Kind: EventDragStarted})
		}
		s.startLoop()

	case gesture.EventReleased:
		s.stopDrag()
		s.saveAvailable = true
		Logger().Debug("released", "segments", s.recorder.Len())
		s.emit(Event{Kind: EventReleased})
	}
}

func (s *Session) updateOverlay(thumb, index r2.Vec, sample gesture.PinchSample) {
	w, h := float64(s.opts.Width), float64(s.opts.Height)
	s.overlay.HandVisible = true
	s.overlay.Thumb = r2.Vec{X: thumb.X * w, Y: thumb.Y * h}
	s.overlay.Index = sample.Pixel()
	s.overlay.Pinching = sample.Pinching(s.opts.Gesture.PinchThreshold)
	s.overlay.Region = s.regionRect()
}

func (s *Session) regionRect() *image.Rectangle {
	r := s.classifier.Region()
	if r == nil {
		return nil
	}
	x, y, w, h := r.Rect()
	rect := image.Rect(int(x), int(y), int(x+w), int(y+h))
	return &rect
}

// startLoop schedules the tick loop. It is a no-op when a tick is already
// pending.
func (s *Session) startLoop() {
	s.sched.Schedule(s.Tick)
}

// stopDrag drops the drag-only state. The recorded stroke is untouched.
func (s *Session) stopDrag() {
	s.sched.Cancel()
	s.target = nil
	s.ensemble.Clear()
}

// Tick advances the ensemble one step toward the target, draws every
// painter's segment and records the reference segment. Without a target
// it clears the ensemble and does not reschedule.
func (s *Session) Tick() {
	if s.target == nil {
		s.ensemble.Clear()
		return
	}

	var drawErr error
	ref, ok := s.ensemble.Advance(s.target.Pixel, func(seg painter.Segment) {
		if drawErr != nil {
			return
		}
		drawErr = s.surf.DrawSegment(seg)
	})
	if drawErr != nil {
		Logger().Warn("canvas draw failed", "err", drawErr)
	}
	if ok {
		s.recorder.Append(ref)
		s.trace.Append(s.target.Norm)
		s.emit(Event{Kind: EventTick, Segment: &ref})
	}

	s.sched.Schedule(s.Tick)
}

// Reset returns the session to its initial state, calibration included.
func (s *Session) Reset() {
	s.clearStroke()
	s.classifier.Reset()
	s.overlay.Region = nil
	Logger().Info("session reset")
	s.emit(Event{Kind: EventReset})
}

// Clear erases the stroke but keeps the calibration region.
func (s *Session) Clear() {
	s.clearStroke()
	s.classifier.EndDrag()
	Logger().Info("session cleared")
	s.emit(Event{Kind: EventCleared})
}

func (s *Session) clearStroke() {
	s.stopDrag()
	s.recorder.Clear()
	s.trace.Clear()
	s.saveAvailable = false
	if err := s.surf.Clear(); err != nil {
		Logger().Warn("canvas clear failed", "err", err)
	}
}

// Save exports the current stroke. An empty stroke yields blank artifacts.
// Saving hides the save action until the next release.
func (s *Session) Save() (*export.Artifacts, error) {
	a, err := export.Build(s.surf, s.recorder.Snapshot(), s.trace.Points())
	if err != nil {
		return nil, fmt.Errorf("save signature: %w", err)
	}
	s.saveAvailable = false
	Logger().Info("signature saved", "segments", len(a.Segments))
	s.emit(Event{Kind: EventSaved})
	return a, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	st := State{
		Phase:         s.classifier.Phase(),
		Calibrated:    s.classifier.Calibrated(),
		Region:        s.classifier.Region(),
		Dragging:      s.classifier.Dragging(),
		EnsembleSize:  s.ensemble.Len(),
		SegmentCount:  s.recorder.Len(),
		TickPending:   s.sched.Pending(),
		SaveAvailable: s.saveAvailable,
		Overlay:       s.overlay,
		Width:         s.opts.Width,
		Height:        s.opts.Height,
	}
	if s.target != nil {
		t := *s.target
		st.Target = &t
	}
	if s.overlay.Region != nil {
		r := *s.overlay.Region
		st.Overlay.Region = &r
	}
	return st
}

// Segments returns the recorded stroke.
func (s *Session) Segments() []painter.Segment {
	return s.recorder.Snapshot()
}

// Trace returns the normalized target log.
func (s *Session) Trace() []r2.Vec {
	return s.trace.Points()
}

// Surface returns the session canvas.
func (s *Session) Surface() surface.Surface {
	return s.surf
}

// Scheduler returns the tick scheduler.
func (s *Session) Scheduler() scheduler.Scheduler {
	return s.sched
}
