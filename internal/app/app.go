// Package app wires capture, detection and the signing session into one
// running application. All session access happens on a single loop
// goroutine.
package app

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/pinchsign/internal/capture"
	"github.com/ayusman/pinchsign/internal/detector"
	"github.com/ayusman/pinchsign/internal/scheduler"
	"github.com/ayusman/pinchsign/internal/session"
	"github.com/ayusman/pinchsign/internal/store"
	"github.com/ayusman/pinchsign/internal/surface"
	"github.com/ayusman/pinchsign/internal/upload"
)

// Publisher receives session events for fan-out.
type Publisher interface {
	Publish(kind string, data any)
}

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Camera   capture.Camera
	Detector detector.Detector

	// Hooks and Executor enable the upload hand-off after save.
	Hooks    *upload.Manager
	Executor *upload.Executor
	// HookConfig returns per-hook configuration. May be nil.
	HookConfig func(name string) map[string]any
	// ExportDir receives one artifact directory per handed-off signature.
	ExportDir string

	FPS int
	// TickInterval is the animation tick period. Defaults to 60 Hz.
	TickInterval time.Duration
	// SkipMotionGate runs detection on every frame.
	SkipMotionGate bool

	Events Publisher
}

// eventBuffer bounds queued events waiting for the publisher.
const eventBuffer = 256

// App owns the live session and the goroutines that feed it.
type App struct {
	config Config

	sess    *session.Session
	surf    *surface.MatSurface
	sched   *scheduler.Timer
	gate    *capture.MotionGate
	ops     chan func()
	quit    chan struct{}
	loopEnd chan struct{}
	events  chan session.Event

	mu      sync.Mutex
	stopCh  chan struct{}
	pipe    sync.WaitGroup
	ended   chan struct{}
	endOnce sync.Once
	closed  bool

	dragging   atomic.Bool
	state      atomic.Pointer[session.State]
	preview    atomic.Pointer[[]byte]
	lastResult detector.Result
}

// New creates an App and starts its session loop.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.TickInterval <= 0 {
		config.TickInterval = scheduler.DefaultInterval
	}
	if config.Detector == nil {
		config.Detector = detector.NewMockDetector()
	}

	a := &App{
		config:  config,
		surf:    surface.NewMatSurface(capture.StandardWidth, capture.StandardHeight),
		gate:    capture.NewMotionGate(capture.DefaultMotionThreshold, capture.DefaultMaxStill),
		ops:     make(chan func()),
		quit:    make(chan struct{}),
		loopEnd: make(chan struct{}),
		events:  make(chan session.Event, eventBuffer),
		ended:   make(chan struct{}),
	}
	a.sched = scheduler.NewTimer(config.TickInterval, a.post)
	a.sess = session.New(session.Options{
		Scheduler: a.sched,
		Surface:   a.surf,
	})
	a.sess.OnEvent(a.queueEvent)

	st := a.sess.Snapshot()
	a.state.Store(&st)

	go a.loop()
	go a.publish()
	return a
}

func (a *App) loop() {
	defer close(a.loopEnd)
	for {
		select {
		case fn := <-a.ops:
			fn()
		case <-a.quit:
			return
		}
	}
}

// post queues fn on the loop without waiting for it.
func (a *App) post(fn func()) {
	select {
	case a.ops <- fn:
	case <-a.quit:
	}
}

// Do runs fn on the session loop and waits for it. After Close, fn is
// dropped.
func (a *App) Do(fn func()) {
	done := make(chan struct{})
	select {
	case a.ops <- func() { fn(); close(done) }:
		<-done
	case <-a.quit:
	}
}

func (a *App) queueEvent(ev session.Event) {
	select {
	case a.events <- ev:
	default:
		log.Printf("event queue full, dropping %s", ev.Kind)
	}
}

func (a *App) publish() {
	for {
		select {
		case ev := <-a.events:
			if a.config.Events != nil {
				a.config.Events.Publish(string(ev.Kind), ev)
			}
		case <-a.quit:
			return
		}
	}
}

// Start opens the camera and begins feeding frames to the session.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return errors.New("app is closed")
	}
	if a.stopCh != nil {
		return nil
	}
	if a.config.Camera == nil {
		return errors.New("no camera configured")
	}
	if err := a.config.Camera.Open(); err != nil {
		return err
	}
	a.config.Camera.SetFPS(a.config.FPS)

	a.stopCh = make(chan struct{})
	a.pipe.Add(1)
	go a.runPipeline(a.stopCh)

	log.Println("Capture pipeline started")
	return nil
}

// Stop halts frame capture. The session and its canvas stay intact.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()

	a.pipe.Wait()

	if a.config.Camera != nil {
		if err := a.config.Camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
}

// Close stops everything and releases the canvas, motion gate and
// detector.
func (a *App) Close() {
	a.Stop()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.Do(func() { a.sched.Cancel() })
	close(a.quit)
	<-a.loopEnd

	a.gate.Close()
	if err := a.surf.Close(); err != nil {
		log.Printf("Error closing canvas: %v", err)
	}
	if err := a.config.Detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
	log.Println("Application stopped")
}

// Done is closed when a finite frame source runs out.
func (a *App) Done() <-chan struct{} {
	return a.ended
}

// State returns the session state as of the last processed frame or
// action.
func (a *App) State() session.State {
	var st session.State
	ran := false
	a.Do(func() {
		st = a.sess.Snapshot()
		ran = true
	})
	if !ran {
		return *a.state.Load()
	}
	return st
}

// Reset clears the stroke and the calibration.
func (a *App) Reset() {
	a.Do(func() {
		a.sess.Reset()
		a.storeState()
	})
}

// Clear clears the stroke and keeps the calibration.
func (a *App) Clear() {
	a.Do(func() {
		a.sess.Clear()
		a.storeState()
	})
}

// storeState caches a snapshot for readers off the loop. Loop only.
func (a *App) storeState() {
	st := a.sess.Snapshot()
	a.state.Store(&st)
	a.dragging.Store(st.Dragging)
}

// Preview returns the latest composed preview JPEG.
func (a *App) Preview() ([]byte, bool) {
	p := a.preview.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}
