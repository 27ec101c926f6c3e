// Package scheduler provides the single-outstanding-tick scheduling used to
// drive the painter animation.
//
// A Scheduler holds at most one pending tick. Schedule while a tick is
// pending is a no-op, and Cancel guarantees the pending tick never runs.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler schedules one animation tick at a time.
type Scheduler interface {
	// Schedule requests that tick run once. It returns false, without
	// replacing the pending tick, when one is already outstanding.
	Schedule(tick func()) bool

	// Cancel drops the pending tick, if any.
	Cancel()

	// Pending reports whether a tick is outstanding.
	Pending() bool
}

// Manual is a Scheduler driven explicitly by Step. Used by tests and
// headless replay.
type Manual struct {
	pending func()
	steps   int
}

// NewManual creates an idle manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(tick func()) bool {
	if m.pending != nil {
		return false
	}
	m.pending = tick
	return true
}

// Cancel implements Scheduler.
func (m *Manual) Cancel() {
	m.pending = nil
}

// Pending implements Scheduler.
func (m *Manual) Pending() bool {
	return m.pending != nil
}

// Step runs the pending tick and reports whether one ran. The pending slot
// is cleared first so the tick may reschedule itself.
func (m *Manual) Step() bool {
	tick := m.pending
	if tick == nil {
		return false
	}
	m.pending = nil
	m.steps++
	tick()
	return true
}

// RunN steps up to n times, stopping early when nothing is pending. It
// returns the number of ticks run.
func (m *Manual) RunN(n int) int {
	ran := 0
	for ran < n && m.Step() {
		ran++
	}
	return ran
}

// Steps returns the total number of ticks run.
func (m *Manual) Steps() int {
	return m.steps
}

// DefaultInterval is one display frame at 60Hz.
const DefaultInterval = time.Second / 60

// Timer is a Scheduler that fires after a fixed interval. The tick is
// handed to dispatch, which must run it on the goroutine that owns the
// session. A tick cancelled before dispatch runs it is dropped.
type Timer struct {
	interval time.Duration
	dispatch func(func())

	mu      sync.Mutex
	gen     uint64
	pending bool
	timer   *time.Timer
}

// NewTimer creates a timer scheduler. A nil dispatch runs ticks on the
// timer goroutine.
func NewTimer(interval time.Duration, dispatch func(func())) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Timer{interval: interval, dispatch: dispatch}
}

// Schedule implements Scheduler.
func (t *Timer) Schedule(tick func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending {
		return false
	}
	t.pending = true
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.interval, func() {
		t.dispatch(func() { t.fire(gen, tick) })
	})
	return true
}

func (t *Timer) fire(gen uint64, tick func()) {
	t.mu.Lock()
	if !t.pending || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.timer = nil
	t.mu.Unlock()

	tick()
}

// Cancel implements Scheduler.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = false
	t.gen++
}

// Pending implements Scheduler.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Interval returns the tick interval.
func (t *Timer) Interval() time.Duration {
	return t.interval
}
