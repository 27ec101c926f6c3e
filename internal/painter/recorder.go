package painter

import "gonum.org/v1/gonum/spatial/r2"

// Recorder is the append-only, tick-ordered log of reference segments for
// the whole stroke. It outlives individual drags and is emptied only by an
// explicit Clear.
type Recorder struct {
	segments []Segment
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append adds seg at the end of the log.
func (r *Recorder) Append(seg Segment) {
	r.segments = append(r.segments, seg)
}

// Snapshot returns the segments in recording order.
func (r *Recorder) Snapshot() []Segment {
	out := make([]Segment, len(r.segments))
	copy(out, r.segments)
	return out
}

// Len returns the number of recorded segments.
func (r *Recorder) Len() int {
	return len(r.segments)
}

// Clear drops every segment.
func (r *Recorder) Clear() {
	r.segments = nil
}

// Trace logs the normalized target position once per tick.
type Trace struct {
	points []r2.Vec
}

// Append adds p at the end of the trace.
func (t *Trace) Append(p r2.Vec) {
	t.points = append(t.points, p)
}

// Points returns the logged positions in order.
func (t *Trace) Points() []r2.Vec {
	out := make([]r2.Vec, len(t.points))
	copy(out, t.points)
	return out
}

// Len returns the number of logged positions.
func (t *Trace) Len() int {
	return len(t.points)
}

// Clear drops every position.
func (t *Trace) Clear() {
	t.points = nil
}
