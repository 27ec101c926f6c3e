package session

import "github.com/ayusman/pinchsign/internal/painter"

// EventKind names a session event.
type EventKind string

const (
	EventCalibrated  EventKind = "calibrated"
	EventDragStarted EventKind = "drag_started"
	EventTick        EventKind = "tick"
	EventReleased    EventKind = "released"
	EventReset       EventKind = "reset"
	EventCleared     EventKind = "cleared"
	EventSaved       EventKind = "saved"
)

// Event is delivered to OnEvent listeners.
type Event struct {
	Kind         EventKind        `json:"kind"`
	Segment      *painter.Segment `json:"segment,omitempty"`
	SegmentCount int              `json:"segmentCount"`
}
