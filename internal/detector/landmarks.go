// Package detector provides hand landmark detection types and implementations.
package detector

import "gonum.org/v1/gonum/spatial/r2"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to [0,1] in
// detector image space (origin top-left, not mirrored); Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64               `json:"score,omitempty"`
}

// Keypoint returns the 2D normalized position of landmark i.
// Out of range indices yield the zero vector.
func (h *HandLandmarks) Keypoint(i int) r2.Vec {
	if h == nil || i < 0 || i >= NumLandmarks {
		return r2.Vec{}
	}
	p := h.Points[i]
	return r2.Vec{X: p.X, Y: p.Y}
}

// Result is one frame's detection output. MultiHandLandmarks is empty when
// no hand was found.
type Result struct {
	MultiHandLandmarks []HandLandmarks `json:"multiHandLandmarks"`
	Timestamp          int64           `json:"timestamp,omitempty"`
}

// Primary returns the first detected hand. Additional hands are ignored by
// every consumer in this module.
func (r Result) Primary() (*HandLandmarks, bool) {
	if len(r.MultiHandLandmarks) == 0 {
		return nil, false
	}
	return &r.MultiHandLandmarks[0], true
}
