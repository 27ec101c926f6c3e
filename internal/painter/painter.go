// Package painter implements the spring-damper pen simulation that turns a
// noisy target point into a smooth ribbon of line segments.
package painter

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// ReferenceIndex is the painter whose segment is recorded each tick.
const ReferenceIndex = 0

// Config holds the ensemble constants.
type Config struct {
	// Size is the number of painters seeded per drag.
	Size int

	// BaseEase and EaseJitter define each painter's ease factor:
	// BaseEase + rand*EaseJitter, fixed for the painter's lifetime.
	BaseEase   float64
	EaseJitter float64

	// Damping scales the displacement fed into the accumulator.
	Damping float64

	// StrokeWidth and StrokeColor are stamped on every segment.
	StrokeWidth float64
	StrokeColor string
}

// DefaultConfig returns the ribbon constants.
func DefaultConfig() Config {
	return Config{
		Size:        10,
		BaseEase:    0.69,
		EaseJitter:  0.025,
		Damping:     0.1,
		StrokeWidth: 1,
		StrokeColor: "black",
	}
}

// Segment is one straight piece of stroke in natural (non-mirrored) pixel
// space. Segments are immutable once produced.
type Segment struct {
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	StrokeWidth float64 `json:"strokeWidth"`
	StrokeColor string  `json:"strokeColor"`
}

// From returns the segment start.
func (s Segment) From() r2.Vec { return r2.Vec{X: s.X1, Y: s.Y1} }

// To returns the segment end.
func (s Segment) To() r2.Vec { return r2.Vec{X: s.X2, Y: s.Y2} }

// Painter is a critically damped spring chasing the target.
type Painter struct {
	Pos  r2.Vec  `json:"pos"`
	Acc  r2.Vec  `json:"acc"`
	Ease float64 `json:"ease"`
}

// Step advances the painter one tick toward target and returns its
// previous and new positions:
//
//	a = (a + (d - target) * damping) * ease
//	d = d - a
func (p *Painter) Step(target r2.Vec, damping float64) (from, to r2.Vec) {
	from = p.Pos
	p.Acc = r2.Scale(p.Ease, r2.Add(p.Acc, r2.Scale(damping, r2.Sub(p.Pos, target))))
	p.Pos = r2.Sub(p.Pos, p.Acc)
	return from, p.Pos
}

// Ensemble is the ordered set of painters for the current drag.
// It is not safe for concurrent use.
type Ensemble struct {
	cfg      Config
	rnd      *rand.Rand
	painters []Painter
}

// NewEnsemble creates an empty ensemble. A nil rnd uses a randomly seeded
// source.
func NewEnsemble(cfg Config, rnd *rand.Rand) *Ensemble {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Ensemble{cfg: cfg, rnd: rnd}
}

// Seed replaces the ensemble with Size fresh painters at pos.
func (e *Ensemble) Seed(pos r2.Vec) {
	e.painters = e.painters[:0]
	for i := 0; i < e.cfg.Size; i++ {
		e.painters = append(e.painters, Painter{
			Pos:  pos,
			Ease: e.cfg.BaseEase + e.rnd.Float64()*e.cfg.EaseJitter,
		})
	}
}

// Clear destroys all painters.
func (e *Ensemble) Clear() {
	e.painters = e.painters[:0]
}

// Len returns the number of live painters.
func (e *Ensemble) Len() int {
	return len(e.painters)
}

// Empty reports whether no painters are live.
func (e *Ensemble) Empty() bool {
	return len(e.painters) == 0
}

// Painters returns a copy of the live painters in order.
func (e *Ensemble) Painters() []Painter {
	out := make([]Painter, len(e.painters))
	copy(out, e.painters)
	return out
}

// Advance steps every painter toward target, calling draw with each
// painter's segment in ensemble order. It returns the reference painter's
// segment; ok is false when the ensemble is empty.
func (e *Ensemble) Advance(target r2.Vec, draw func(Segment)) (ref Segment, ok bool) {
	for i := range e.painters {
		from, to := e.painters[i].Step(target, e.cfg.Damping)
		seg := Segment{
			X1:          from.X,
			Y1:          from.Y,
			X2:          to.X,
			Y2:          to.Y,
			StrokeWidth: e.cfg.StrokeWidth,
			StrokeColor: e.cfg.StrokeColor,
		}
		if draw != nil {
			draw(seg)
		}
		if i == ReferenceIndex {
			ref, ok = seg, true
		}
	}
	return ref, ok
}
