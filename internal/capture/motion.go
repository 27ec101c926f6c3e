package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	motionBlurSize      = 21
	motionDiffThreshold = 25

	// DefaultMotionThreshold is the percentage of changed pixels that
	// counts as motion.
	DefaultMotionThreshold = 0.5
	// DefaultMaxStill is how many still frames may be skipped in a row.
	DefaultMaxStill = 10
)

// MotionGate decides which frames are worth running hand detection on.
// Still scenes are sampled every maxStill frames so a motionless hand is
// still noticed.
type MotionGate struct {
	mu        sync.Mutex
	threshold float64
	maxStill  int
	prev      gocv.Mat
	primed    bool
	still     int
	change    float64
}

// NewMotionGate creates a gate. threshold is a percentage of pixels.
func NewMotionGate(threshold float64, maxStill int) *MotionGate {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	if maxStill <= 0 {
		maxStill = DefaultMaxStill
	}
	return &MotionGate{
		threshold: threshold,
		maxStill:  maxStill,
		prev:      gocv.NewMat(),
	}
}

// Admit reports whether frame should be passed to the detector.
func (g *MotionGate) Admit(frame *gocv.Mat) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(motionBlurSize, motionBlurSize), 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.prev)
		g.primed = true
		g.still = 0
		g.change = 0
		return true
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, motionDiffThreshold, 255, gocv.ThresholdBinary)

	total := thresh.Rows() * thresh.Cols()
	g.change = float64(gocv.CountNonZero(thresh)) / float64(total) * 100
	blurred.CopyTo(&g.prev)

	if g.change > g.threshold {
		g.still = 0
		return true
	}
	g.still++
	if g.still >= g.maxStill {
		g.still = 0
		return true
	}
	return false
}

// LastChange returns the changed-pixel percentage of the last frame.
func (g *MotionGate) LastChange() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.change
}

// Reset forgets the previous frame; the next frame is always admitted.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.primed = false
	g.still = 0
}

// Close releases the stored frame.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prev.Close()
	g.prev = gocv.NewMat()
	g.primed = false
}
