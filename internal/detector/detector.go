package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected hand landmarks.
	// A frame without hands yields a Result with no landmarks and a nil error.
	Detect(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// ModelComplexity selects the MediaPipe landmark model (0 or 1).
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// PythonPath overrides interpreter discovery when set.
	PythonPath string

	// ScriptPath overrides service script discovery when set.
	ScriptPath string
}

// DefaultConfig returns the settings used for signature capture: a single
// hand tracked with high confidence.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		ModelComplexity: 1,
		MinConfidence:   0.9,
		MinTrackingConf: 0.9,
	}
}
