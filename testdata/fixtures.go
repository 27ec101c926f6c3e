// Package testdata embeds recorded detector sessions for replay tests.
package testdata

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/ayusman/pinchsign/internal/detector"
)

//go:embed recordings/*.jsonl
var recordingsFS embed.FS

const (
	// Signature calibrates at the frame center, drags one wavy stroke to
	// the right, loses the hand for a frame, then opens the pinch.
	Signature = "signature.jsonl"
	// TwoStrokes calibrates, then draws and releases two separate strokes.
	TwoStrokes = "two-strokes.jsonl"
)

// Frame counts of the Signature recording.
const (
	SignatureFrames     = 29
	SignatureDragFrames = 20
)

// RecordingBytes returns the raw JSON Lines of a recording.
func RecordingBytes(name string) ([]byte, error) {
	data, err := recordingsFS.ReadFile("recordings/" + name)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return data, nil
}

// LoadRecording parses a recording into frame results.
func LoadRecording(name string) ([]detector.Result, error) {
	data, err := RecordingBytes(name)
	if err != nil {
		return nil, err
	}
	return detector.ReadRecording(bytes.NewReader(data))
}
