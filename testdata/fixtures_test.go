package testdata

import (
	"testing"
)

func TestLoadRecording(t *testing.T) {
	results, err := LoadRecording(Signature)
	if err != nil {
		t.Fatalf("LoadRecording() error = %v", err)
	}
	if len(results) != SignatureFrames {
		t.Fatalf("len(results) = %d, want %d", len(results), SignatureFrames)
	}

	pinching, empty := 0, 0
	for _, res := range results {
		hand, ok := res.Primary()
		if !ok {
			empty++
			continue
		}
		if hand.Points[4].X == hand.Points[8].X && hand.Points[4].Y == hand.Points[8].Y {
			pinching++
		}
	}
	if pinching != 5+SignatureDragFrames {
		t.Errorf("pinching frames = %d, want %d", pinching, 5+SignatureDragFrames)
	}
	if empty != 1 {
		t.Errorf("empty frames = %d, want 1", empty)
	}
}

func TestLoadRecording_Missing(t *testing.T) {
	if _, err := LoadRecording("nope.jsonl"); err == nil {
		t.Error("expected error for missing recording")
	}
}
