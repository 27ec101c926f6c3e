package detector

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// maxRecordingLine bounds a single JSON line in a recording.
const maxRecordingLine = 1 << 20

// ReadRecording parses a JSON Lines stream of frame results.
// Blank lines are skipped.
func ReadRecording(r io.Reader) ([]Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordingLine)

	var results []Result
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		var res Result
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("recording line %d: %w", line, err)
		}
		results = append(results, res)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	return results, nil
}

// WriteRecording writes results as JSON Lines.
func WriteRecording(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	for i, res := range results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result %d: %w", i, err)
		}
	}
	return nil
}

// RecordingDetector wraps a Detector and appends every successful result
// to w as JSON Lines, so a live session can be replayed later.
type RecordingDetector struct {
	inner Detector
	mu    sync.Mutex
	enc   *json.Encoder
	out   io.Writer
}

// NewRecordingDetector creates a RecordingDetector writing to w.
func NewRecordingDetector(inner Detector, w io.Writer) *RecordingDetector {
	return &RecordingDetector{
		inner: inner,
		enc:   json.NewEncoder(w),
		out:   w,
	}
}

// Detect delegates to the wrapped detector and records its result.
func (d *RecordingDetector) Detect(frame *gocv.Mat) (Result, error) {
	res, err := d.inner.Detect(frame)
	if err != nil {
		return res, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enc.Encode(res); err != nil {
		return res, fmt.Errorf("record result: %w", err)
	}
	return res, nil
}

// Close closes the wrapped detector and, if it is a Closer, the output.
func (d *RecordingDetector) Close() error {
	err := d.inner.Close()
	if c, ok := d.out.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
