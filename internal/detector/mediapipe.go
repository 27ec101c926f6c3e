package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the MediaPipe service script cannot be located.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

// serviceIdleTimeout stops the Python process after a period without frames.
const serviceIdleTimeout = 30 * time.Second

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// Frames are sent as length-prefixed JPEG; each reply is one JSON line.
type MediaPipeDetector struct {
	config    Config
	script    string
	python    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on the first frame.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = findServiceFile("scripts/mediapipe_service.py")
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}

	python := config.PythonPath
	if python == "" {
		python = findServiceFile("venv/bin/python")
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
	}, nil
}

// Detect sends the frame to the service and returns at most MaxHands hands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Result{}, nil
	}

	if err := d.ensureStarted(); err != nil {
		return Result{}, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return Result{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := d.writeFrame(buf.GetBytes()); err != nil {
		return Result{}, err
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	var reply serviceReply
	if err := json.Unmarshal(line, &reply); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}

	d.resetIdleTimer()
	return reply.toResult(d.config.MaxHands), nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) writeFrame(data []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))

	if _, err := d.stdin.Write(length[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	d.cmd = exec.Command(d.python, append([]string{d.script}, d.serviceArgs()...)...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	log.Printf("MediaPipe service started (pid %d)", d.cmd.Process.Pid)

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	return nil
}

func (d *MediaPipeDetector) serviceArgs() []string {
	return []string{
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--model-complexity", strconv.Itoa(d.config.ModelComplexity),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(serviceIdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

// findServiceFile looks for rel next to the working directory, the
// executable and the per-user data directory.
func findServiceFile(rel string) string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		rel,
		filepath.Join("..", rel),
		filepath.Join("..", "..", rel),
		filepath.Join(execDir, rel),
		filepath.Join(os.Getenv("HOME"), ".pinchsign", rel),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// serviceReply is the JSON line written by the Python service.
type serviceReply struct {
	Hands []struct {
		Points     []Point3D `json:"points"`
		Handedness string    `json:"handedness"`
		Score      float64   `json:"score"`
	} `json:"hands"`
}

func (r serviceReply) toResult(maxHands int) Result {
	res := Result{Timestamp: time.Now().UnixMilli()}
	for i, h := range r.Hands {
		if maxHands > 0 && i >= maxHands {
			break
		}
		lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
		copy(lm.Points[:], h.Points)
		res.MultiHandLandmarks = append(res.MultiHandLandmarks, lm)
	}
	return res
}
