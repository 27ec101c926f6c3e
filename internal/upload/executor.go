package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrUnsupportedAction is returned when a hook does not declare the
// requested action.
var ErrUnsupportedAction = errors.New("hook does not support action")

// DefaultTimeout bounds a hook run.
const DefaultTimeout = 30 * time.Second

// Executor runs hooks with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor. A timeout <= 0 uses DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Execute runs hook with req on stdin and parses its stdout as a Response.
func (e *Executor) Execute(ctx context.Context, hook *Hook, req *Request) (*Response, error) {
	if !hook.Supports(req.Action) {
		return nil, fmt.Errorf("%w: %s does not handle %q", ErrUnsupportedAction, hook.Manifest.Name, req.Action)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, hook.Executable)
	cmd.Dir = hook.Path

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("hook %s timed out after %s", hook.Manifest.Name, e.timeout)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("hook %s failed: %w, stderr: %s", hook.Manifest.Name, err, s)
		}
		return nil, fmt.Errorf("hook %s failed: %w", hook.Manifest.Name, err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hook response: %w, stdout: %s", err, stdout.String())
	}
	return &resp, nil
}
