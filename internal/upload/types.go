// Package upload hands saved signatures to external hook executables, such
// as a registration or validation client.
//
// A hook lives in its own directory under the hooks directory with a
// hook.json manifest. It receives a Request as JSON on stdin and answers
// with a Response on stdout.
package upload

import (
	"encoding/json"
	"slices"
)

// Hook actions.
const (
	ActionRegister = "register"
	ActionValidate = "validate"
)

// ManifestFile is the manifest name inside a hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is sent to a hook on stdin.
type Request struct {
	Action          string          `json:"action"`
	SignatureID     string          `json:"signatureId"`
	Username        string          `json:"username"`
	PNGPath         string          `json:"pngPath"`
	SVGPath         string          `json:"svgPath"`
	CoordinatesPath string          `json:"coordinatesPath,omitempty"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	Config          json.RawMessage `json:"config,omitempty"`
}

// Response is read from a hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the hook declares action.
func (h *Hook) Supports(action string) bool {
	return slices.Contains(h.Manifest.Actions, action)
}
