// Package main provides an upload hook that submits a saved signature to
// an account service as multipart form data.
//
// register posts the username and the signature image to {baseUrl}/api.
// validate posts them to {baseUrl}/validate-signature as test_signature.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Request represents the input from the hook executor.
type Request struct {
	Action      string          `json:"action"`
	SignatureID string          `json:"signatureId"`
	Username    string          `json:"username"`
	PNGPath     string          `json:"pngPath"`
	SVGPath     string          `json:"svgPath"`
	Config      json.RawMessage `json:"config"`
}

// Response represents the output to the hook executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is the hook configuration.
type Config struct {
	BaseURL        string `json:"baseUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

const defaultBaseURL = "http://127.0.0.1:8000/user"

// endpoints maps actions to their path and file field.
var endpoints = map[string]struct {
	path  string
	field string
}{
	"register": {"/api", "signature"},
	"validate": {"/validate-signature", "test_signature"},
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	cfg := Config{BaseURL: defaultBaseURL, TimeoutSeconds: 15}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	ep, ok := endpoints[req.Action]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if req.Username == "" {
		writeErrorResponse("username is required")
		return
	}

	body, err := submit(cfg, ep.path, ep.field, req)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("%s failed: %v", req.Action, err))
		return
	}
	writeSuccessResponse(body)
}

// submit posts the form and returns the service's JSON reply.
func submit(cfg Config, path, field string, req Request) (json.RawMessage, error) {
	png, err := os.ReadFile(req.PNGPath)
	if err != nil {
		return nil, fmt.Errorf("read signature: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("username", req.Username); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile(field, field+filepath.Ext(req.PNGPath))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(png); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	url := strings.TrimRight(cfg.BaseURL, "/") + path
	resp, err := client.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("service returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if !json.Valid(data) {
		data, _ = json.Marshal(string(data))
	}
	return data, nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse(data json.RawMessage) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}
