package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ayusman/pinchsign/internal/session"
	"github.com/ayusman/pinchsign/internal/store"
	"github.com/ayusman/pinchsign/internal/upload"
)

// ErrUsernameRequired is returned by a Controller when a registration or
// validation save has no username and none is configured.
var ErrUsernameRequired = errors.New("username is required")

// SaveRequest asks for the current stroke to be saved and optionally
// handed to an upload hook.
type SaveRequest struct {
	Username string        `json:"username"`
	Purpose  store.Purpose `json:"purpose"`
	Hook     string        `json:"hook"`
}

// SaveResult describes a completed save.
type SaveResult struct {
	Signature *store.Signature `json:"signature"`
	Delivery  *store.Delivery  `json:"delivery,omitempty"`
}

// Controller drives the live signing session.
type Controller interface {
	State() session.State
	Reset()
	Clear()
	Save(ctx context.Context, req SaveRequest) (*SaveResult, error)
}

// SessionHandler serves /api/session and its actions.
type SessionHandler struct {
	ctrl Controller
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(c Controller) *SessionHandler {
	return &SessionHandler{ctrl: c}
}

// ServeHTTP routes /api/session, /api/session/reset, /api/session/clear
// and /api/session/save.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/session")
	action = strings.Trim(action, "/")

	if action == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.ctrl.State())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "reset":
		h.ctrl.Reset()
		writeJSON(w, http.StatusOK, h.ctrl.State())
	case "clear":
		h.ctrl.Clear()
		writeJSON(w, http.StatusOK, h.ctrl.State())
	case "save":
		h.save(w, r)
	default:
		writeError(w, http.StatusNotFound, "Unknown session action")
	}
}

func (h *SessionHandler) save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Purpose == "" {
		req.Purpose = store.PurposeCapture
	}
	if !req.Purpose.Valid() {
		writeError(w, http.StatusBadRequest, "purpose must be capture, register or validate")
		return
	}
	res, err := h.ctrl.Save(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameRequired):
			writeError(w, http.StatusBadRequest, "username is required to "+string(req.Purpose))
		case errors.Is(err, upload.ErrHookNotFound):
			writeError(w, http.StatusBadRequest, "Upload hook not found")
		case errors.Is(err, upload.ErrUnsupportedAction):
			writeError(w, http.StatusBadRequest, "Upload hook does not support "+string(req.Purpose))
		default:
			writeError(w, http.StatusInternalServerError, "Failed to save signature")
		}
		return
	}

	writeJSON(w, http.StatusCreated, res)
}
