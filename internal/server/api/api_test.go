package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ayusman/pinchsign/internal/gesture"
	"github.com/ayusman/pinchsign/internal/session"
	"github.com/ayusman/pinchsign/internal/store"
	"github.com/ayusman/pinchsign/internal/upload"
)

// newTestStore creates a Store with a temporary database.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func createSignature(t *testing.T, s *store.Store) *store.Signature {
	t.Helper()
	sig := &store.Signature{
		ID:          uuid.New().String(),
		Username:    "ada",
		PNG:         []byte("png-bytes"),
		SVG:         "<svg/>",
		Coordinates: "(0.5,0.5), ",
		Segments:    3,
		Width:       640,
		Height:      480,
	}
	if err := s.Signatures().Create(sig); err != nil {
		t.Fatalf("failed to create signature: %v", err)
	}
	return sig
}

type fakeController struct {
	state   session.State
	resets  int
	clears  int
	saves   []SaveRequest
	saveErr error
}

func (c *fakeController) State() session.State { return c.state }
func (c *fakeController) Reset()               { c.resets++ }
func (c *fakeController) Clear()               { c.clears++ }

func (c *fakeController) Save(_ context.Context, req SaveRequest) (*SaveResult, error) {
	c.saves = append(c.saves, req)
	if c.saveErr != nil {
		return nil, c.saveErr
	}
	return &SaveResult{Signature: &store.Signature{ID: "sig-1", Username: req.Username, Purpose: req.Purpose}}, nil
}

func TestSessionHandler_State(t *testing.T) {
	ctrl := &fakeController{state: session.State{Phase: gesture.PhaseArmed, Calibrated: true, SegmentCount: 4}}
	h := NewSessionHandler(ctrl)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["phase"] != "armed" {
		t.Errorf("phase = %v, want armed", got["phase"])
	}
	if got["segmentCount"] != float64(4) {
		t.Errorf("segmentCount = %v, want 4", got["segmentCount"])
	}
}

func TestSessionHandler_Actions(t *testing.T) {
	ctrl := &fakeController{}
	h := NewSessionHandler(ctrl)

	for _, path := range []string{"/api/session/reset", "/api/session/clear", "/api/session/clear"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("POST %s status = %d", path, rec.Code)
		}
	}
	if ctrl.resets != 1 || ctrl.clears != 2 {
		t.Errorf("resets = %d, clears = %d", ctrl.resets, ctrl.clears)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/reset", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET reset status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/explode", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown action status = %d, want 404", rec.Code)
	}
}

func TestSessionHandler_Save(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		saveErr    error
		wantStatus int
		wantSaves  int
	}{
		{"empty body", "", nil, http.StatusCreated, 1},
		{"capture", `{"purpose":"capture"}`, nil, http.StatusCreated, 1},
		{"register", `{"purpose":"register","username":"ada","hook":"register-upload"}`, nil, http.StatusCreated, 1},
		{"register without username", `{"purpose":"register"}`, ErrUsernameRequired, http.StatusBadRequest, 1},
		{"bad purpose", `{"purpose":"forge"}`, nil, http.StatusBadRequest, 0},
		{"bad json", `{`, nil, http.StatusBadRequest, 0},
		{"missing hook", `{"hook":"nope"}`, fmt.Errorf("save: %w", upload.ErrHookNotFound), http.StatusBadRequest, 1},
		{"unsupported action", `{"purpose":"validate","username":"ada","hook":"h"}`, upload.ErrUnsupportedAction, http.StatusBadRequest, 1},
		{"failure", `{}`, fmt.Errorf("disk full"), http.StatusInternalServerError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{saveErr: tt.saveErr}
			h := NewSessionHandler(ctrl)

			req := httptest.NewRequest(http.MethodPost, "/api/session/save", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if len(ctrl.saves) != tt.wantSaves {
				t.Errorf("saves = %d, want %d", len(ctrl.saves), tt.wantSaves)
			}
			if tt.wantStatus == http.StatusCreated && ctrl.saves[0].Purpose == "" {
				t.Error("purpose should default to capture")
			}
		})
	}
}

func TestSignaturesHandler_ListGetDelete(t *testing.T) {
	s := newTestStore(t)
	h := NewSignaturesHandler(s)
	sig := createSignature(t, s)
	createSignature(t, s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Signatures []struct {
			ID       string `json:"id"`
			Segments int    `json:"segments"`
		} `json:"signatures"`
	}
	json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed.Signatures) != 2 {
		t.Fatalf("len(signatures) = %d, want 2", len(listed.Signatures))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures?limit=1", nil))
	json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed.Signatures) != 1 {
		t.Errorf("limited len = %d, want 1", len(listed.Signatures))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures?limit=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures/"+sig.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "png-bytes") {
		t.Error("metadata response should not embed artifacts")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/signatures/"+sig.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures/"+sig.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestSignaturesHandler_Empty(t *testing.T) {
	h := NewSignaturesHandler(newTestStore(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures", nil))
	if !strings.Contains(rec.Body.String(), `"signatures":[]`) {
		t.Errorf("body = %s, want empty array", rec.Body.String())
	}
}

func TestSignaturesHandler_Artifacts(t *testing.T) {
	s := newTestStore(t)
	h := NewSignaturesHandler(s)
	sig := createSignature(t, s)

	tests := []struct {
		name       string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"signature.png", http.StatusOK, "image/png", "png-bytes"},
		{"signature.svg", http.StatusOK, "image/svg+xml", "<svg/>"},
		{"coordinates.txt", http.StatusOK, "text/plain; charset=utf-8", "(0.5,0.5), "},
		{"thumbnail.png", http.StatusNotFound, "", ""},
		{"secrets.txt", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures/"+sig.ID+"/"+tt.name, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestSignaturesHandler_Deliveries(t *testing.T) {
	s := newTestStore(t)
	h := NewSignaturesHandler(s)
	sig := createSignature(t, s)
	s.Deliveries().Create(&store.Delivery{SignatureID: sig.ID, Hook: "h", Action: "register", Success: true})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures/"+sig.ID+"/deliveries", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got deliveriesResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got.Deliveries) != 1 || !got.Deliveries[0].Success {
		t.Errorf("deliveries = %+v", got.Deliveries)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signatures/missing/deliveries", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing signature status = %d", rec.Code)
	}
}

func TestSettingsHandler(t *testing.T) {
	h := NewSettingsHandler(newTestStore(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings/"+store.SettingUsername, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unset setting status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := bytes.NewBufferString(`{"value":"ada"}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/"+store.SettingUsername, body))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	var all map[string]string
	json.NewDecoder(rec.Body).Decode(&all)
	if all[store.SettingUsername] != "ada" {
		t.Errorf("settings = %v", all)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/x", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d", rec.Code)
	}
}

func TestHooksHandler(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "register-upload")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, upload.ManifestFile),
		[]byte(`{"name":"register-upload","executable":"register-upload","actions":["register","validate"]}`), 0644)

	m := upload.NewManager(root)
	h := NewHooksHandler(m)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hooks", nil))
	var got listHooksResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got.Hooks) != 0 {
		t.Errorf("hooks before discover = %d, want 0", len(got.Hooks))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/hooks", nil))
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got.Hooks) != 1 || got.Hooks[0].Name != "register-upload" {
		t.Errorf("hooks = %+v", got.Hooks)
	}
}
