// Package server provides the HTTP server for the pinchsign signing pad.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/pinchsign/internal/server/api"
	"github.com/ayusman/pinchsign/internal/store"
	"github.com/ayusman/pinchsign/internal/upload"
)

// Config holds the server configuration. Nil fields disable their routes.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller api.Controller
	Preview    PreviewSource
	Hooks      *upload.Manager
	Events     *EventHub
}

// Server represents the HTTP server for the pinchsign application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Controller != nil {
		h := api.NewSessionHandler(s.config.Controller)
		s.mux.Handle("/api/session", h)
		s.mux.Handle("/api/session/", h)
	}

	if s.config.Store != nil {
		sigs := api.NewSignaturesHandler(s.config.Store)
		s.mux.Handle("/api/signatures", sigs)
		s.mux.Handle("/api/signatures/", sigs)

		settings := api.NewSettingsHandler(s.config.Store)
		s.mux.Handle("/api/settings", settings)
		s.mux.Handle("/api/settings/", settings)
	}

	if s.config.Hooks != nil {
		s.mux.Handle("/api/hooks", api.NewHooksHandler(s.config.Hooks))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.Events != nil {
		s.mux.Handle("/api/events", s.config.Events)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Events != nil {
		response["clients"] = s.config.Events.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Handler returns an *http.Server bound to addr, for callers that need
// graceful shutdown.
func (s *Server) Handler(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
