package server

import (
	"fmt"
	"net/http"
	"time"
)

// PreviewSource supplies the latest composed preview frame as JPEG.
// ok is false until the first frame has been produced.
type PreviewSource interface {
	Preview() (jpeg []byte, ok bool)
}

// DefaultStreamInterval paces the MJPEG stream at roughly 15 FPS.
const DefaultStreamInterval = 66 * time.Millisecond

// StreamHandler serves the mirrored preview as MJPEG.
type StreamHandler struct {
	source   PreviewSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler reading from source.
func NewStreamHandler(source PreviewSource) *StreamHandler {
	return &StreamHandler{source: source, interval: DefaultStreamInterval}
}

// ServeHTTP streams preview frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if buf, ok := h.source.Preview(); ok {
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
			if _, err := w.Write(buf); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
