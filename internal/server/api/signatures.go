package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/pinchsign/internal/export"
	"github.com/ayusman/pinchsign/internal/store"
)

// ThumbnailFile is the archive preview download name.
const ThumbnailFile = "thumbnail.png"

// SignaturesHandler serves the signature archive.
type SignaturesHandler struct {
	store *store.Store
}

// NewSignaturesHandler creates a SignaturesHandler.
func NewSignaturesHandler(s *store.Store) *SignaturesHandler {
	return &SignaturesHandler{store: s}
}

type listSignaturesResponse struct {
	Signatures []*store.Signature `json:"signatures"`
}

type deliveriesResponse struct {
	Deliveries []*store.Delivery `json:"deliveries"`
}

// ServeHTTP routes:
//
//	GET    /api/signatures
//	GET    /api/signatures/{id}
//	DELETE /api/signatures/{id}
//	GET    /api/signatures/{id}/signature.png|signature.svg|coordinates.txt|thumbnail.png
//	GET    /api/signatures/{id}/deliveries
func (h *SignaturesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/signatures")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	if sub == "" {
		switch r.Method {
		case http.MethodGet:
			h.get(w, id)
		case http.MethodDelete:
			h.delete(w, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if sub == "deliveries" {
		h.deliveries(w, id)
		return
	}
	h.artifact(w, id, sub)
}

func (h *SignaturesHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sigs, err := h.store.Signatures().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list signatures")
		return
	}
	if sigs == nil {
		sigs = []*store.Signature{}
	}
	writeJSON(w, http.StatusOK, listSignaturesResponse{Signatures: sigs})
}

func (h *SignaturesHandler) load(w http.ResponseWriter, id string) (*store.Signature, bool) {
	sig, err := h.store.Signatures().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Signature not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get signature")
		return nil, false
	}
	return sig, true
}

func (h *SignaturesHandler) get(w http.ResponseWriter, id string) {
	if sig, ok := h.load(w, id); ok {
		writeJSON(w, http.StatusOK, sig)
	}
}

func (h *SignaturesHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Signatures().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Signature not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete signature")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SignaturesHandler) deliveries(w http.ResponseWriter, id string) {
	if _, ok := h.load(w, id); !ok {
		return
	}
	ds, err := h.store.Deliveries().ListBySignature(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list deliveries")
		return
	}
	if ds == nil {
		ds = []*store.Delivery{}
	}
	writeJSON(w, http.StatusOK, deliveriesResponse{Deliveries: ds})
}

func (h *SignaturesHandler) artifact(w http.ResponseWriter, id, name string) {
	var contentType string
	switch name {
	case export.RasterFile, ThumbnailFile:
		contentType = "image/png"
	case export.VectorFile:
		contentType = "image/svg+xml"
	case export.CoordinatesFile:
		contentType = "text/plain; charset=utf-8"
	default:
		writeError(w, http.StatusNotFound, "Unknown artifact")
		return
	}

	sig, ok := h.load(w, id)
	if !ok {
		return
	}

	var data []byte
	switch name {
	case export.RasterFile:
		data = sig.PNG
	case ThumbnailFile:
		data = sig.Thumbnail
	case export.VectorFile:
		data = []byte(sig.SVG)
	case export.CoordinatesFile:
		data = []byte(sig.Coordinates)
	}
	if name == ThumbnailFile && len(data) == 0 {
		writeError(w, http.StatusNotFound, "Signature has no thumbnail")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
