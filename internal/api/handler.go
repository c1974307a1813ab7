// Package api provides HTTP handlers for the MathPeer API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/mathpeer/mathpeer/internal/catalog"
	"github.com/mathpeer/mathpeer/internal/dispatch"
	"github.com/mathpeer/mathpeer/internal/store"
)

// maxRequestBodySize caps POST bodies (64KB).
const maxRequestBodySize = 64 << 10

// Handler provides common handler dependencies.
type Handler struct {
	repo       store.Repository
	cat        *catalog.Catalog
	dispatcher *dispatch.Service
	isDev      bool
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, cat *catalog.Catalog, dispatcher *dispatch.Service, isDev bool) *Handler {
	return &Handler{
		repo:       repo,
		cat:        cat,
		dispatcher: dispatcher,
		isDev:      isDev,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes a size-capped JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
