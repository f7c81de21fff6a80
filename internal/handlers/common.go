// Package handlers implements the backend HTTP endpoints the sync client
// consumes: reference-table upload, catalog status, and session labels.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/digitizer-tools/catsync/internal/storage"
)

type Handler struct {
	store *storage.Store
}

func New(store *storage.Store) *Handler {
	return &Handler{store: store}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError emits the error as JSON so clients can surface the backend's
// message, matching the `error` field of the documented payloads.
func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}
