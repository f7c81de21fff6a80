package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/digitizer-tools/catsync/internal/storage"
)

// HandleCatalogStatus reports a session's detected catalog id and the
// matching reference entry. The detected id is an explicit null when none
// has been recorded; clients treat non-2xx as a soft empty result.
func (h *Handler) HandleCatalogStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		h.writeError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	session, err := h.store.Session(ctx, sessionID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		h.writeError(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]any{"detected_id": nil}
	if session.DetectedID != "" {
		response["detected_id"] = session.DetectedID
		entry, err := h.store.Entry(ctx, sessionID, session.DetectedID)
		if err != nil {
			h.writeError(w, "Failed to look up entry: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if entry != nil {
			response["entry"] = entry
		}
	}

	h.writeJSON(w, response)
}

// HandleSessionLabel serves and updates a session's display label.
func (h *Handler) HandleSessionLabel(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		h.writeError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		session, err := h.store.Session(ctx, sessionID)
		if errors.Is(err, storage.ErrSessionNotFound) {
			h.writeError(w, "session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]string{"label": session.Label})
	case http.MethodPut:
		var body struct {
			Label string `json:"label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.store.SetLabel(ctx, sessionID, body.Label); err != nil {
			if errors.Is(err, storage.ErrSessionNotFound) {
				h.writeError(w, "session not found", http.StatusNotFound)
				return
			}
			h.writeError(w, "Failed to store label: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]string{"label": body.Label})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSetDetected records a session's detected catalog id. The detection
// pipeline itself lives outside this service; this endpoint is how it (or a
// maintenance script) reports its result.
func (h *Handler) HandleSetDetected(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		SessionID  string `json:"session_id"`
		DetectedID string `json:"detected_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.SessionID == "" {
		h.writeError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.store.CreateSession(ctx, body.SessionID); err != nil {
		h.writeError(w, "Failed to create session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.store.SetDetectedID(ctx, body.SessionID, body.DetectedID); err != nil {
		h.writeError(w, "Failed to store detected id: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"session_id":  body.SessionID,
		"detected_id": body.DetectedID,
	})
}
