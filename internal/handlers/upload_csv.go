package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/digitizer-tools/catsync/internal/reftable"
	"github.com/digitizer-tools/catsync/internal/storage"
)

// Reference tables are small; 10MB is generous headroom.
const maxTableSize = 10 * 1024 * 1024

// HandleUploadCSV ingests a reference table for a session. An empty
// session_id mints a new session, so the first upload can happen before any
// images arrive. The response carries the session id, the session's current
// detected id (explicit null when none), and the matching entry if the
// table contains it.
func (h *Handler) HandleUploadCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxTableSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(data) >= maxTableSize {
		h.writeError(w, "Reference table too large (max 10MB)", http.StatusBadRequest)
		return
	}

	entries, err := reftable.Parse(header.Filename, bytes.NewReader(data))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := h.store.CreateSession(ctx, sessionID); err != nil {
		h.writeError(w, "Failed to create session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.store.PutEntries(ctx, sessionID, entries); err != nil {
		h.writeError(w, "Failed to store reference entries: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Reference table ingested", "session_id", sessionID, "file", header.Filename, "entries", len(entries))

	session, err := h.store.Session(ctx, sessionID)
	if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]any{
		"session_id":  sessionID,
		"detected_id": nil,
		"count":       len(entries),
	}
	if session != nil && session.DetectedID != "" {
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
