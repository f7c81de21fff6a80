// Package sync orchestrates the network operations that keep catalog state
// current: uploading a reference table, polling backend status, recording
// manual overrides, and building export snapshots.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	gosync "sync"
	"time"

	"github.com/digitizer-tools/catsync/internal/models"
	"github.com/digitizer-tools/catsync/internal/registry"
)

// Client talks to the backend's upload and status endpoints and applies the
// responses to a registry and session. A single mutex serializes all network
// operations for the registry, so an upload response is always fully applied
// before its follow-up status refresh runs, and no two in-flight requests
// can interleave their writes.
type Client struct {
	BaseURL string

	httpClient *http.Client
	registry   *registry.Registry
	session    *registry.Session
	mu         gosync.Mutex
}

// New creates a client against baseURL writing into reg and sess.
func New(baseURL string, reg *registry.Registry, sess *registry.Session) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		registry: reg,
		session:  sess,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Registry returns the registry this client writes into.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// Session returns the session context this client maintains.
func (c *Client) Session() *registry.Session {
	return c.session
}

// UploadReferenceTable posts the reference table to the backend and applies
// the response: adopt any returned session id, mark the table loaded, store
// the detected id and entry when present, then run a follow-up status
// refresh to cover images that arrived before the table was uploaded.
//
// The raw response is returned for display. A nil file fails with
// ValidationError; a non-success HTTP status fails with BackendError and
// mutates nothing.
func (c *Client) UploadReferenceTable(ctx context.Context, filename string, file io.Reader) (*models.UploadResponse, error) {
	if file == nil {
		return nil, &ValidationError{Message: "select a reference file"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("session_id", c.session.GetOrEmpty()); err != nil {
		return nil, fmt.Errorf("write session_id field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy reference table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload_csv", &body)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload reference table: %w", err)
	}
	defer resp.Body.Close()

	var payload models.UploadResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := "failed to upload reference table"
		if decodeErr == nil && payload.Error != "" {
			message = payload.Error
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode upload response: %w", decodeErr)
	}

	if payload.SessionID != "" {
		c.session.Adopt(payload.SessionID)
	}

	// The flag records that an upload succeeded, whether or not the table
	// contained the detected id.
	c.registry.MarkCSVLoaded()

	if payload.DetectedID.Set {
		c.registry.SetDetectedID(payload.DetectedID.Value)
	}
	if payload.Entry != nil && payload.Entry.CatalogID != "" {
		c.registry.PutServerEntry(*payload.Entry)
	}

	// Reconcile with images that may already be present. The upload response
	// is fully applied at this point, so the refresh cannot be clobbered by
	// a stale write.
	if _, err := c.refreshLocked(ctx); err != nil {
		slog.Debug("Follow-up status refresh failed", "err", err)
	}

	return &payload, nil
}

// RefreshStatus polls the backend for the session's detected id and entry.
// With no session yet it returns the neutral empty result without issuing a
// request; backend failures are likewise absorbed into the empty result.
// The table-loaded flag is never modified here, since it can only be
// learned from an upload.
func (c *Client) RefreshStatus(ctx context.Context) (*models.StatusResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// refreshLocked is RefreshStatus without the lock; callers hold c.mu.
func (c *Client) refreshLocked(ctx context.Context) (*models.StatusResponse, error) {
	sid, ok := c.session.Get()
	if !ok {
		return &models.StatusResponse{}, nil
	}

	statusURL := c.BaseURL + "/catalog_status?session_id=" + url.QueryEscape(sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The status endpoint is polled opportunistically; a session with no
		// images yet is an expected condition, not a failure.
		slog.Debug("Status refresh unreachable", "err", err)
		return &models.StatusResponse{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &models.StatusResponse{}, nil
	}

	var payload models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Debug("Status refresh returned malformed payload", "err", err)
		return &models.StatusResponse{}, nil
	}

	if payload.DetectedID.Set {
		// An explicitly present field overwrites, even when null. Whether a
		// refresh should ever clear a detected id this way is still open
		// with product; this keeps the literal contract.
		c.registry.SetDetectedID(payload.DetectedID.Value)
	}
	if payload.Entry != nil && payload.Entry.CatalogID != "" {
		c.registry.PutServerEntry(*payload.Entry)
	}

	return &payload, nil
}

// UpsertOverride merges the entry's fields into the manual override for its
// catalog id and makes that id the detected one, so the UI displays what
// the user just edited. An entry without a catalog id is treated as
// "nothing to save".
func (c *Client) UpsertOverride(entry models.CatalogEntry) {
	id := strings.TrimSpace(entry.CatalogID)
	if id == "" {
		return
	}
	c.registry.MergeOverride(entry)
	c.registry.SetDetectedID(id)
}

// FetchSessionLabel asks the backend for the session's display label.
// Failures of any kind yield an empty label; the caller falls back to
// NiceSession's other sources.
func (c *Client) FetchSessionLabel(ctx context.Context) string {
	sid, ok := c.session.Get()
	if !ok {
		return ""
	}

	labelURL := c.BaseURL + "/session_label?session_id=" + url.QueryEscape(sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, labelURL, nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return ""
	}

	var payload struct {
		Label string `json:"label"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Label != "" {
		return payload.Label
	}
	return payload.Name
}
