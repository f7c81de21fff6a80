package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/digitizer-tools/catsync/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catsync.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Session(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := store.CreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	// Creating again is a no-op, not an error.
	if err := store.CreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("repeat CreateSession failed: %v", err)
	}

	rec, err := store.Session(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if rec.ID != "sess-1" || rec.Label != "" || rec.DetectedID != "" {
		t.Errorf("fresh session = %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not recorded")
	}

	if err := store.SetLabel(ctx, "sess-1", "Herbarium scans"); err != nil {
		t.Fatalf("SetLabel failed: %v", err)
	}
	if err := store.SetDetectedID(ctx, "sess-1", "BO0624_1"); err != nil {
		t.Fatalf("SetDetectedID failed: %v", err)
	}

	rec, err = store.Session(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if rec.Label != "Herbarium scans" || rec.DetectedID != "BO0624_1" {
		t.Errorf("session = %+v", rec)
	}

	if err := store.SetLabel(ctx, "missing", "x"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("SetLabel on missing session: %v", err)
	}
}

func TestEntriesUpsertAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.CreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	entries := []models.CatalogEntry{
		{CatalogID: "BO0624_1", CatalogTitle: "Atlas", CatalogPublicationYear: models.Year(1574)},
		{CatalogID: "BO0624_2", CatalogTitle: "Herbarius"},
		{CatalogTitle: "no id, skipped"},
	}
	if err := store.PutEntries(ctx, "sess-1", entries); err != nil {
		t.Fatalf("PutEntries failed: %v", err)
	}

	n, err := store.EntryCount(ctx, "sess-1")
	if err != nil {
		t.Fatalf("EntryCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("EntryCount = %d, expected 2", n)
	}

	entry, err := store.Entry(ctx, "sess-1", "BO0624_1")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if entry == nil || entry.CatalogTitle != "Atlas" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.CatalogPublicationYear == nil || *entry.CatalogPublicationYear != 1574 {
		t.Errorf("year = %v, expected 1574", entry.CatalogPublicationYear)
	}

	// Absent year stays absent.
	entry, err = store.Entry(ctx, "sess-1", "BO0624_2")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if entry.CatalogPublicationYear != nil {
		t.Errorf("year = %v, expected nil", entry.CatalogPublicationYear)
	}

	// Re-uploading replaces the whole row.
	if err := store.PutEntries(ctx, "sess-1", []models.CatalogEntry{
		{CatalogID: "BO0624_1", CatalogTitle: "Atlas Minor"},
	}); err != nil {
		t.Fatalf("PutEntries failed: %v", err)
	}
	entry, err = store.Entry(ctx, "sess-1", "BO0624_1")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if entry.CatalogTitle != "Atlas Minor" || entry.CatalogPublicationYear != nil {
		t.Errorf("replaced entry = %+v", entry)
	}

	// Unknown entry is nil, nil.
	entry, err = store.Entry(ctx, "sess-1", "MISSING")
	if err != nil || entry != nil {
		t.Errorf("Entry(MISSING) = %+v, %v", entry, err)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.CreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.PutEntries(ctx, "sess-1", []models.CatalogEntry{{CatalogID: "X"}}); err != nil {
		t.Fatalf("PutEntries failed: %v", err)
	}

	if err := store.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if _, err := store.Session(ctx, "sess-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
	n, err := store.EntryCount(ctx, "sess-1")
	if err != nil {
		t.Fatalf("EntryCount failed: %v", err)
	}
	if n != 0 {
		t.Errorf("EntryCount = %d after cascade delete", n)
	}
}
