// Package storage persists backend session state in SQLite. The client
// side keeps everything in memory; durability of sessions and reference
// entries is the backend's responsibility.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/digitizer-tools/catsync/internal/models"
)

// Store manages session and reference-entry persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// SessionRecord is one backend session row.
type SessionRecord struct {
	ID         string
	Label      string
	DetectedID string
	CreatedAt  time.Time
}

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

// Open initializes or connects to the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applySchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
            id TEXT PRIMARY KEY,
            label TEXT NOT NULL DEFAULT '',
            detected_id TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS catalog_entries (
            session_id TEXT NOT NULL,
            catalog_id TEXT NOT NULL,
            catalog_title TEXT NOT NULL DEFAULT '',
            catalog_author TEXT NOT NULL DEFAULT '',
            catalog_publication_year INTEGER,
            catalog_publisher TEXT NOT NULL DEFAULT '',
            catalog_place TEXT NOT NULL DEFAULT '',
            catalog_language TEXT NOT NULL DEFAULT '',
            catalog_keywords TEXT NOT NULL DEFAULT '',
            PRIMARY KEY (session_id, catalog_id),
            FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
        )`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// CreateSession inserts a session row if it does not exist yet.
func (s *Store) CreateSession(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (id, created_at) VALUES (?, ?)
         ON CONFLICT (id) DO NOTHING`,
		id, now,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Session loads one session row, or ErrSessionNotFound.
func (s *Store) Session(ctx context.Context, id string) (*SessionRecord, error) {
	var rec SessionRecord
	var created string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, label, detected_id, created_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.Label, &rec.DetectedID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}

// SetLabel stores the session's display label.
func (s *Store) SetLabel(ctx context.Context, id, label string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET label = ? WHERE id = ?`, label, id)
	if err != nil {
		return fmt.Errorf("update label: %w", err)
	}
	return requireRow(res)
}

// SetDetectedID stores the session's detected catalog identifier. An empty
// value clears it.
func (s *Store) SetDetectedID(ctx context.Context, id, detectedID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET detected_id = ? WHERE id = ?`, detectedID, id)
	if err != nil {
		return fmt.Errorf("update detected id: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// PutEntries upserts reference entries for a session; an entry replaces any
// prior row with the same catalog id.
func (s *Store) PutEntries(ctx context.Context, sessionID string, entries []models.CatalogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO catalog_entries (
            session_id, catalog_id, catalog_title, catalog_author,
            catalog_publication_year, catalog_publisher, catalog_place,
            catalog_language, catalog_keywords
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (session_id, catalog_id) DO UPDATE SET
            catalog_title = excluded.catalog_title,
            catalog_author = excluded.catalog_author,
            catalog_publication_year = excluded.catalog_publication_year,
            catalog_publisher = excluded.catalog_publisher,
            catalog_place = excluded.catalog_place,
            catalog_language = excluded.catalog_language,
            catalog_keywords = excluded.catalog_keywords`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if entry.CatalogID == "" {
			continue
		}
		var year sql.NullInt64
		if entry.CatalogPublicationYear != nil {
			year = sql.NullInt64{Int64: int64(*entry.CatalogPublicationYear), Valid: true}
		}
		if _, err := stmt.ExecContext(
			ctx,
			sessionID,
			entry.CatalogID,
			entry.CatalogTitle,
			entry.CatalogAuthor,
			year,
			entry.CatalogPublisher,
			entry.CatalogPlace,
			entry.CatalogLanguage,
			entry.CatalogKeywords,
		); err != nil {
			return fmt.Errorf("upsert entry %s: %w", entry.CatalogID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entries: %w", err)
	}
	return nil
}

// Entry loads the reference entry for (sessionID, catalogID). A missing
// entry is not an error; it returns (nil, nil).
func (s *Store) Entry(ctx context.Context, sessionID, catalogID string) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	var year sql.NullInt64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT catalog_id, catalog_title, catalog_author,
                catalog_publication_year, catalog_publisher, catalog_place,
                catalog_language, catalog_keywords
         FROM catalog_entries WHERE session_id = ? AND catalog_id = ?`,
		sessionID, catalogID,
	).Scan(
		&entry.CatalogID,
		&entry.CatalogTitle,
		&entry.CatalogAuthor,
		&year,
		&entry.CatalogPublisher,
		&entry.CatalogPlace,
		&entry.CatalogLanguage,
		&entry.CatalogKeywords,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select entry: %w", err)
	}
	if year.Valid {
		entry.CatalogPublicationYear = models.Year(int(year.Int64))
	}
	return &entry, nil
}

// EntryCount reports how many reference entries a session holds.
func (s *Store) EntryCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM catalog_entries WHERE session_id = ?`,
		sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// DeleteSession removes a session and, via the cascade, its entries.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
