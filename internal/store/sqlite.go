package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hpungsan/tangent/internal/errors"
)

// InitDB initializes the companion SQLite database at baseDir/tangent.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tangent.
func InitDB(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	dbPath := filepath.Join(baseDir, "tangent.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// migrate creates the schema if needed.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS annotations (
			doc_id     TEXT NOT NULL,
			portal_id  TEXT NOT NULL,
			content    TEXT NOT NULL,
			withdrawn  INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (doc_id, portal_id)
		);
		CREATE INDEX IF NOT EXISTS idx_annotations_doc ON annotations(doc_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DocKey derives the deterministic store key for a primary document from
// its path. The same document always addresses the same companion rows.
func DocKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// SQLiteStore keeps annotation entries in a companion SQLite database,
// keyed by (document, portal identifier).
type SQLiteStore struct {
	db    *sql.DB
	docID string
	now   func() int64
}

// NewSQLiteStore creates a SQLiteStore for one primary document.
func NewSQLiteStore(db *sql.DB, docID string) *SQLiteStore {
	return &SQLiteStore{
		db:    db,
		docID: docID,
		now:   func() int64 { return time.Now().Unix() },
	}
}

// SetClock overrides the timestamp source. Tests use this for stable output.
func (s *SQLiteStore) SetClock(now func() int64) {
	s.now = now
}

// Upsert creates or replaces the entry for portalID.
func (s *SQLiteStore) Upsert(portalID, content string) error {
	if err := validateID(portalID); err != nil {
		return err
	}

	now := s.now()
	_, err := s.db.Exec(`
		INSERT INTO annotations (doc_id, portal_id, content, withdrawn, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
		ON CONFLICT (doc_id, portal_id) DO UPDATE SET
			content = excluded.content,
			withdrawn = 0,
			updated_at = excluded.updated_at
	`, s.docID, portalID, content, now, now)
	if err != nil {
		return errors.NewStoreWrite(portalID, err)
	}
	return nil
}

// Remove deletes the entry for portalID. Missing entries are a no-op.
func (s *SQLiteStore) Remove(portalID string) error {
	if err := validateID(portalID); err != nil {
		return err
	}

	_, err := s.db.Exec(`DELETE FROM annotations WHERE doc_id = ? AND portal_id = ?`,
		s.docID, portalID)
	if err != nil {
		return errors.NewStoreWrite(portalID, err)
	}
	return nil
}

// Lookup returns the stored content for portalID.
func (s *SQLiteStore) Lookup(portalID string) (string, error) {
	if err := validateID(portalID); err != nil {
		return "", err
	}

	var content string
	err := s.db.QueryRow(`SELECT content FROM annotations WHERE doc_id = ? AND portal_id = ?`,
		s.docID, portalID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", errors.NewNotFound(portalID)
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return content, nil
}

// Withdraw flags the entry for portalID.
func (s *SQLiteStore) Withdraw(portalID string) error {
	if err := validateID(portalID); err != nil {
		return err
	}

	result, err := s.db.Exec(`UPDATE annotations SET withdrawn = 1 WHERE doc_id = ? AND portal_id = ?`,
		s.docID, portalID)
	if err != nil {
		return errors.NewStoreWrite(portalID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFound(portalID)
	}
	return nil
}

// List returns all entries for the document in insertion order.
func (s *SQLiteStore) List() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT portal_id, content, withdrawn, created_at, updated_at
		FROM annotations
		WHERE doc_id = ?
		ORDER BY created_at, portal_id
	`, s.docID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var withdrawn int
		if err := rows.Scan(&e.PortalID, &e.Content, &withdrawn, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Withdrawn = withdrawn != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// PurgeWithdrawn deletes entries left withdrawn by abandoned edit sessions.
func (s *SQLiteStore) PurgeWithdrawn() (int, error) {
	result, err := s.db.Exec(`DELETE FROM annotations WHERE doc_id = ? AND withdrawn = 1`, s.docID)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}
