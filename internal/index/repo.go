package index

import (
	"fmt"

	"github.com/starford/ansuz/internal/models"
)

// Searcher is the search surface consumers depend on, so handlers and
// the MCP server can be tested against a fake.
type Searcher interface {
	Search(query string, limit int) ([]SearchResult, error)
}

var _ Searcher = (*DB)(nil)

// SearchResult is one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// Upsert inserts or replaces a note and its FTS entry.
func (db *DB) Upsert(n models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (id, title, subject, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			subject    = excluded.subject,
			content    = excluded.content,
			created_at = excluded.created_at
	`, n.ID, n.Title, n.Subject, n.Content, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	if err := ftsUpsert(tx, n); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a note and its FTS entry.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM notes WHERE id = ?`, id)

	return tx.Commit()
}

// Rebuild replaces the entire index with the given collection snapshot.
// Used at startup and after an external change to the persisted file.
func (db *DB) Rebuild(collection []models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("index: clear notes: %w", err)
	}
	ftsClear(tx)

	stmt, err := tx.Prepare(`INSERT INTO notes (id, title, subject, content, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range collection {
		if _, err := stmt.Exec(n.ID, n.Title, n.Subject, n.Content, n.CreatedAt); err != nil {
			return fmt.Errorf("index: insert note: %w", err)
		}
		if err := ftsUpsert(tx, n); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
