package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 20

// ArticleRow represents a row in the articles table.
type ArticleRow struct {
	Slug      string
	Title     string
	Published time.Time
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertArticle inserts or replaces an article and its FTS entry within a
// transaction.
func (db *DB) UpsertArticle(a ArticleRow, source string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO articles (slug, title, published, checksum, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title      = excluded.title,
			published  = excluded.published,
			checksum   = excluded.checksum,
			source     = excluded.source,
			updated_at = excluded.updated_at
	`, a.Slug, a.Title, a.Published.Format(time.DateOnly), a.Checksum, source, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert article: %w", err)
	}

	if err := ftsUpsert(tx, a.Slug, a.Title, source); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteArticle removes an article and its FTS entry.
func (db *DB) DeleteArticle(slug string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, slug); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM articles WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete article: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for an article, or an empty
// string if it is not indexed.
func (db *DB) GetChecksum(slug string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM articles WHERE slug = ?`, slug).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns slug → checksum for every indexed article.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT slug, checksum FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed articles.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
