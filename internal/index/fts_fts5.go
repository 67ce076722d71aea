//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
			slug UNINDEXED,
			title,
			source,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, slug, title, source string) error {
	if err := ftsDelete(tx, slug); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO articles_fts (slug, title, source) VALUES (?, ?, ?)`,
		slug, title, source)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, slug string) error {
	if _, err := tx.Exec(`DELETE FROM articles_fts WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// matchQuery quotes every term so user input cannot use FTS5 query syntax.
func matchQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	q := matchQuery(query)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := db.conn.Query(`
		SELECT slug,
		       title,
		       snippet(articles_fts, 2, '<b>', '</b>', '...', 32)
		FROM articles_fts
		WHERE articles_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
