// Package testutil provides shared test helpers for article directories and
// search index databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/storage"
)

// TestDB creates a temporary SQLite index that is closed when the test ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "quire-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestArticles creates a temporary articles directory holding files (name
// to content) and returns it with a storage provider rooted there.
func TestArticles(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
