//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM articles_fts`).Scan(&count); err != nil {
		t.Fatalf("articles_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertArticle(row("fts", "FTS Article", "f1"), "Quire provides powerful full-text search."); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Slug != "fts" {
		t.Errorf("slug = %q", results[0].Slug)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_QuerySyntaxIsQuoted(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArticle(row("q", "Quoted", "1"), "plain words")
	if _, err := db.Search(`plain" OR (`, 10); err != nil {
		t.Errorf("Search with syntax characters failed: %v", err)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArticle(row("gone", "Gone", "g"), "vanishing content")
	_ = db.DeleteArticle("gone")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Slug == "gone" {
			t.Error("deleted article still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertArticle(row("evo", "Old", "1"), "original text")
	_ = db.UpsertArticle(row("evo", "New", "2"), "replacement text")

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
