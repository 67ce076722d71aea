package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quire/internal/apperr"
)

func tempArticles(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempArticles(t)
	content := []byte("Hello\n1/5/2021\nWorld\n")
	if err := s.Write("hello.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("hello.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempArticles(t)
	if _, err := s.Read("nope.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_TopLevelRegularNonHidden(t *testing.T) {
	s := tempArticles(t)
	_ = s.Write("b.md", []byte("b"))
	_ = s.Write("a.txt", []byte("a"))
	_ = s.Write(".draft.md", []byte("hidden"))
	if err := os.MkdirAll(filepath.Join(s.root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(s.root, "sub", "c.md"), []byte("c"), 0o644)

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	if items[0].Slug != "a" || items[1].Slug != "b" {
		t.Errorf("slugs = %q, %q", items[0].Slug, items[1].Slug)
	}
	if items[0].Checksum != Checksum([]byte("a")) {
		t.Errorf("checksum = %q", items[0].Checksum)
	}
	if items[0].UpdatedAt.IsZero() {
		t.Error("expected modification time")
	}
}

func TestResolve(t *testing.T) {
	s := tempArticles(t)
	_ = s.Write("first-post.md", []byte("x"))

	f, err := s.Resolve("first-post")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if f.Path != "first-post.md" {
		t.Errorf("path = %q", f.Path)
	}
	if _, err := s.Resolve("second-post"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Resolve("../etc"); !errors.Is(err, apperr.ErrInvalidSlug) {
		t.Errorf("err = %v, want ErrInvalidSlug", err)
	}
}

func TestCreate_RejectsExistingSlug(t *testing.T) {
	s := tempArticles(t)
	if err := s.Create("post.md", []byte("one")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create("post.txt", []byte("two")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempArticles(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"sub/nested.md",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteReplaces(t *testing.T) {
	s := tempArticles(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	items, _ := s.List()
	if len(items) != 1 {
		t.Errorf("leftover files: %+v", items)
	}
}

func TestValidSlug(t *testing.T) {
	for slug, want := range map[string]bool{
		"hello-world": true,
		"2021_notes":  true,
		"":            false,
		".hidden":     false,
		"..":          false,
		"a/b":         false,
		`a\b`:         false,
	} {
		if got := ValidSlug(slug); got != want {
			t.Errorf("ValidSlug(%q) = %v, want %v", slug, got, want)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(path, nil, 0o644)
	if _, err := NewFS(path); err == nil {
		t.Error("expected error when root is a file")
	}
}
