package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the articles directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute articles directory.
func (f *FS) Root() string {
	return f.root
}

// Slug returns the slug for a file name: the name without its extension.
func Slug(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ValidSlug reports whether slug can name an article file.
func ValidSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, ".") {
		return false
	}
	return !strings.ContainsAny(slug, `/\`)
}

// safePath resolves name against the root and rejects anything that is not
// a direct child of it.
func (f *FS) safePath(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("storage: invalid name %q", name)
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || cleaned == ".." || cleaned == "." {
		return "", fmt.Errorf("storage: name escapes articles dir: %s", name)
	}
	return filepath.Join(f.root, cleaned), nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// List returns metadata for every top-level, regular, non-hidden file,
// ordered by name. Subdirectories are not descended into.
func (f *FS) List() ([]models.ArticleFile, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	out := make([]models.ArticleFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || hidden(e.Name()) {
			continue
		}
		meta, err := f.stat(e.Name())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // removed between ReadDir and stat
			}
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *FS) stat(name string) (models.ArticleFile, error) {
	p := filepath.Join(f.root, name)
	info, err := os.Stat(p)
	if err != nil {
		return models.ArticleFile{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return models.ArticleFile{}, err
	}
	return models.ArticleFile{
		Slug:      Slug(name),
		Path:      name,
		Checksum:  Checksum(data),
		UpdatedAt: info.ModTime(),
	}, nil
}

// Read returns the raw bytes of an article file.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Resolve finds the file whose stem is slug. When several files share a
// stem the first by name wins.
func (f *FS) Resolve(slug string) (models.ArticleFile, error) {
	if !ValidSlug(slug) {
		return models.ArticleFile{}, fmt.Errorf("storage: resolve %q: %w", slug, apperr.ErrInvalidSlug)
	}
	files, err := f.List()
	if err != nil {
		return models.ArticleFile{}, err
	}
	for _, file := range files {
		if file.Slug == slug {
			return file, nil
		}
	}
	return models.ArticleFile{}, fmt.Errorf("storage: resolve %q: %w", slug, apperr.ErrNotFound)
}

// Write atomically replaces the named file.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(abs, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// Create writes a new file and fails with apperr.ErrAlreadyExists when an
// article with the same slug is already present.
func (f *FS) Create(name string, content []byte) error {
	if _, err := f.Resolve(Slug(name)); err == nil {
		return fmt.Errorf("storage: create %s: %w", name, apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return f.Write(name, content)
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
