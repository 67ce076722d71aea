package library

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/storage"
)

// Loader builds Library snapshots from an articles directory.
type Loader struct {
	store   storage.Provider
	parser  *blog.Parser
	logger  *slog.Logger
	workers int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report skipped files.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithWorkers bounds how many files are parsed at once.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// NewLoader returns a Loader reading from store with parser.
func NewLoader(store storage.Provider, parser *blog.Parser, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:   store,
		parser:  parser,
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses every article file concurrently, one renderer per document.
// Files that fail to parse are logged and left out. When prev is non-nil,
// documents whose checksum did not change are reused instead of parsed.
func (l *Loader) Load(ctx context.Context, prev *Library) (*Library, error) {
	files, err := l.store.List()
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}

	var (
		mu       sync.Mutex
		articles = make([]*Article, 0, len(files))
		seen     = make(map[string]string, len(files))
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for _, file := range files {
		if other, dup := seen[file.Slug]; dup {
			l.logger.Warn("library: duplicate slug skipped",
				slog.String("slug", file.Slug),
				slog.String("path", file.Path),
				slog.String("kept", other))
			continue
		}
		seen[file.Slug] = file.Path

		if prev != nil {
			if old, ok := prev.Get(file.Slug); ok && old.File.Checksum == file.Checksum {
				mu.Lock()
				articles = append(articles, &Article{Document: old.Document, File: file})
				mu.Unlock()
				continue
			}
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			a, err := l.parse(file)
			if err != nil {
				l.logger.Warn("library: article skipped",
					slog.String("path", file.Path),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			articles = append(articles, a)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("library: load: %w", err)
	}

	lib := New(articles)
	l.logger.Debug("library: loaded", slog.Int("articles", lib.Len()), slog.Int("files", len(files)))
	return lib, nil
}

func (l *Loader) parse(file models.ArticleFile) (*Article, error) {
	data, err := l.store.Read(file.Path)
	if err != nil {
		return nil, err
	}
	doc, err := l.parser.ParseBytes(filepath.Join(l.store.Root(), file.Path), data)
	if err != nil {
		return nil, err
	}
	// The file may have changed since it was listed.
	file.Checksum = storage.Checksum(data)
	return &Article{Document: doc, File: file}, nil
}
