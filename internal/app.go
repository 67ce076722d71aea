package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/library"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/storage"
)

// assetsURL is where uploaded article images are served from.
const assetsURL = "/public/images"

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.mode != "" {
		app.config.App.Mode = app.mode
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// NewBlogParser returns the article parser described by cfg.
func NewBlogParser(cfg BlogConfig) *blog.Parser {
	return blog.NewParser(
		blog.WithVersionHeader(cfg.VersionHeader),
		blog.WithWordsPerMinute(cfg.WordsPerMinute),
	)
}

// content is everything built from the articles directory.
type content struct {
	store   *storage.FS
	parser  *blog.Parser
	catalog *library.Catalog
	db      *index.DB
}

// openContent loads the library and brings the search index up to date.
func openContent(ctx context.Context, cfg *Config, logger *slog.Logger) (*content, error) {
	if err := os.MkdirAll(cfg.Blog.ArticlesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create articles dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Blog.ArticlesDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	parser := NewBlogParser(cfg.Blog)
	catalog := library.NewCatalog(library.NewLoader(store, parser, library.WithLogger(logger)))
	if _, err := catalog.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}
	logger.Info("library: loaded", slog.Int("articles", catalog.Current().Len()))

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if _, err := index.Sync(db, catalog.Current(), logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &content{store: store, parser: parser, catalog: catalog, db: db}, nil
}

func (c *content) Close() error {
	return c.db.Close()
}

func (c *content) mcpServer(cfg *Config, version string) *mcpserver.Server {
	return mcpserver.New(c.catalog, c.store, version,
		mcpserver.WithSearcher(c.db),
		mcpserver.WithParser(c.parser),
		mcpserver.WithAssets(filepath.Join(cfg.Blog.PublicDir, "images"), assetsURL),
	)
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger()

	c, err := openContent(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	c.catalog.OnChange(func(lib *library.Library, _ []library.Change) {
		if _, err := index.Sync(c.db, lib, logger); err != nil {
			logger.Warn("sync failed", slog.String("error", err.Error()))
		}
	})

	logger.Info("mcp: serving on stdio")
	return c.mcpServer(app.config, app.version).ServeStdio()
}
