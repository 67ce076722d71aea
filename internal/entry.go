// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/library"
	"github.com/starford/quire/internal/site"
	"github.com/starford/quire/internal/sse"
)

// Run starts the blog server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("mode", string(cfg.App.Mode)),
		slog.String("articles_dir", cfg.Blog.ArticlesDir),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Blog.PublicDir, 0o755); err != nil {
		return fmt.Errorf("create public dir: %w", err)
	}

	c, err := openContent(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	pages, err := site.NewPages(cfg.Blog.SiteTitle, cfg.App.Mode, site.ViewsFS(cfg.Blog.ViewsDir), c.catalog)
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}
	if err := pages.Warm(); err != nil {
		return fmt.Errorf("prerender: %w", err)
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Every reload, from the watcher or an MCP write, refreshes the index,
	// notifies browsers and re-renders the page cache.
	c.catalog.OnChange(func(lib *library.Library, changes []library.Change) {
		stats, err := index.Sync(c.db, lib, logger)
		if err != nil {
			logger.Warn("sync failed", slog.String("error", err.Error()))
		} else {
			logger.Info("sync: done", slog.Int("indexed", stats.Indexed), slog.Int("removed", stats.Removed))
		}
		for _, ch := range changes {
			broker.PublishArticleEvent(ch.Kind.String(), ch.Slug)
		}
		if err := pages.Warm(); err != nil {
			logger.Error("prerender failed", slog.String("error", err.Error()))
		}
	})

	h := site.NewHandler(pages, c.catalog, c.db)
	siteRouter := site.NewRouter(h, site.RouterConfig{
		PublicDir:   cfg.Blog.PublicDir,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		AuthToken:   cfg.Auth.Token,
		Events:      broker,
		MCP:         c.mcpServer(cfg, app.version).Handler(),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", siteRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	g.Go(func() error {
		return c.catalog.Watch(watchCtx, logger, library.DefaultDebounce, nil)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stopWatch()
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
