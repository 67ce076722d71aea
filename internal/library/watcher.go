package library

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 200 * time.Millisecond

// ReloadCallback is called after a watcher-driven reload that changed at
// least one article.
type ReloadCallback func(lib *Library, changes []Change)

// Watch starts an fsnotify watcher on the articles directory and reloads
// the catalog when files change, until ctx is cancelled. Events are
// debounced so an editor's write-rename sequence triggers one reload.
// Hidden files are ignored.
func (c *Catalog) Watch(ctx context.Context, logger *slog.Logger, debounce time.Duration, cb ReloadCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := c.loader.store.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			changes, err := c.Reload(ctx)
			if err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			for _, ch := range changes {
				logger.Debug("watcher: article changed",
					slog.String("slug", ch.Slug),
					slog.String("op", ch.Kind.String()))
			}
			if len(changes) > 0 && cb != nil {
				cb(c.Current(), changes)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") || ev.Op == fsnotify.Chmod {
				continue
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
