package index

import (
	"log/slog"

	"github.com/starford/quire/internal/library"
)

// SyncStats reports what a Sync pass changed.
type SyncStats struct {
	Indexed int
	Removed int
}

// Sync brings the index up to date with a library snapshot:
//   - new and changed articles are upserted
//   - articles no longer in the snapshot are deleted
//
// Per-article failures are logged and skipped.
func Sync(db ArticleIndex, lib *library.Library, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	for _, a := range lib.Articles() {
		if checksums[a.Slug()] == a.File.Checksum {
			continue
		}
		row := ArticleRow{
			Slug:      a.Slug(),
			Title:     a.Title,
			Published: a.Date.Time(),
			Checksum:  a.File.Checksum,
			UpdatedAt: a.File.UpdatedAt,
		}
		if err := db.UpsertArticle(row, a.Source); err != nil {
			logger.Warn("sync: index failed", slog.String("slug", a.Slug()), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("slug", a.Slug()))
	}

	for slug := range checksums {
		if _, ok := lib.Get(slug); ok {
			continue
		}
		if err := db.DeleteArticle(slug); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("slug", slug))
	}

	return stats, nil
}
