// Package library holds the set of published articles.
//
// A Library is an immutable snapshot: once built it is never modified, so
// it can be shared freely between request handlers. A Catalog owns the
// current snapshot and swaps it atomically on reload.
package library

import (
	"sort"
	"time"

	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/models"
)

// Article is a parsed article file.
type Article struct {
	*blog.Document
	File models.ArticleFile
}

// Slug is the URL name of the article.
func (a *Article) Slug() string {
	return a.File.Slug
}

// URL is the page path of the article.
func (a *Article) URL() string {
	return "/articles/" + a.File.Slug
}

// Summary returns the list view of the article.
func (a *Article) Summary() models.ArticleSummary {
	return models.ArticleSummary{
		Slug:     a.Slug(),
		Title:    a.Title,
		Date:     a.Date.String(),
		ReadTime: a.ReadTimeLabel(),
		URL:      a.URL(),
	}
}

// Detail returns the full view of the article. Source is only included
// when withSource is set.
func (a *Article) Detail(withSource bool) models.ArticleDetail {
	d := models.ArticleDetail{
		ArticleSummary: a.Summary(),
		Body:           a.Body,
		Checksum:       a.File.Checksum,
		Updated:        a.File.UpdatedAt,
	}
	if withSource {
		d.Source = a.Source
	}
	return d
}

// Library is an immutable snapshot of all articles.
type Library struct {
	articles []*Article
	bySlug   map[string]*Article
	loadedAt time.Time
}

// New builds a Library, ordering articles newest first and then by slug.
func New(articles []*Article) *Library {
	sorted := make([]*Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Date != b.Date {
			return b.Date.Before(a.Date)
		}
		return a.Slug() < b.Slug()
	})

	bySlug := make(map[string]*Article, len(sorted))
	for _, a := range sorted {
		bySlug[a.Slug()] = a
	}
	return &Library{articles: sorted, bySlug: bySlug, loadedAt: time.Now()}
}

// Get returns the article for slug.
func (l *Library) Get(slug string) (*Article, bool) {
	a, ok := l.bySlug[slug]
	return a, ok
}

// Articles returns all articles, newest first. The slice must not be
// modified.
func (l *Library) Articles() []*Article {
	return l.articles
}

// Summaries returns the list view of every article.
func (l *Library) Summaries() []models.ArticleSummary {
	out := make([]models.ArticleSummary, len(l.articles))
	for i, a := range l.articles {
		out[i] = a.Summary()
	}
	return out
}

// Len returns the number of articles.
func (l *Library) Len() int {
	return len(l.articles)
}

// LoadedAt returns when the snapshot was built.
func (l *Library) LoadedAt() time.Time {
	return l.loadedAt
}
