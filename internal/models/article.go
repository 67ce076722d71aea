// Package models defines the domain types shared between storage, the
// library and the HTTP layer.
package models

import "time"

// ArticleFile describes one article file on disk.
type ArticleFile struct {
	Slug      string    `json:"slug"`
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleSummary is the list view of an article.
type ArticleSummary struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	ReadTime string `json:"read_time"`
	URL      string `json:"url"`
}

// ArticleDetail is a single rendered article.
type ArticleDetail struct {
	ArticleSummary
	Body     string    `json:"body"`
	Source   string    `json:"source,omitempty"`
	Checksum string    `json:"checksum"`
	Updated  time.Time `json:"updated_at"`
}

// SearchHit is one search result.
type SearchHit struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}
