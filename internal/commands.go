package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/storage"
)

// renderedArticle is the --json output of RenderArticle.
type renderedArticle struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	ReadTime string `json:"read_time"`
	Body     string `json:"body"`
}

// RenderArticle parses one article and writes its HTML body, or the whole
// document as JSON, to w. name is used in errors.
func RenderArticle(cfg BlogConfig, name string, data []byte, asJSON bool, w io.Writer) error {
	parser := NewBlogParser(cfg)
	if !asJSON {
		_, err := parser.WriteHTML(w, name, data)
		return err
	}
	doc, err := parser.ParseBytes(name, data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(renderedArticle{
		Title:    doc.Title,
		Date:     doc.Date.String(),
		ReadTime: doc.ReadTimeLabel(),
		Body:     doc.Body,
	})
}

// NewArticle scaffolds <slug>.md in the articles directory with the given
// title and date and an empty body. It returns the file path.
func NewArticle(cfg BlogConfig, slug, title string, date blog.Date) (string, error) {
	if !storage.ValidSlug(slug) {
		return "", fmt.Errorf("invalid slug: %q", slug)
	}
	store, err := storage.NewFS(cfg.ArticlesDir)
	if err != nil {
		return "", err
	}
	name := slug + ".md"
	if err := store.Create(name, blog.Compose(title, date, "", cfg.VersionHeader)); err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	return filepath.Join(store.Root(), name), nil
}
