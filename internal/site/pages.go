package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"sync"

	"github.com/starford/quire/internal/library"
	"github.com/starford/quire/internal/models"
)

// Mode selects how pages are produced.
type Mode string

const (
	// ModePrerender renders every page once per library snapshot.
	ModePrerender Mode = "prerender"
	// ModeLive re-reads templates on every request and enables the
	// live-reload event stream.
	ModeLive Mode = "live"
)

// Catalog is the read side of library.Catalog.
type Catalog interface {
	Current() *library.Library
}

type pageData struct {
	BrowserTitle string
	SiteTitle    string
	Live         bool
	Body         template.HTML
	Articles     []models.ArticleSummary
	Article      *models.ArticleSummary
	Query        string
	Results      []models.SearchHit
}

// renderCache holds the prerendered pages for one snapshot.
type renderCache struct {
	lib      *library.Library
	root     []byte
	browse   []byte
	articles map[string][]byte
}

// Pages renders the HTML pages of the site.
type Pages struct {
	siteTitle string
	mode      Mode
	viewsFS   fs.FS
	catalog   Catalog

	mu    sync.Mutex
	views *Views
	cache *renderCache
}

// NewPages parses the views once to fail fast on broken templates.
func NewPages(siteTitle string, mode Mode, viewsFS fs.FS, catalog Catalog) (*Pages, error) {
	views, err := LoadViews(viewsFS)
	if err != nil {
		return nil, err
	}
	return &Pages{
		siteTitle: siteTitle,
		mode:      mode,
		viewsFS:   viewsFS,
		catalog:   catalog,
		views:     views,
	}, nil
}

// Live reports whether pages are rendered per request.
func (p *Pages) Live() bool {
	return p.mode == ModeLive
}

func (p *Pages) data(browserTitle string) *pageData {
	return &pageData{
		BrowserTitle: browserTitle,
		SiteTitle:    p.siteTitle,
		Live:         p.Live(),
	}
}

func (p *Pages) render(v *Views, page string, data *pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Render(&buf, page, data); err != nil {
		return nil, fmt.Errorf("site: render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

func (p *Pages) renderRoot(v *Views) ([]byte, error) {
	return p.render(v, pageRoot, p.data(p.siteTitle+" | Portfolio"))
}

func (p *Pages) renderBrowse(v *Views, lib *library.Library) ([]byte, error) {
	d := p.data(p.siteTitle + " | Articles")
	d.Articles = lib.Summaries()
	return p.render(v, pageArticles, d)
}

func (p *Pages) renderArticle(v *Views, a *library.Article) ([]byte, error) {
	d := p.data(p.siteTitle + " | " + a.Title)
	s := a.Summary()
	d.Article = &s
	d.Body = template.HTML(a.Body)
	return p.render(v, pageArticle, d)
}

// prerender builds the render cache for lib.
func (p *Pages) prerender(lib *library.Library) (*renderCache, error) {
	c := &renderCache{lib: lib, articles: make(map[string][]byte, lib.Len())}
	var err error
	if c.root, err = p.renderRoot(p.views); err != nil {
		return nil, err
	}
	if c.browse, err = p.renderBrowse(p.views, lib); err != nil {
		return nil, err
	}
	for _, a := range lib.Articles() {
		if c.articles[a.Slug()], err = p.renderArticle(p.views, a); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// cached returns the render cache for the current snapshot, rebuilding it
// when the catalog has moved on.
func (p *Pages) cached() (*renderCache, error) {
	lib := p.catalog.Current()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cache != nil && p.cache.lib == lib {
		return p.cache, nil
	}
	c, err := p.prerender(lib)
	if err != nil {
		return nil, err
	}
	p.cache = c
	return c, nil
}

// Warm prerenders the current snapshot. It is a no-op in live mode.
func (p *Pages) Warm() error {
	if p.Live() {
		return nil
	}
	_, err := p.cached()
	return err
}

// liveViews re-parses the templates from disk.
func (p *Pages) liveViews() (*Views, error) {
	return LoadViews(p.viewsFS)
}

// Root returns the landing page.
func (p *Pages) Root() ([]byte, error) {
	if p.Live() {
		v, err := p.liveViews()
		if err != nil {
			return nil, err
		}
		return p.renderRoot(v)
	}
	c, err := p.cached()
	if err != nil {
		return nil, err
	}
	return c.root, nil
}

// Browse returns the article list page.
func (p *Pages) Browse() ([]byte, error) {
	if p.Live() {
		v, err := p.liveViews()
		if err != nil {
			return nil, err
		}
		return p.renderBrowse(v, p.catalog.Current())
	}
	c, err := p.cached()
	if err != nil {
		return nil, err
	}
	return c.browse, nil
}

// Article returns the page for slug. ok is false when no such article is
// published.
func (p *Pages) Article(slug string) (page []byte, ok bool, err error) {
	if p.Live() {
		a, found := p.catalog.Current().Get(slug)
		if !found {
			return nil, false, nil
		}
		v, err := p.liveViews()
		if err != nil {
			return nil, true, err
		}
		page, err = p.renderArticle(v, a)
		return page, true, err
	}
	c, err := p.cached()
	if err != nil {
		return nil, false, err
	}
	page, ok = c.articles[slug]
	return page, ok, nil
}

// Search renders the search page for query and its hits.
func (p *Pages) Search(query string, hits []models.SearchHit) ([]byte, error) {
	v := p.views
	if p.Live() {
		var err error
		if v, err = p.liveViews(); err != nil {
			return nil, err
		}
	}
	d := p.data(p.siteTitle + " | Search")
	d.Query = query
	d.Results = hits
	return p.render(v, pageSearch, d)
}
