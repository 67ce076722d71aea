// Package site serves the blog over HTTP: HTML pages, static files, a JSON
// API and search.
package site

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/models"
)

// Searcher runs full-text queries over published articles.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// Handler holds the page and API route handlers.
type Handler struct {
	pages    *Pages
	catalog  Catalog
	searcher Searcher
}

// NewHandler creates a new Handler. searcher may be nil, in which case
// search endpoints answer 503.
func NewHandler(pages *Pages, catalog Catalog, searcher Searcher) *Handler {
	return &Handler{pages: pages, catalog: catalog, searcher: searcher}
}

func (h *Handler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("page render failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Root()
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// Browse handles GET /articles.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Browse()
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// Article handles GET /articles/{slug}. Unknown slugs get the browse page
// with a 404 status.
func (h *Handler) Article(w http.ResponseWriter, r *http.Request) {
	page, ok, err := h.pages.Article(chi.URLParam(r, "slug"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	if !ok {
		browse, err := h.pages.Browse()
		if err != nil {
			h.pageError(w, r, err)
			return
		}
		writeHTML(w, http.StatusNotFound, browse)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

func (h *Handler) search(r *http.Request) (string, []models.SearchHit, error) {
	q := r.URL.Query().Get("q")
	if q == "" {
		return "", nil, nil
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.searcher.Search(q, limit)
	if err != nil {
		return q, nil, err
	}
	hits := make([]models.SearchHit, 0, len(results))
	lib := h.catalog.Current()
	for _, res := range results {
		a, ok := lib.Get(res.Slug)
		if !ok {
			continue // index lags behind the library
		}
		hits = append(hits, models.SearchHit{
			Slug:    res.Slug,
			Title:   res.Title,
			Snippet: res.Snippet,
			URL:     a.URL(),
		})
	}
	return q, hits, nil
}

// SearchPage handles GET /search.
func (h *Handler) SearchPage(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		http.Error(w, "search unavailable", http.StatusServiceUnavailable)
		return
	}
	q, hits, err := h.search(r)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	page, err := h.pages.Search(q, hits)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// ListArticles handles GET /api/articles.
func (h *Handler) ListArticles(w http.ResponseWriter, _ *http.Request) {
	lib := h.catalog.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"articles": lib.Summaries(),
		"total":    lib.Len(),
	})
}

// GetArticle handles GET /api/articles/{slug}. ?source=1 adds the Markdown
// source to the response.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	a, ok := h.catalog.Current().Get(slug)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	withSource, _ := strconv.ParseBool(r.URL.Query().Get("source"))
	writeJSON(w, http.StatusOK, a.Detail(withSource))
}

// SearchAPI handles GET /api/search.
func (h *Handler) SearchAPI(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search unavailable"))
		return
	}
	if r.URL.Query().Get("q") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	q, hits, err := h.search(r)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": hits,
	})
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	lib := h.catalog.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"articles":  lib.Len(),
		"loaded_at": lib.LoadedAt(),
	})
}
