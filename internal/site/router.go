package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	// PublicDir is served under /public/ when set.
	PublicDir string
	// AuthEnabled and AuthToken protect /mcp.
	AuthEnabled bool
	AuthToken   string
	// Events is mounted at GET /events when non-nil.
	Events http.Handler
	// MCP is mounted at /mcp when non-nil.
	MCP http.Handler
}

// NewRouter creates a chi router with every site route mounted.
func NewRouter(h *Handler, rc RouterConfig) chi.Router {
	r := chi.NewRouter()

	// Health check endpoints.
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	// Pages.
	r.Get("/", h.Root)
	r.Get("/articles", h.Browse)
	r.Get("/articles/{slug}", h.Article)
	r.Get("/search", h.SearchPage)

	if rc.PublicDir != "" {
		r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(rc.PublicDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", h.ListArticles)
		r.Get("/articles/{slug}", h.GetArticle)
		r.Get("/search", h.SearchAPI)
	})

	if rc.Events != nil {
		r.Get("/events", rc.Events.ServeHTTP)
	}

	if rc.MCP != nil {
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(rc.AuthEnabled, rc.AuthToken))
			r.Handle("/mcp", rc.MCP)
		})
	}

	return r
}
