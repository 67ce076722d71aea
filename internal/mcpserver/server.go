// Package mcpserver exposes the blog to LLM clients over the Model Context
// Protocol, on stdio or mounted into the HTTP router.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/library"
	"github.com/starford/quire/internal/storage"
)

const formatURI = "quire://article-format"

// Searcher runs full-text queries over published articles.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// Server wraps the MCP server with the blog tools.
type Server struct {
	mcp       *server.MCPServer
	catalog   *library.Catalog
	store     storage.Provider
	parser    *blog.Parser
	searcher  Searcher
	assetsDir string
	assetsURL string
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithSearcher enables the search_articles tool.
func WithSearcher(s Searcher) Option {
	return func(srv *Server) {
		srv.searcher = s
	}
}

// WithAssets enables the upload_asset tool. Files are stored in dir and
// referenced under urlPrefix.
func WithAssets(dir, urlPrefix string) Option {
	return func(srv *Server) {
		srv.assetsDir = dir
		srv.assetsURL = strings.TrimSuffix(urlPrefix, "/")
	}
}

// WithParser sets the parser used to validate new articles.
func WithParser(p *blog.Parser) Option {
	return func(srv *Server) {
		srv.parser = p
	}
}

// New creates a new MCP server with all tools registered.
func New(catalog *library.Catalog, store storage.Provider, version string, opts ...Option) *Server {
	s := &Server{
		catalog: catalog,
		store:   store,
		parser:  blog.NewParser(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"Quire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List published articles, newest first, with title, date, read time and URL."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of articles (0 for all)")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read a published article: metadata plus the rendered HTML body."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Article slug (file name without extension)")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("read_article_source",
		mcp.WithDescription("Read the raw article file, header lines included."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Article slug (file name without extension)")),
	), s.readArticleSource)

	s.mcp.AddTool(mcp.NewTool("create_article",
		mcp.WithDescription("Create a new article. The header is written for you; "+
			"see the "+formatURI+" resource for the Markdown that bodies support."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Slug for the new article, e.g. my-first-post")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Article title")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Markdown body")),
		mcp.WithString("date", mcp.Description("Publication date as M/D/YYYY (default today)")),
	), s.createArticle)

	s.mcp.AddTool(mcp.NewTool("get_article_format",
		mcp.WithDescription("Returns the article file format. Call this before creating articles."),
	), s.getArticleFormat)

	if s.searcher != nil {
		s.mcp.AddTool(mcp.NewTool("search_articles",
			mcp.WithDescription("Full-text search through article titles and bodies."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
		), s.searchArticles)
	}

	if s.assetsDir != "" {
		s.mcp.AddTool(mcp.NewTool("upload_asset",
			mcp.WithDescription("Store an image for use in articles. Accepts a base64 data URI or an http(s) URL. "+
				"Returns a markdownImage snippet to paste into the body."),
			mcp.WithString("url", mcp.Required(), mcp.Description("data: URI or http(s) URL of the image")),
			mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
		), s.uploadAsset)
	}

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Article Format",
			mcp.WithResourceDescription("The article file format: header lines and supported Markdown."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// Handler returns a stateless streamable HTTP handler for mounting at /mcp.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listArticles(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries := s.catalog.Current().Summaries()
	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return jsonResult(summaries)
}

func (s *Server) readArticle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, ok := s.catalog.Current().Get(slug)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	return jsonResult(a.Detail(false))
}

func (s *Server) readArticleSource(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := s.store.Resolve(slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	data, err := s.store.Read(file.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !storage.ValidSlug(slug) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid slug: %q", slug)), nil
	}

	date := blog.DateOf(s.now())
	if raw := req.GetString("date", ""); raw != "" {
		if date, err = blog.ParseDate(raw); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date %q: use M/D/YYYY", raw)), nil
		}
	}

	content := blog.Compose(title, date, body, s.parser.Versioned())
	if _, err := s.parser.ParseBytes(slug, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name := slug + ".md"
	if err := s.store.Create(name, content); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("article already exists: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.catalog.Reload(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("created %s but reload failed: %v", name, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: /articles/%s", slug)), nil
}

func (s *Server) searchArticles(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.searcher.Search(query, req.GetInt("limit", index.DefaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return jsonResult(results)
}

func (s *Server) getArticleFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ArticleFormat), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ArticleFormat,
		},
	}, nil
}
