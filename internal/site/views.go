package site

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates/*.html
var embedded embed.FS

// Page names.
const (
	pageArticles = "articles"
	pageArticle  = "article"
	pageSearch   = "search"
	pageRoot     = "root"
)

// DefaultViews returns the built-in templates.
func DefaultViews() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// overlayFS serves files from primary and falls back to fallback for names
// primary does not have.
type overlayFS struct {
	primary, fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return f, err
}

// ViewsFS returns the template file system for dir. Files missing from dir
// come from the built-in templates; an empty dir means built-ins only.
func ViewsFS(dir string) fs.FS {
	if dir == "" {
		return DefaultViews()
	}
	return overlayFS{primary: os.DirFS(dir), fallback: DefaultViews()}
}

var funcs = template.FuncMap{
	"highlight": highlight,
}

// highlight escapes a search snippet but keeps the <b> match markers.
func highlight(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "&lt;b&gt;", "<b>")
	escaped = strings.ReplaceAll(escaped, "&lt;/b&gt;", "</b>")
	return template.HTML(escaped)
}

// Views is a parsed set of page templates plus the static root body.
type Views struct {
	pages map[string]*template.Template
	root  template.HTML
}

// LoadViews parses base.html with each page template from fsys. root.html
// is not a template; it is inserted into the layout as is.
func LoadViews(fsys fs.FS) (*Views, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(fsys, "base.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse layout: %w", err)
	}

	v := &Views{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageArticles, pageArticle, pageSearch} {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("site: clone layout: %w", err)
		}
		if _, err := t.ParseFS(fsys, name+".html"); err != nil {
			return nil, fmt.Errorf("site: parse %s: %w", name, err)
		}
		v.pages[name] = t
	}

	root, err := fs.ReadFile(fsys, pageRoot+".html")
	if err != nil {
		return nil, fmt.Errorf("site: read root view: %w", err)
	}
	rootPage, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("site: clone layout: %w", err)
	}
	if _, err := rootPage.New("content").Parse(`{{.Body}}`); err != nil {
		return nil, fmt.Errorf("site: parse root: %w", err)
	}
	v.pages[pageRoot] = rootPage
	v.root = template.HTML(root)
	return v, nil
}

// Render executes page with data into w.
func (v *Views) Render(w io.Writer, page string, data *pageData) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("site: unknown page %q", page)
	}
	if page == pageRoot {
		data.Body = v.root
	}
	return t.ExecuteTemplate(w, "base", data)
}
