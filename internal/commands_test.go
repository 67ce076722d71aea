package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/site"
)

func TestRenderArticle_HTML(t *testing.T) {
	var buf bytes.Buffer
	err := RenderArticle(NewDefaultConfig().Blog, "stdin", []byte("T\n1/5/2021\n# Hi\n"), false, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<h1>Hi</h1>\n" {
		t.Errorf("html = %q", buf.String())
	}
}

func TestRenderArticle_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := RenderArticle(NewDefaultConfig().Blog, "stdin", []byte("Title\n12/25/2020\nhello\n"), true, &buf)
	if err != nil {
		t.Fatal(err)
	}
	var got renderedArticle
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := renderedArticle{Title: "Title", Date: "December 25, 2020", ReadTime: "1 min read", Body: "<p>hello</p>\n"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRenderArticle_VersionHeader(t *testing.T) {
	cfg := NewDefaultConfig().Blog
	cfg.VersionHeader = true
	err := RenderArticle(cfg, "stdin", []byte("Title\n1/1/2020\n"), false, &bytes.Buffer{})
	if !errors.Is(err, blog.ErrInvalidVersion) {
		t.Errorf("err = %v, want ErrInvalidVersion", err)
	}
}

func TestNewArticle(t *testing.T) {
	cfg := NewDefaultConfig().Blog
	cfg.ArticlesDir = t.TempDir()
	date := blog.Date{Month: 3, Day: 14, Year: 2024}

	path, err := NewArticle(cfg, "pi-day", "Pi Day", date)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Pi Day\n3/14/2024\n" {
		t.Errorf("content = %q", data)
	}
	if filepath.Base(path) != "pi-day.md" {
		t.Errorf("path = %q", path)
	}

	if _, err := NewArticle(cfg, "pi-day", "Again", date); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
	if _, err := NewArticle(cfg, "../up", "Up", date); err == nil {
		t.Error("expected invalid slug error")
	}
}

func TestNewApplication(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}

	cfg := NewDefaultConfig()
	app, err := newApplication([]Option{WithConfig(cfg), WithMode(site.ModeLive), WithVersion("1.2.3")})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Mode != site.ModeLive {
		t.Errorf("mode = %q, want live", cfg.App.Mode)
	}
	if app.version != "1.2.3" {
		t.Errorf("version = %q", app.version)
	}
}

type closedPipe struct{}

func (closedPipe) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestRenderArticle_WriteFailure(t *testing.T) {
	err := RenderArticle(NewDefaultConfig().Blog, "stdin", []byte("T\n1/5/2021\nbody\n"), false, closedPipe{})
	if !errors.Is(err, blog.ErrRender) || !errors.Is(err, os.ErrClosed) {
		t.Errorf("err = %v, want ErrRender wrapping os.ErrClosed", err)
	}
}
