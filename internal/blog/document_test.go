package blog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArticle(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "article.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse_TitleDateBody(t *testing.T) {
	doc, err := Parse(writeArticle(t, "My Title\n1/5/2021\n**bold**\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "My Title" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Date.String() != "January 5, 2021" {
		t.Errorf("date = %q", doc.Date.String())
	}
	if doc.Body != "<p><strong>bold</strong></p>\n" {
		t.Errorf("body = %q", doc.Body)
	}
	if doc.Source != "**bold**\n" {
		t.Errorf("source = %q", doc.Source)
	}
	if doc.Version != 0 {
		t.Errorf("version = %d", doc.Version)
	}
}

func TestParse_NoTrailingNewline(t *testing.T) {
	doc, err := Parse(writeArticle(t, "T\n3/1/2020\n\nhello"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Source != "\nhello\n" {
		t.Errorf("source = %q", doc.Source)
	}
	if doc.Body != "<p>hello</p>\n" {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParse_CRLF(t *testing.T) {
	doc, err := Parse(writeArticle(t, "Windows\r\n7/4/2019\r\ntext\r\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "Windows" || doc.Date.Year != 2019 {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Source != "text\n" {
		t.Errorf("source = %q", doc.Source)
	}
}

func TestParse_EmptyBody(t *testing.T) {
	doc, err := Parse(writeArticle(t, "Only header\n1/1/2020\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Body != "" {
		t.Errorf("body = %q, want empty", doc.Body)
	}
	if doc.ReadTime != 1 {
		t.Errorf("read time = %d, want 1", doc.ReadTime)
	}
}

func TestParse_EmptyTitleAllowed(t *testing.T) {
	doc, err := Parse(writeArticle(t, "\n1/1/2020\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "" {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestParse_HeaderErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"empty file", "", ErrMissingTitle},
		{"title only", "Title only\n", ErrMissingDate},
		{"bad date", "Title\nyesterday\nbody\n", ErrInvalidDate},
		{"month out of range", "Title\n13/1/2020\n", ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(writeArticle(t, tc.content))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if doc != nil {
				t.Errorf("expected no document, got %+v", doc)
			}
			var derr *Error
			if !errors.As(err, &derr) || !strings.HasSuffix(derr.Path, "article.md") {
				t.Errorf("error does not carry the path: %v", err)
			}
		})
	}
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.md"))
	if !errors.Is(err, ErrPathNotReadable) {
		t.Fatalf("err = %v, want ErrPathNotReadable", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("underlying cause lost: %v", err)
	}
}

func TestParseBytes_InvalidUTF8(t *testing.T) {
	_, err := NewParser().ParseBytes("bin", []byte("Title\n1/1/2020\n\xff\xfe\n"))
	if !errors.Is(err, ErrPathNotReadable) {
		t.Fatalf("err = %v, want ErrPathNotReadable", err)
	}
}

func TestParser_VersionHeader(t *testing.T) {
	p := NewParser(WithVersionHeader(true))

	doc, err := p.ParseBytes("v0", []byte("0\nVersioned\n2/3/2004\nbody\n"))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if doc.Version != 0 || doc.Title != "Versioned" || doc.Date.String() != "February 3, 2004" {
		t.Errorf("doc = %+v", doc)
	}

	if _, err := p.ParseBytes("empty", nil); !errors.Is(err, ErrMissingVersion) {
		t.Errorf("empty: err = %v, want ErrMissingVersion", err)
	}
	if _, err := p.ParseBytes("bad", []byte("one\nTitle\n1/1/2000\n")); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("bad: err = %v, want ErrInvalidVersion", err)
	}
	if _, err := p.ParseBytes("no title", []byte("3\n")); !errors.Is(err, ErrMissingTitle) {
		t.Errorf("no title: err = %v, want ErrMissingTitle", err)
	}
}

func TestParse_ReadTime(t *testing.T) {
	body := strings.Repeat("word ", 450)
	doc, err := NewParser(WithWordsPerMinute(200)).ParseBytes("long", []byte("Long\n1/1/2020\n"+body+"\n"))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if doc.ReadTime != 3 {
		t.Errorf("read time = %d, want 3", doc.ReadTime)
	}
	if doc.ReadTimeLabel() != "3 min read" {
		t.Errorf("label = %q", doc.ReadTimeLabel())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteHTML_Streams(t *testing.T) {
	var sb strings.Builder
	doc, err := NewParser().WriteHTML(&sb, "streamed", []byte("T\n1/5/2021\n*hi*\n"))
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if sb.String() != "<p><em>hi</em></p>\n" {
		t.Errorf("html = %q", sb.String())
	}
	if doc.Body != "" || doc.Title != "T" || doc.ReadTime != 1 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestWriteHTML_WriteFailure(t *testing.T) {
	_, err := NewParser().WriteHTML(failingWriter{}, "broken", []byte("T\n1/5/2021\nbody\n"))
	if !errors.Is(err, ErrRender) {
		t.Fatalf("err = %v, want ErrRender", err)
	}
	var derr *Error
	if !errors.As(err, &derr) || derr.Path != "broken" {
		t.Errorf("error does not carry the path: %v", err)
	}
}

func TestWriteHTML_HeaderErrorWritesNothing(t *testing.T) {
	var sb strings.Builder
	if _, err := NewParser().WriteHTML(&sb, "bad", []byte("Title only\n")); !errors.Is(err, ErrMissingDate) {
		t.Fatalf("err = %v, want ErrMissingDate", err)
	}
	if sb.Len() != 0 {
		t.Errorf("wrote %q", sb.String())
	}
}
