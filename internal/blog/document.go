// Package blog parses article files into rendered documents.
//
// An article file is plain text: an optional numeric format version, the
// title, the publication date as M/D/YYYY, then a Markdown body.
package blog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/quire/internal/markdown"
)

// CurrentVersion is the newest header format. Version 0 has a title and a
// date.
const CurrentVersion = 0

// Document is a parsed article. It is read-only once returned.
type Document struct {
	Version  uint32
	Title    string
	Date     Date
	Source   string // Markdown body
	Body     string // rendered HTML
	ReadTime int    // minutes
}

// ReadTimeLabel returns the read time as shown on pages, e.g. "4 min read".
func (d *Document) ReadTimeLabel() string {
	return strconv.Itoa(d.ReadTime) + " min read"
}

// Parser builds Documents. It is safe for concurrent use.
type Parser struct {
	versionHeader  bool
	markdown       *markdown.Parser
	wordsPerMinute int
}

// Option configures a Parser.
type Option func(*Parser)

// WithVersionHeader makes the first line of every file a required format
// version number.
func WithVersionHeader(enabled bool) Option {
	return func(p *Parser) {
		p.versionHeader = enabled
	}
}

// WithMarkdown sets the Markdown tokenizer used for bodies.
func WithMarkdown(md *markdown.Parser) Option {
	return func(p *Parser) {
		p.markdown = md
	}
}

// WithWordsPerMinute sets the reading speed used for ReadTime.
func WithWordsPerMinute(n int) Option {
	return func(p *Parser) {
		p.wordsPerMinute = n
	}
}

// NewParser returns a Parser. By default the header has no version line.
func NewParser(opts ...Option) *Parser {
	p := &Parser{wordsPerMinute: DefaultWordsPerMinute}
	for _, opt := range opts {
		opt(p)
	}
	if p.markdown == nil {
		p.markdown = markdown.NewParser()
	}
	return p
}

var defaultParser = NewParser()

// Parse reads the file at path with the default parser.
func Parse(path string) (*Document, error) {
	return defaultParser.Parse(path)
}

// Parse reads the file at path and builds its Document. The file is read
// exactly once.
func (p *Parser) Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("%w: %w", ErrPathNotReadable, err)}
	}
	return p.ParseBytes(path, data)
}

// ParseBytes builds a Document from file contents. name is only used in
// errors.
func (p *Parser) ParseBytes(name string, data []byte) (*Document, error) {
	var body strings.Builder
	doc, err := p.WriteHTML(&body, name, data)
	if err != nil {
		return nil, err
	}
	doc.Body = body.String()
	return doc, nil
}

// WriteHTML parses the header of data and streams the rendered body to w
// instead of keeping it; the returned Document has an empty Body. A failed
// write is reported as ErrRender.
func (p *Parser) WriteHTML(w io.Writer, name string, data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, &Error{Path: name, Err: fmt.Errorf("%w: not valid UTF-8", ErrPathNotReadable)}
	}
	doc, err := p.parseHeader(string(data))
	if err != nil {
		return nil, &Error{Path: name, Err: err}
	}
	if err := p.markdown.WriteHTML(w, []byte(doc.Source)); err != nil {
		return nil, &Error{Path: name, Err: fmt.Errorf("%w: %w", ErrRender, err)}
	}
	return doc, nil
}

// parseHeader splits text into the header fields and the Markdown source.
func (p *Parser) parseHeader(text string) (*Document, error) {
	lines := splitLines(text)
	doc := &Document{}

	if p.versionHeader {
		if len(lines) == 0 {
			return nil, ErrMissingVersion
		}
		v, err := strconv.ParseUint(lines[0], 10, 32)
		if err != nil {
			return nil, ErrInvalidVersion
		}
		doc.Version = uint32(v)
		lines = lines[1:]
	}

	if len(lines) == 0 {
		return nil, ErrMissingTitle
	}
	doc.Title = lines[0]
	lines = lines[1:]

	if len(lines) == 0 {
		return nil, ErrMissingDate
	}
	date, err := ParseDate(lines[0])
	if err != nil {
		return nil, err
	}
	doc.Date = date
	lines = lines[1:]

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	doc.Source = sb.String()
	doc.ReadTime = ReadTime(doc.Source, p.wordsPerMinute)
	return doc, nil
}

// splitLines splits on \n, drops a trailing \r from each line and does not
// produce an empty final line for text ending in a newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
