package markdown

import (
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode"
)

type tableSection int

const (
	tableHead tableSection = iota
	tableBody
)

// htmlWriter holds the state of a single render pass. It must not be shared
// between concurrent renders.
type htmlWriter struct {
	next func() (Event, bool)
	w    io.Writer
	err  error

	// endNewline reports whether the last write ended with a newline.
	endNewline bool

	tableSection    tableSection
	tableAlignments []Alignment
	tableCellIndex  int

	// numbers maps footnote labels to their display number, assigned in
	// first-seen order across references and definitions.
	numbers map[string]int
}

// Render consumes events and writes the resulting HTML to w. The first
// write error stops consumption and is returned.
func Render(w io.Writer, events iter.Seq[Event]) error {
	next, stop := iter.Pull(events)
	defer stop()

	h := &htmlWriter{
		next:       next,
		w:          w,
		endNewline: true,
		numbers:    make(map[string]int),
	}
	return h.run()
}

// RenderString renders events into a string.
func RenderString(events iter.Seq[Event]) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, events); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// raw writes s without touching newline tracking.
func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) write(s string) {
	h.raw(s)
	if s != "" {
		h.endNewline = strings.HasSuffix(s, "\n")
	}
}

func (h *htmlWriter) newline() {
	h.endNewline = true
	h.raw("\n")
}

// block writes an opening block tag, starting a new line first when the
// previous write left the cursor mid-line.
func (h *htmlWriter) block(s string) {
	if !h.endNewline {
		s = "\n" + s
	}
	h.write(s)
}

func (h *htmlWriter) text(s string) {
	h.raw(escapeHTML(s))
	h.endNewline = strings.HasSuffix(s, "\n")
}

func (h *htmlWriter) number(label string) int {
	n, ok := h.numbers[label]
	if !ok {
		n = len(h.numbers) + 1
		h.numbers[label] = n
	}
	return n
}

func (h *htmlWriter) run() error {
	for h.err == nil {
		ev, ok := h.next()
		if !ok {
			break
		}
		switch ev := ev.(type) {
		case Start:
			h.start(ev.Tag)
		case End:
			h.end(ev.Tag)
		case Text:
			h.text(string(ev))
		case Code:
			if strings.Contains(string(ev), "\n") {
				h.write("<pre><code>")
				h.raw(escapeHTML(string(ev)))
				h.write("</code></pre>")
			} else {
				h.write("<code>")
				h.raw(escapeHTML(string(ev)))
				h.write("</code>")
			}
		case HTML:
			h.write(string(ev))
		case SoftBreak:
			h.newline()
		case HardBreak:
			h.write("<br />\n")
		case Rule:
			h.block("<hr />\n")
		case FootnoteReference:
			n := h.number(ev.Label)
			h.write(`<sup class="footnote-reference"><a href="#` + escapeHTML(ev.Label) + `">` +
				strconv.Itoa(n) + "</a></sup>")
		case TaskListMarker:
			if ev.Checked {
				h.write(`<input disabled="" type="checkbox" checked=""/>` + "\n")
			} else {
				h.write(`<input disabled="" type="checkbox"/>` + "\n")
			}
		}
	}
	return h.err
}

func (h *htmlWriter) start(tag Tag) {
	switch tag := tag.(type) {
	case Paragraph:
		h.block("<p>")
	case Heading:
		h.block("<h" + strconv.Itoa(tag.Level) + ">")
	case Table:
		h.tableAlignments = tag.Alignments
		h.write("<table>")
	case TableHead:
		h.tableSection = tableHead
		h.tableCellIndex = 0
		h.write("<thead><tr>")
	case TableRow:
		h.tableCellIndex = 0
		h.write("<tr>")
	case TableCell:
		if h.tableSection == tableHead {
			h.write("<th")
		} else {
			h.write("<td")
		}
		align := AlignNone
		if h.tableCellIndex < len(h.tableAlignments) {
			align = h.tableAlignments[h.tableCellIndex]
		}
		switch align {
		case AlignLeft:
			h.write(` align="left">`)
		case AlignCenter:
			h.write(` align="center">`)
		case AlignRight:
			h.write(` align="right">`)
		default:
			h.write(">")
		}
	case BlockQuote:
		h.block("<blockquote>\n")
	case CodeBlock:
		if !h.endNewline {
			h.newline()
		}
		lang := ""
		if tag.Fenced {
			lang = tag.Info
			if i := strings.IndexFunc(lang, unicode.IsSpace); i >= 0 {
				lang = lang[:i]
			}
		}
		if lang == "" {
			h.write("<pre><code>")
		} else {
			h.write(`<pre><code class="language-` + escapeHTML(lang) + `">`)
		}
	case List:
		switch {
		case !tag.Ordered:
			h.block("<ul>\n")
		case tag.Start == 1:
			h.block("<ol>\n")
		default:
			h.block(`<ol start="` + strconv.Itoa(tag.Start) + `">` + "\n")
		}
	case Item:
		h.block("<li>")
	case Emphasis:
		h.write("<em>")
	case Strong:
		h.write("<strong>")
	case Strikethrough:
		h.write("<del>")
	case Link:
		href := escapeHref(tag.Destination)
		if tag.Kind == LinkEmail {
			href = "mailto:" + href
		}
		h.write(`<a href="` + href)
		if tag.Title != "" {
			h.write(`" title="` + escapeHTML(tag.Title))
		}
		h.write(`">`)
	case Image:
		h.write(`<img src="` + escapeHref(tag.Destination) + `" alt="`)
		h.rawText()
		if tag.Title != "" {
			h.write(`" title="` + escapeHTML(tag.Title))
		}
		h.write(`" />`)
	case FootnoteDefinition:
		n := h.number(tag.Label)
		h.block(`<div class="footnote-definition" id="` + escapeHTML(tag.Label) +
			`"><sup class="footnote-definition-label">` + strconv.Itoa(n) + "</sup>")
	}
}

func (h *htmlWriter) end(tag Tag) {
	switch tag := tag.(type) {
	case Paragraph:
		h.write("</p>\n")
	case Heading:
		h.write("</h" + strconv.Itoa(tag.Level) + ">\n")
	case Table:
		h.write("</tbody></table>\n")
	case TableHead:
		h.write("</tr></thead><tbody>\n")
		h.tableSection = tableBody
	case TableRow:
		h.write("</tr>\n")
	case TableCell:
		if h.tableSection == tableHead {
			h.write("</th>")
		} else {
			h.write("</td>")
		}
		h.tableCellIndex++
	case BlockQuote:
		h.write("</blockquote>\n")
	case CodeBlock:
		h.write("</code></pre>\n")
	case List:
		if tag.Ordered {
			h.write("</ol>\n")
		} else {
			h.write("</ul>\n")
		}
	case Item:
		h.write("</li>\n")
	case Emphasis:
		h.write("</em>")
	case Strong:
		h.write("</strong>")
	case Strikethrough:
		h.write("</del>")
	case Link:
		h.write("</a>")
	case Image:
		// Consumed by rawText when the image opened.
	case FootnoteDefinition:
		h.write("</div>\n")
	}
}

// rawText flattens everything up to the End matching the currently open tag
// into escaped plain text, for use inside an attribute value.
func (h *htmlWriter) rawText() {
	depth := 0
	for h.err == nil {
		ev, ok := h.next()
		if !ok {
			return
		}
		switch ev := ev.(type) {
		case Start:
			depth++
		case End:
			if depth == 0 {
				return
			}
			depth--
		case Text:
			h.text(string(ev))
		case Code:
			h.text(string(ev))
		case HTML:
			h.text(string(ev))
		case SoftBreak, HardBreak, Rule:
			h.write(" ")
		case FootnoteReference:
			h.write("[" + strconv.Itoa(h.number(ev.Label)) + "]")
		case TaskListMarker:
			if ev.Checked {
				h.write("[x]")
			} else {
				h.write("[ ]")
			}
		}
	}
}
