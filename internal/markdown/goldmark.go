package markdown

import (
	"io"
	"iter"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Parser tokenizes Markdown with goldmark and exposes the result as an
// Event stream. A Parser is safe for concurrent use; every call to Events
// produces an independent stream.
type Parser struct {
	md goldmark.Markdown
}

// NewParser returns a parser with every supported extension enabled:
// tables, strikethrough, task lists, footnotes and smart punctuation.
//
// Footnotes use goldmark's block and inline parsers but not its AST
// transformer, which would move definitions to the end of the document and
// drop unreferenced ones. Definitions are emitted where they appear.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithBlockParsers(
					util.Prioritized(footnoteBlockParser{extension.NewFootnoteBlockParser()}, 999),
				),
				parser.WithInlineParsers(
					util.Prioritized(extension.NewFootnoteParser(), 101),
				),
			),
		),
	}
}

var kindFootnoteAnchor = ast.NewNodeKind("FootnoteAnchor")

// footnoteAnchor marks where a footnote definition sat in the source before
// goldmark moved it into its FootnoteList.
type footnoteAnchor struct {
	ast.BaseBlock
	def *east.Footnote
}

func (n *footnoteAnchor) Kind() ast.NodeKind { return kindFootnoteAnchor }

func (n *footnoteAnchor) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Ref": string(n.def.Ref)}, nil)
}

// footnoteBlockParser leaves a footnoteAnchor in place of each definition.
type footnoteBlockParser struct {
	parser.BlockParser
}

func (b footnoteBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	if def, ok := node.(*east.Footnote); ok && node.Parent() != nil {
		node.Parent().InsertBefore(node.Parent(), node, &footnoteAnchor{def: def})
	}
	b.BlockParser.Close(node, reader, pc)
}

// Events parses source and returns its events. The AST is walked lazily,
// so a consumer that stops early stops the walk as well.
func (p *Parser) Events(source []byte) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		doc := p.md.Parser().Parse(text.NewReader(source))
		c := &converter{
			source: source,
			labels: footnoteLabels(doc),
			yield:  yield,
		}
		_ = ast.Walk(doc, c.walk)
	}
}

// WriteHTML renders source to w.
func (p *Parser) WriteHTML(w io.Writer, source []byte) error {
	return Render(w, p.Events(source))
}

// ToHTML renders source to HTML in one step.
func (p *Parser) ToHTML(source []byte) (string, error) {
	return RenderString(p.Events(source))
}

// footnoteLabels maps goldmark's footnote indexes back to source labels.
func footnoteLabels(doc ast.Node) map[int]string {
	labels := make(map[int]string)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if f, ok := n.(*east.Footnote); ok && entering {
			if f.Index > 0 {
				labels[f.Index] = string(f.Ref)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return labels
}

type converter struct {
	source  []byte
	labels  map[int]string
	yield   func(Event) bool
	stopped bool
}

func (c *converter) emit(ev Event) {
	if !c.stopped && !c.yield(ev) {
		c.stopped = true
	}
}

func (c *converter) container(entering bool, tag Tag) {
	if entering {
		c.emit(Start{Tag: tag})
	} else {
		c.emit(End{Tag: tag})
	}
}

// leaf emits a complete element on entry and skips the node's children.
func (c *converter) leaf(entering bool, evs ...Event) ast.WalkStatus {
	if entering {
		for _, ev := range evs {
			c.emit(ev)
		}
	}
	return ast.WalkSkipChildren
}

func (c *converter) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	status := c.convert(node, entering)
	if c.stopped {
		return ast.WalkStop, nil
	}
	return status, nil
}

func (c *converter) convert(node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Paragraph:
		c.container(entering, Paragraph{})
	case *ast.Heading:
		c.container(entering, Heading{Level: n.Level})
	case *ast.Blockquote:
		c.container(entering, BlockQuote{})
	case *ast.ThematicBreak:
		return c.leaf(entering, Rule{})
	case *ast.CodeBlock:
		return c.leaf(entering, Start{Tag: CodeBlock{}}, Text(c.lines(n)), End{Tag: CodeBlock{}})
	case *ast.FencedCodeBlock:
		info := ""
		if n.Info != nil {
			info = resolve(n.Info.Segment.Value(c.source))
		}
		tag := CodeBlock{Fenced: true, Info: info}
		return c.leaf(entering, Start{Tag: tag}, Text(c.lines(n)), End{Tag: tag})
	case *ast.HTMLBlock:
		html := c.lines(n)
		if n.HasClosure() {
			html += string(n.ClosureLine.Value(c.source))
		}
		return c.leaf(entering, HTML(html))
	case *ast.List:
		c.container(entering, List{Ordered: n.IsOrdered(), Start: n.Start})
	case *ast.ListItem:
		c.container(entering, Item{})
	case *ast.Text:
		if entering {
			c.text(n)
		}
	case *ast.String:
		if entering {
			switch {
			case n.IsRaw():
				c.emit(HTML(n.Value))
			case n.IsCode():
				// Typographer substitutions arrive as entity references.
				c.emit(Text(util.ResolveEntityNames(util.ResolveNumericReferences(n.Value))))
			default:
				c.emit(Text(n.Value))
			}
		}
	case *ast.CodeSpan:
		var sb strings.Builder
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if t, ok := ch.(*ast.Text); ok {
				sb.Write(t.Segment.Value(c.source))
			}
		}
		return c.leaf(entering, Code(sb.String()))
	case *ast.Emphasis:
		if n.Level >= 2 {
			c.container(entering, Strong{})
		} else {
			c.container(entering, Emphasis{})
		}
	case *ast.Link:
		c.container(entering, Link{
			Kind:        LinkInline,
			Destination: resolve(n.Destination),
			Title:       resolve(n.Title),
		})
	case *ast.AutoLink:
		tag := Link{Kind: LinkAutolink, Destination: string(n.URL(c.source))}
		if n.AutoLinkType == ast.AutoLinkEmail {
			tag.Kind = LinkEmail
		}
		return c.leaf(entering, Start{Tag: tag}, Text(n.Label(c.source)), End{Tag: tag})
	case *ast.Image:
		c.container(entering, Image{
			Destination: resolve(n.Destination),
			Title:       resolve(n.Title),
		})
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(c.source))
		}
		return c.leaf(entering, HTML(sb.String()))
	case *east.Strikethrough:
		c.container(entering, Strikethrough{})
	case *east.Table:
		aligns := make([]Alignment, len(n.Alignments))
		for i, a := range n.Alignments {
			aligns[i] = alignment(a)
		}
		c.container(entering, Table{Alignments: aligns})
	case *east.TableHeader:
		c.container(entering, TableHead{})
	case *east.TableRow:
		c.container(entering, TableRow{})
	case *east.TableCell:
		c.container(entering, TableCell{})
	case *east.TaskCheckBox:
		return c.leaf(entering, TaskListMarker{Checked: n.IsChecked})
	case *east.FootnoteLink:
		return c.leaf(entering, FootnoteReference{Label: c.labels[n.Index]})
	case *footnoteAnchor:
		if entering {
			_ = ast.Walk(n.def, c.walk)
		}
		return ast.WalkSkipChildren
	case *east.FootnoteList:
		// Definitions are emitted at their anchors.
		return ast.WalkSkipChildren
	case *east.Footnote:
		c.container(entering, FootnoteDefinition{Label: string(n.Ref)})
	}
	// Document and TextBlock carry no markup of their own.
	return ast.WalkContinue
}

func (c *converter) text(n *ast.Text) {
	value := n.Segment.Value(c.source)
	if len(value) > 0 {
		if n.IsRaw() {
			c.emit(Text(value))
		} else {
			c.emit(Text(resolve(value)))
		}
	}
	switch {
	case n.HardLineBreak():
		c.emit(HardBreak{})
	case n.SoftLineBreak():
		c.emit(SoftBreak{})
	}
}

func (c *converter) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(c.source))
	}
	return sb.String()
}

func alignment(a east.Alignment) Alignment {
	switch a {
	case east.AlignLeft:
		return AlignLeft
	case east.AlignCenter:
		return AlignCenter
	case east.AlignRight:
		return AlignRight
	default:
		return AlignNone
	}
}
