// Package markdown turns Markdown structure events into HTML.
//
// The renderer consumes a stream of Event values and never looks at the
// source text, so any tokenizer that can produce the events below can feed
// it. Parser adapts goldmark to this stream.
package markdown

// Event is one structural token of a Markdown document.
type Event interface {
	event()
}

// Tag identifies a container element opened by Start and closed by End.
type Tag interface {
	tag()
}

// Start opens a container element.
type Start struct{ Tag Tag }

// End closes the container element opened by the matching Start.
type End struct{ Tag Tag }

// Text is a run of plain text.
type Text string

// Code is an inline code span.
type Code string

// HTML is raw HTML passed through verbatim.
type HTML string

// SoftBreak is a line ending inside a paragraph.
type SoftBreak struct{}

// HardBreak is an explicit line break.
type HardBreak struct{}

// Rule is a thematic break.
type Rule struct{}

// FootnoteReference is a [^label] reference in running text.
type FootnoteReference struct{ Label string }

// TaskListMarker is the checkbox at the start of a task list item.
type TaskListMarker struct{ Checked bool }

func (Start) event()             {}
func (End) event()               {}
func (Text) event()              {}
func (Code) event()              {}
func (HTML) event()              {}
func (SoftBreak) event()         {}
func (HardBreak) event()         {}
func (Rule) event()              {}
func (FootnoteReference) event() {}
func (TaskListMarker) event()    {}

// Alignment is the text alignment of a table column.
type Alignment int

// Column alignments.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// LinkKind distinguishes how a link was written in the source.
type LinkKind int

// Link kinds.
const (
	LinkInline LinkKind = iota
	LinkAutolink
	LinkEmail
)

// Paragraph is a block of running text.
type Paragraph struct{}

// Heading is an ATX or setext heading of Level 1-6.
type Heading struct{ Level int }

// BlockQuote is a quoted block.
type BlockQuote struct{}

// CodeBlock is a fenced or indented code block. Info holds the full info
// string of a fenced block.
type CodeBlock struct {
	Fenced bool
	Info   string
}

// List is an ordered or bullet list. Start is only meaningful when Ordered.
type List struct {
	Ordered bool
	Start   int
}

// Item is a list item.
type Item struct{}

// FootnoteDefinition is the body of a [^label]: definition.
type FootnoteDefinition struct{ Label string }

// Table opens a table; Alignments has one entry per column.
type Table struct{ Alignments []Alignment }

// TableHead is the header row of a table. Cells are its direct children.
type TableHead struct{}

// TableRow is a body row of a table.
type TableRow struct{}

// TableCell is a header or body cell.
type TableCell struct{}

// Emphasis is <em>.
type Emphasis struct{}

// Strong is <strong>.
type Strong struct{}

// Strikethrough is <del>.
type Strikethrough struct{}

// Link is a hyperlink.
type Link struct {
	Kind        LinkKind
	Destination string
	Title       string
}

// Image is an inline image. Its children become the alt text.
type Image struct {
	Destination string
	Title       string
}

func (Paragraph) tag()          {}
func (Heading) tag()            {}
func (BlockQuote) tag()         {}
func (CodeBlock) tag()          {}
func (List) tag()               {}
func (Item) tag()               {}
func (FootnoteDefinition) tag() {}
func (Table) tag()              {}
func (TableHead) tag()          {}
func (TableRow) tag()           {}
func (TableCell) tag()          {}
func (Emphasis) tag()           {}
func (Strong) tag()             {}
func (Strikethrough) tag()      {}
func (Link) tag()               {}
func (Image) tag()              {}
