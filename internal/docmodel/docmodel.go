package docmodel

import "strings"

// BlockKind tags a top-level document block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
)

// InlineKind tags one unit of paragraph content.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineMath
	InlineImage
)

// Document is the immutable value tree produced by one walk of a package.
// Later stages (renderer, classifier) read it without touching the source XML.
type Document struct {
	Blocks []Block
}

// Block is a paragraph or a table, with its position in document order.
// Index counts body children as they appear in the source, so positions
// stay stable even when empty paragraphs are dropped from the output.
type Block struct {
	Kind      BlockKind
	Index     int
	Paragraph *Paragraph // set when Kind == BlockParagraph
	Table     *Table     // set when Kind == BlockTable
}

// Paragraph owns its inline content in encounter order.
type Paragraph struct {
	Style   string // resolved style name, e.g. "Heading 1" (empty if none)
	Inlines []Inline
}

// Inline is a tagged variant: a text run, a transpiled math expression,
// or an image reference.
type Inline struct {
	Kind   InlineKind
	Text   string    // InlineText
	Format RunFormat // InlineText
	LaTeX  string    // InlineMath (already transpiled)
	RelID  string    // InlineImage relationship identifier
}

// RunFormat carries the formatting flags resolved from the nearest
// enclosing run properties.
type RunFormat struct {
	Bold        bool
	Italic      bool
	Underline   bool
	Strike      bool
	Superscript bool
	Subscript   bool
	FontPt      float64 // 0 when the run does not set a size
}

// Table rows own cells; each cell owns its own block sequence, so tables
// nest by recursion.
type Table struct {
	Rows []Row
}

type Row struct {
	Cells []Cell
}

type Cell struct {
	Blocks []Block
}

// Text returns the concatenated text-run content of the paragraph,
// whitespace-trimmed. Math and image items contribute nothing.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, in := range p.Inlines {
		if in.Kind == InlineText {
			b.WriteString(in.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// HasBold reports whether any text run in the paragraph is bold.
func (p *Paragraph) HasBold() bool {
	for _, in := range p.Inlines {
		if in.Kind == InlineText && in.Format.Bold {
			return true
		}
	}
	return false
}

// MaxFontPt returns the largest explicit font size among the paragraph's
// text runs, or 0 if no run sets one.
func (p *Paragraph) MaxFontPt() float64 {
	var max float64
	for _, in := range p.Inlines {
		if in.Kind == InlineText && in.Format.FontPt > max {
			max = in.Format.FontPt
		}
	}
	return max
}

// HasContent reports whether the paragraph carries anything visible:
// non-whitespace text, a math expression, or an image.
func (p *Paragraph) HasContent() bool {
	for _, in := range p.Inlines {
		switch in.Kind {
		case InlineMath, InlineImage:
			return true
		case InlineText:
			if strings.TrimSpace(in.Text) != "" {
				return true
			}
		}
	}
	return false
}
