// Package render maps a walked document tree to HTML. Math fragments are
// wrapped for MathJax, images are inlined as data URIs, and tables render
// recursively.
package render

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"paperlens/internal/docmodel"
	"paperlens/internal/docpack"
	"paperlens/internal/omml"
)

// Options holds the renderer's policy constants.
type Options struct {
	// InlineMathMaxLen is the fragment length (in runes) above which math
	// renders in display mode.
	InlineMathMaxLen int
}

// DefaultOptions returns the renderer defaults.
func DefaultOptions() Options {
	return Options{InlineMathMaxLen: 50}
}

// Stats counts what one rendering pass emitted.
type Stats struct {
	Images      int `json:"images"`
	InlineMath  int `json:"inline_math"`
	DisplayMath int `json:"display_math"`
}

// Renderer converts one document; it owns per-document counters and must
// not be shared across documents.
type Renderer struct {
	pkg   *docpack.Package
	opts  Options
	stats Stats
}

func New(pkg *docpack.Package, opts Options) *Renderer {
	if opts.InlineMathMaxLen <= 0 {
		opts.InlineMathMaxLen = DefaultOptions().InlineMathMaxLen
	}
	return &Renderer{pkg: pkg, opts: opts}
}

// Stats returns the counters accumulated so far.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// headingTags maps recognized paragraph style names to heading tags.
var headingTags = map[string]string{
	"heading 1": "h1",
	"heading 2": "h2",
	"heading 3": "h3",
	"heading 4": "h4",
	"heading 5": "h5",
	"heading 6": "h6",
	"title":     "h1",
	"subtitle":  "h2",
}

// Fragment renders the document's blocks to an HTML fragment, one block
// per line.
func (r *Renderer) Fragment(doc *docmodel.Document) string {
	var parts []string
	for _, block := range doc.Blocks {
		if s := r.block(block); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func (r *Renderer) block(block docmodel.Block) string {
	switch block.Kind {
	case docmodel.BlockParagraph:
		return r.paragraph(block.Paragraph)
	case docmodel.BlockTable:
		return r.table(block.Table)
	}
	return ""
}

func (r *Renderer) paragraph(p *docmodel.Paragraph) string {
	tag := "p"
	if t, ok := headingTags[strings.ToLower(p.Style)]; ok {
		tag = t
	}

	// Headings flatten to their plain text; inline decoration is dropped.
	// A heading with no text at all keeps its inline content, so an image
	// or formula styled as a heading still reaches the output.
	if tag != "p" {
		if text := p.Text(); text != "" {
			return fmt.Sprintf("<%s>%s</%s>", tag, html.EscapeString(text), tag)
		}
		content := r.inlines(p.Inlines)
		if content == "" {
			return ""
		}
		return fmt.Sprintf("<%s>%s</%s>", tag, content, tag)
	}

	content := r.inlines(p.Inlines)
	if content == "" {
		return ""
	}
	return "<p>" + content + "</p>"
}

func (r *Renderer) inlines(inlines []docmodel.Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		switch in.Kind {
		case docmodel.InlineText:
			b.WriteString(formatted(in.Text, in.Format))
		case docmodel.InlineMath:
			b.WriteString(r.math(in.LaTeX))
		case docmodel.InlineImage:
			b.WriteString(r.image(in.RelID))
		}
	}
	return b.String()
}

// formatted escapes a text run and nests formatting tags around it.
func formatted(text string, f docmodel.RunFormat) string {
	content := html.EscapeString(text)
	if f.Bold {
		content = "<strong>" + content + "</strong>"
	}
	if f.Italic {
		content = "<em>" + content + "</em>"
	}
	if f.Underline {
		content = "<u>" + content + "</u>"
	}
	if f.Strike {
		content = "<s>" + content + "</s>"
	}
	if f.Superscript {
		content = "<sup>" + content + "</sup>"
	}
	if f.Subscript {
		content = "<sub>" + content + "</sub>"
	}
	return content
}

// displayCommands force display mode regardless of fragment length.
var displayCommands = []string{`\frac`, `\sum`, `\int`, `\prod`}

// math wraps a transpiled fragment in inline or display delimiters. The
// conversion placeholder degrades to escaped text instead of a formula.
func (r *Renderer) math(latex string) string {
	if latex == "" {
		return ""
	}
	if latex == omml.Placeholder {
		return html.EscapeString(latex)
	}
	if r.isDisplay(latex) {
		r.stats.DisplayMath++
		return `\[` + latex + `\]`
	}
	r.stats.InlineMath++
	return `\(` + latex + `\)`
}

func (r *Renderer) isDisplay(latex string) bool {
	if strings.Contains(latex, "\n") || strings.HasPrefix(strings.TrimSpace(latex), `\begin{`) {
		return true
	}
	if utf8.RuneCountInString(latex) > r.opts.InlineMathMaxLen {
		return true
	}
	for _, cmd := range displayCommands {
		if strings.Contains(latex, cmd) {
			return true
		}
	}
	return false
}

func (r *Renderer) image(relID string) string {
	asset, ok := r.pkg.Asset(relID)
	if !ok {
		return ""
	}
	r.stats.Images++
	src := "data:" + asset.MIME + ";base64," + base64.StdEncoding.EncodeToString(asset.Data)
	return fmt.Sprintf(`<img src="%s" alt="Image" />`, src)
}

func (r *Renderer) table(t *docmodel.Table) string {
	var rows strings.Builder
	for _, row := range t.Rows {
		rows.WriteString("<tr>")
		for _, cell := range row.Cells {
			rows.WriteString("<td>")
			rows.WriteString(r.cell(cell))
			rows.WriteString("</td>")
		}
		rows.WriteString("</tr>")
	}
	return "<table border='1'>" + rows.String() + "</table>"
}

// cell renders a cell's blocks, replacing paragraph wrappers with trailing
// line breaks and trimming the break after the last item.
func (r *Renderer) cell(cell docmodel.Cell) string {
	var parts []string
	for _, block := range cell.Blocks {
		s := r.block(block)
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, "<p>") {
			s = strings.TrimPrefix(s, "<p>")
			s = strings.Replace(s, "</p>", "<br/>", 1)
		}
		parts = append(parts, s)
	}
	if n := len(parts); n > 0 {
		parts[n-1] = strings.TrimSuffix(parts[n-1], "<br/>")
	}
	return strings.Join(parts, "")
}
