// Package walker turns a document package's body XML into an ordered,
// immutable block/inline value tree. One Walk owns all per-walk state
// (notably the image de-duplication set), so concurrent walks of
// different documents never interfere.
package walker

import (
	"fmt"

	"github.com/beevik/etree"

	"paperlens/internal/docmodel"
	"paperlens/internal/docpack"
	"paperlens/internal/omml"
)

// Walk parses the package's main document part and returns its block
// sequence in document order. Failure to parse the XML is fatal; an
// unresolvable image reference is not.
func Walk(pkg *docpack.Package) (*docmodel.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(pkg.DocumentXML); err != nil {
		return nil, fmt.Errorf("parse document xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document xml has no root element")
	}
	body := childByTag(root, "body")
	if body == nil {
		return nil, fmt.Errorf("document xml has no body element")
	}

	w := &walk{pkg: pkg, seenImages: make(map[string]bool)}
	return &docmodel.Document{Blocks: w.blocks(body)}, nil
}

// walk holds the state of one traversal.
type walk struct {
	pkg        *docpack.Package
	seenImages map[string]bool // relationship ids already emitted this walk
}

// blocks converts the ordered children of a body or table cell. The block
// index is the child's ordinal position, counted even for paragraphs that
// end up empty and excluded.
func (w *walk) blocks(parent *etree.Element) []docmodel.Block {
	var out []docmodel.Block
	for i, child := range parent.ChildElements() {
		switch child.Tag {
		case "p":
			para := w.paragraph(child)
			if !para.HasContent() {
				continue
			}
			out = append(out, docmodel.Block{
				Kind:      docmodel.BlockParagraph,
				Index:     i,
				Paragraph: para,
			})
		case "tbl":
			out = append(out, docmodel.Block{
				Kind:  docmodel.BlockTable,
				Index: i,
				Table: w.table(child),
			})
		}
	}
	return out
}

func (w *walk) paragraph(p *etree.Element) *docmodel.Paragraph {
	para := &docmodel.Paragraph{Style: w.styleName(p)}

	// Paragraph-level drawings come first: images hanging directly off the
	// paragraph (not nested in a run) emit before any inline content. The
	// run pass below handles run-nested drawings; the shared seen-set keeps
	// an id referenced from both positions to a single emission.
	for _, child := range p.ChildElements() {
		if child.Tag == "r" {
			continue
		}
		para.Inlines = append(para.Inlines, w.images(child)...)
	}

	para.Inlines = append(para.Inlines, w.inlineContent(p)...)
	return para
}

// inlineContent walks element children in encounter order, emitting runs
// and math expressions and recursing through wrappers (hyperlinks, smart
// tags, oMathPara) that may nest them.
func (w *walk) inlineContent(el *etree.Element) []docmodel.Inline {
	var out []docmodel.Inline
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "r":
			out = append(out, w.run(child, docmodel.RunFormat{})...)
		case "oMath":
			out = append(out, docmodel.Inline{
				Kind:  docmodel.InlineMath,
				LaTeX: omml.FromElement(child),
			})
		case "pPr", "rPr":
			// Property containers hold no content.
		default:
			out = append(out, w.inlineContent(child)...)
		}
	}
	return out
}

// run emits the run's images, then its children in order. Formatting flags
// resolve from this run's properties when present, else from the nearest
// enclosing run that set them.
func (w *walk) run(r *etree.Element, inherited docmodel.RunFormat) []docmodel.Inline {
	out := w.images(r)

	format := inherited
	if rpr := childByTag(r, "rPr"); rpr != nil {
		format = runFormat(rpr)
	}

	for _, child := range r.ChildElements() {
		switch child.Tag {
		case "t":
			if text := child.Text(); text != "" {
				out = append(out, docmodel.Inline{
					Kind:   docmodel.InlineText,
					Text:   text,
					Format: format,
				})
			}
		case "oMath":
			out = append(out, docmodel.Inline{
				Kind:  docmodel.InlineMath,
				LaTeX: omml.FromElement(child),
			})
		case "rPr", "drawing", "pict":
			// Properties are consumed above; drawings were emitted by images.
		default:
			out = append(out, w.run(child, format)...)
		}
	}
	return out
}

// images finds every embedded image reference under el and emits each
// relationship id at most once per walk. Ids that do not resolve to a
// package asset are skipped and stay eligible, matching the non-fatal
// asset-resolution contract.
func (w *walk) images(el *etree.Element) []docmodel.Inline {
	var out []docmodel.Inline
	for _, relID := range embeddedImageIDs(el) {
		if w.seenImages[relID] {
			continue
		}
		if _, ok := w.pkg.Asset(relID); !ok {
			continue
		}
		w.seenImages[relID] = true
		out = append(out, docmodel.Inline{Kind: docmodel.InlineImage, RelID: relID})
	}
	return out
}

func (w *walk) table(tbl *etree.Element) *docmodel.Table {
	table := &docmodel.Table{}
	for _, rowEl := range tbl.ChildElements() {
		if rowEl.Tag != "tr" {
			continue
		}
		row := docmodel.Row{}
		for _, cellEl := range rowEl.ChildElements() {
			if cellEl.Tag != "tc" {
				continue
			}
			row.Cells = append(row.Cells, docmodel.Cell{Blocks: w.blocks(cellEl)})
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func (w *walk) styleName(p *etree.Element) string {
	ppr := childByTag(p, "pPr")
	if ppr == nil {
		return ""
	}
	style := childByTag(ppr, "pStyle")
	if style == nil {
		return ""
	}
	return w.pkg.StyleName(localAttr(style, "val"))
}

// runFormat reads formatting flags from a w:rPr element. Sizes arrive in
// half-points.
func runFormat(rpr *etree.Element) docmodel.RunFormat {
	var f docmodel.RunFormat
	for _, child := range rpr.ChildElements() {
		switch child.Tag {
		case "b":
			f.Bold = !isOff(localAttr(child, "val"))
		case "i":
			f.Italic = !isOff(localAttr(child, "val"))
		case "u":
			f.Underline = localAttr(child, "val") != "none"
		case "strike":
			f.Strike = !isOff(localAttr(child, "val"))
		case "vertAlign":
			switch localAttr(child, "val") {
			case "superscript":
				f.Superscript = true
			case "subscript":
				f.Subscript = true
			}
		case "sz":
			if hp := parseFloat(localAttr(child, "val")); hp > 0 {
				f.FontPt = hp / 2
			}
		}
	}
	return f
}

func isOff(val string) bool {
	return val == "false" || val == "0" || val == "off"
}

func parseFloat(s string) float64 {
	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		return 0
	}
	return v
}

// embeddedImageIDs collects the blip embed ids of every image reference
// reachable under el, in document order.
func embeddedImageIDs(el *etree.Element) []string {
	var ids []string
	var findBlips func(*etree.Element)
	findBlips = func(e *etree.Element) {
		if e.Tag == "blip" {
			if id := localAttr(e, "embed"); id != "" {
				ids = append(ids, id)
			}
		}
		for _, c := range e.ChildElements() {
			findBlips(c)
		}
	}
	for _, child := range el.ChildElements() {
		findBlips(child)
	}
	return ids
}

func childByTag(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func localAttr(el *etree.Element, name string) string {
	for _, attr := range el.Attr {
		if attr.Key == name {
			return attr.Value
		}
	}
	return ""
}
