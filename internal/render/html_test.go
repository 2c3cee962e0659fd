package render

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"paperlens/internal/docmodel"
	"paperlens/internal/docpack"
	"paperlens/internal/omml"
)

func testPkg() *docpack.Package {
	return &docpack.Package{
		Rels:  map[string]string{"rId1": "media/image1.png"},
		Media: map[string][]byte{"word/media/image1.png": []byte{0x89, 0x50, 0x4e, 0x47}},
	}
}

func textPara(style string, runs ...docmodel.Inline) docmodel.Block {
	return docmodel.Block{
		Kind:      docmodel.BlockParagraph,
		Paragraph: &docmodel.Paragraph{Style: style, Inlines: runs},
	}
}

func textRun(s string) docmodel.Inline {
	return docmodel.Inline{Kind: docmodel.InlineText, Text: s}
}

func TestFragment_HeadingStyles(t *testing.T) {
	cases := []struct {
		style string
		want  string
	}{
		{"Heading 1", "<h1>title</h1>"},
		{"heading 3", "<h3>title</h3>"},
		{"Title", "<h1>title</h1>"},
		{"Subtitle", "<h2>title</h2>"},
		{"Normal", "<p>title</p>"},
		{"", "<p>title</p>"},
	}
	for _, c := range cases {
		r := New(testPkg(), DefaultOptions())
		doc := &docmodel.Document{Blocks: []docmodel.Block{textPara(c.style, textRun("title"))}}
		if got := r.Fragment(doc); got != c.want {
			t.Errorf("style %q: expected %q, got %q", c.style, got, c.want)
		}
	}
}

func TestFragment_HeadingDropsInlineDecoration(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{textPara("Heading 1",
		docmodel.Inline{Kind: docmodel.InlineText, Text: "bold title", Format: docmodel.RunFormat{Bold: true}})}}
	if got := r.Fragment(doc); got != "<h1>bold title</h1>" {
		t.Errorf("expected plain heading text, got %q", got)
	}
}

func TestFragment_HeadingKeepsImageOnlyContent(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("Heading 1", docmodel.Inline{Kind: docmodel.InlineImage, RelID: "rId1"}),
	}}
	got := r.Fragment(doc)
	if !strings.HasPrefix(got, "<h1><img ") || !strings.HasSuffix(got, "</h1>") {
		t.Fatalf("expected image wrapped in heading tag, got %q", got)
	}
	if r.Stats().Images != 1 {
		t.Errorf("expected 1 image counted, got %d", r.Stats().Images)
	}
}

func TestFragment_HeadingKeepsMathOnlyContent(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("Heading 2", docmodel.Inline{Kind: docmodel.InlineMath, LaTeX: "x+y"}),
	}}
	if got := r.Fragment(doc); got != `<h2>\(x+y\)</h2>` {
		t.Errorf("expected math wrapped in heading tag, got %q", got)
	}
}

func TestFragment_EmptyHeadingDropped(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("Heading 1", docmodel.Inline{Kind: docmodel.InlineImage, RelID: "rId404"}),
	}}
	if got := r.Fragment(doc); got != "" {
		t.Errorf("expected heading with no renderable content dropped, got %q", got)
	}
}

func TestFragment_TextEscaped(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{textPara("", textRun("a < b & c"))}}
	got := r.Fragment(doc)
	if got != "<p>a &lt; b &amp; c</p>" {
		t.Errorf("expected escaped text, got %q", got)
	}
}

func TestFragment_FormattingNesting(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{textPara("",
		docmodel.Inline{Kind: docmodel.InlineText, Text: "x", Format: docmodel.RunFormat{Bold: true, Italic: true}})}}
	if got := r.Fragment(doc); got != "<p><em><strong>x</strong></em></p>" {
		t.Errorf("expected bold innermost, got %q", got)
	}
}

func TestFragment_InlineVsDisplayMath(t *testing.T) {
	r := New(testPkg(), Options{InlineMathMaxLen: 50})
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("", docmodel.Inline{Kind: docmodel.InlineMath, LaTeX: `x+y`}),
		textPara("", docmodel.Inline{Kind: docmodel.InlineMath, LaTeX: `\frac{a}{b}`}),
		textPara("", docmodel.Inline{Kind: docmodel.InlineMath, LaTeX: strings.Repeat("x", 51)}),
		textPara("", docmodel.Inline{Kind: docmodel.InlineMath, LaTeX: `\begin{matrix} a \end{matrix}`}),
	}}
	got := r.Fragment(doc)

	if !strings.Contains(got, `<p>\(x+y\)</p>`) {
		t.Errorf("expected short math inline, got %q", got)
	}
	if !strings.Contains(got, `<p>\[\frac{a}{b}\]</p>`) {
		t.Errorf("expected fraction display, got %q", got)
	}
	stats := r.Stats()
	if stats.InlineMath != 1 {
		t.Errorf("expected 1 inline math, got %d", stats.InlineMath)
	}
	if stats.DisplayMath != 3 {
		t.Errorf("expected 3 display math, got %d", stats.DisplayMath)
	}
}

func TestFragment_PlaceholderRendersAsText(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("", docmodel.Inline{Kind: docmodel.InlineMath, LaTeX: omml.Placeholder}),
	}}
	got := r.Fragment(doc)
	if strings.Contains(got, `\(`) || strings.Contains(got, `\[`) {
		t.Errorf("placeholder must not render as a formula: %q", got)
	}
	if !strings.Contains(got, "[Math Formula]") {
		t.Errorf("expected placeholder text, got %q", got)
	}
	if s := r.Stats(); s.InlineMath != 0 || s.DisplayMath != 0 {
		t.Errorf("placeholder must not count as math: %+v", s)
	}
}

func TestFragment_ImageDataURI(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("", docmodel.Inline{Kind: docmodel.InlineImage, RelID: "rId1"}),
	}}
	got := r.Fragment(doc)
	if !strings.Contains(got, `src="data:image/png;base64,`) {
		t.Errorf("expected data uri, got %q", got)
	}
	if r.Stats().Images != 1 {
		t.Errorf("expected 1 image counted, got %d", r.Stats().Images)
	}
}

func TestFragment_UnresolvableImageDropped(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("", docmodel.Inline{Kind: docmodel.InlineImage, RelID: "rId404"}, textRun("x")),
	}}
	got := r.Fragment(doc)
	if strings.Contains(got, "<img") {
		t.Errorf("expected no img tag, got %q", got)
	}
	if r.Stats().Images != 0 {
		t.Errorf("expected 0 images counted, got %d", r.Stats().Images)
	}
}

func TestFragment_TableCellBoldNoTrailingBreak(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	cell := docmodel.Cell{Blocks: []docmodel.Block{textPara("",
		docmodel.Inline{Kind: docmodel.InlineText, Text: "Header", Format: docmodel.RunFormat{Bold: true}})}}
	doc := &docmodel.Document{Blocks: []docmodel.Block{{
		Kind:  docmodel.BlockTable,
		Table: &docmodel.Table{Rows: []docmodel.Row{{Cells: []docmodel.Cell{cell}}}},
	}}}
	got := r.Fragment(doc)
	if !strings.Contains(got, "<td><strong>Header</strong></td>") {
		t.Errorf("expected bold cell without trailing break, got %q", got)
	}
}

func TestFragment_TableCellMultiParagraph(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	cell := docmodel.Cell{Blocks: []docmodel.Block{
		textPara("", textRun("one")),
		textPara("", textRun("two")),
	}}
	doc := &docmodel.Document{Blocks: []docmodel.Block{{
		Kind:  docmodel.BlockTable,
		Table: &docmodel.Table{Rows: []docmodel.Row{{Cells: []docmodel.Cell{cell}}}},
	}}}
	got := r.Fragment(doc)
	if !strings.Contains(got, "<td>one<br/>two</td>") {
		t.Errorf("expected break between cell paragraphs only, got %q", got)
	}
}

func TestFragment_WellFormedHTML(t *testing.T) {
	r := New(testPkg(), DefaultOptions())
	doc := &docmodel.Document{Blocks: []docmodel.Block{
		textPara("Heading 1", textRun("第一章 绪论")),
		textPara("", textRun("正文 "), docmodel.Inline{Kind: docmodel.InlineMath, LaTeX: "x"}),
		{Kind: docmodel.BlockTable, Table: &docmodel.Table{Rows: []docmodel.Row{
			{Cells: []docmodel.Cell{{Blocks: []docmodel.Block{textPara("", textRun("cell"))}}}},
		}}},
	}}
	fragment := r.Fragment(doc)

	root, err := html.Parse(strings.NewReader(Page("测试", fragment)))
	if err != nil {
		t.Fatalf("output does not parse as html: %v", err)
	}
	var tags []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tags = append(tags, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)

	for _, want := range []string{"h1", "p", "table", "tr", "td", "script", "style"} {
		found := false
		for _, tag := range tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected rendered page to contain <%s>", want)
		}
	}
}

func TestPage_EscapesTitle(t *testing.T) {
	out := Page(`<script>`, "<p>x</p>")
	if strings.Contains(out, "<title><script></title>") {
		t.Error("expected title to be escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("expected escaped title in output")
	}
}

func TestPage_ContainsMathJaxConfig(t *testing.T) {
	out := Page("t", "<p>x</p>")
	if !strings.Contains(out, "MathJax") || !strings.Contains(out, "tex-mml-chtml.js") {
		t.Error("expected MathJax loader in page")
	}
}
