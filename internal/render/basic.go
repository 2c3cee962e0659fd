package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"
)

// contentsMarkers are the paragraph texts that open a table-of-contents
// section. The basic renderer drops everything before the first marker so
// the degraded output starts at the document proper.
var contentsMarkers = []string{"目录", "contents", "table of contents"}

// BasicHTML renders a document through the go-docx reader, headings and
// plain paragraphs only. It is the degraded path taken when the full
// walker fails on a document the simpler reader can still open.
func BasicHTML(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("basic docx parse: %w", err)
	}

	var parts []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if level := headingLevel(para); level > 0 {
			parts = append(parts, fmt.Sprintf("<h%d>%s</h%d>", level, html.EscapeString(text), level))
		} else {
			parts = append(parts, "<p>"+html.EscapeString(text)+"</p>")
		}
	}
	return trimBeforeContents(strings.Join(parts, "\n")), nil
}

func paragraphText(p *docx.Paragraph) string {
	var b strings.Builder
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				b.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func headingLevel(p *docx.Paragraph) int {
	if p.Properties == nil || p.Properties.Style == nil {
		return 0
	}
	style := p.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

// trimBeforeContents slices the fragment from the first element whose text
// is a contents marker, when one exists.
func trimBeforeContents(fragment string) string {
	lower := strings.ToLower(fragment)
	for _, marker := range contentsMarkers {
		re := regexp.MustCompile(`<[^>]*>` + regexp.QuoteMeta(marker) + `</[^>]*>`)
		if loc := re.FindStringIndex(lower); loc != nil {
			return fragment[loc[0]:]
		}
	}
	return fragment
}
