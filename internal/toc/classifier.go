// Package toc derives a chapter tree from a walked document. The input is
// a thesis-style document whose front matter repeats the first chapter
// title inside a table of contents; classification starts at the second
// occurrence and promotes paragraphs by style, formatting, and text shape.
package toc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"paperlens/internal/docmodel"
)

// Node is one entry of the extracted chapter tree.
type Node struct {
	Index            int     `json:"index"`
	Level            int     `json:"level"`
	Text             string  `json:"text"`
	OriginalText     string  `json:"original_text"`
	StandardizedText string  `json:"standardized_text"`
	ID               string  `json:"id"`
	Children         []*Node `json:"children"`
}

// Options holds the classifier thresholds.
type Options struct {
	// TruncateRunes caps the display text length before an ellipsis.
	TruncateRunes int
	// LargeFontPt is the font size above which a paragraph counts as
	// large-font, one signal for level-1 chapters.
	LargeFontPt float64
	// FallbackScanWindow bounds how many paragraphs the keyword fallback
	// examines past the body start.
	FallbackScanWindow int
}

// DefaultOptions returns the classifier defaults.
func DefaultOptions() Options {
	return Options{TruncateRunes: 20, LargeFontPt: 14, FallbackScanWindow: 100}
}

// contentsMarkers open the table-of-contents region.
var contentsMarkers = map[string]bool{
	"目录":                true,
	"contents":          true,
	"table of contents": true,
}

var (
	reChapterLead = regexp.MustCompile(`^第[一二三四五六七八九十\d]+章`)

	// Text shapes that mark a heading, with the level each implies.
	chapterPatterns = []struct {
		re    *regexp.Regexp
		level int
	}{
		{regexp.MustCompile(`^第[一二三四五六七八九十\d]+章[：:]?\s*\S+`), 1},
		{regexp.MustCompile(`^第[一二三四五六七八九十\d]+章$`), 1},
		{regexp.MustCompile(`^\d+[\.、]\s*[^\.、\d]+`), 1},
		{regexp.MustCompile(`^[一二三四五六七八九十]+[\.、]\s*[^\.、\d]+`), 1},
		{regexp.MustCompile(`^\d+\.\d+\s+\S+`), 2},
		{regexp.MustCompile(`^\d+\.\d+\.\d+\s+\S+`), 3},
		{regexp.MustCompile(`^第[一二三四五六七八九十\d]+节\s+\S+`), 2},
	}

	// TOC lines carry dot leaders and page numbers; any punctuation
	// disqualifies a candidate.
	rePunctuation = regexp.MustCompile(`[，。：；、,.;:!？?]`)

	reStyleDigits = regexp.MustCompile(`\d+`)
	reNonWord     = regexp.MustCompile(`[^\p{L}\p{N}_]`)

	personalInfoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`姓名[：:]\s*[\p{L}\p{N}_]+`),
		regexp.MustCompile(`电话[：:]\s*\d+`),
		regexp.MustCompile(`邮箱[：:]\s*[\w.-]+@[\w.-]+`),
		regexp.MustCompile(`地址[：:]\s*[\p{L}\p{N}_]+`),
		regexp.MustCompile(`学号[：:]\s*[\p{L}\p{N}_]+`),
		regexp.MustCompile(`指导教师[：:]\s*[\p{L}\p{N}_]+`),
	}

	// fallbackKeywords mark paragraphs likely to be chapter titles when no
	// structured chapters were found.
	fallbackKeywords = []string{
		"绪论", "引言", "简介", "概述", "背景", "方法", "实验", "结果", "分析",
		"讨论", "结论", "参考文献", "致谢", "Introduction", "Methods",
		"Results", "Discussion", "Conclusion", "References",
	}
)

// candidate pairs a paragraph with its body-order index and trimmed text.
type candidate struct {
	index int
	para  *docmodel.Paragraph
	text  string
}

// Classify extracts the chapter tree from a block sequence. The returned
// slice holds level-1 chapters with sub-chapters attached as children; it
// is empty, never nil, when nothing classifies.
func Classify(blocks []docmodel.Block, opts Options) []*Node {
	if opts.TruncateRunes <= 0 {
		opts.TruncateRunes = DefaultOptions().TruncateRunes
	}
	if opts.LargeFontPt <= 0 {
		opts.LargeFontPt = DefaultOptions().LargeFontPt
	}
	if opts.FallbackScanWindow <= 0 {
		opts.FallbackScanWindow = DefaultOptions().FallbackScanWindow
	}

	var paras []candidate
	for _, block := range blocks {
		if block.Kind != docmodel.BlockParagraph {
			continue
		}
		text := block.Paragraph.Text()
		if text == "" {
			continue
		}
		paras = append(paras, candidate{index: block.Index, para: block.Paragraph, text: text})
	}

	bodyStart, found := findBodyStart(paras)

	var chapters, subs []*Node
	seen := make(map[string]bool)

	// The structured pass needs a located body start; without one the
	// document has no duplicated first chapter to anchor on and only the
	// keyword fallback applies.
	if found {
		for _, c := range paras[bodyStart:] {
			level, ok := headingLevel(c, opts)
			if !ok {
				continue
			}
			node, ok := buildNode(c, level, opts, seen)
			if !ok {
				continue
			}
			if level == 1 {
				chapters = append(chapters, node)
			} else {
				subs = append(subs, node)
			}
		}
	}

	if len(chapters) == 0 {
		chapters = fallbackChapters(paras, bodyStart, opts, seen)
	}

	attachChildren(chapters, subs)
	if chapters == nil {
		chapters = []*Node{}
	}
	return chapters
}

// findBodyStart locates the paragraph where the document body begins: the
// second occurrence of the first chapter's lead after a contents marker.
// The first occurrence is the TOC entry, the second the chapter itself.
func findBodyStart(paras []candidate) (int, bool) {
	foundMarker := false
	counts := make(map[string]int)
	for i, c := range paras {
		if !foundMarker {
			if contentsMarkers[strings.ToLower(c.text)] {
				foundMarker = true
			}
			continue
		}
		lead := reChapterLead.FindString(c.text)
		if lead == "" {
			continue
		}
		counts[lead]++
		if (lead == "第一章" || lead == "第1章") && counts[lead] > 1 {
			return i, true
		}
	}
	return 0, false
}

// headingLevel decides whether a paragraph is a heading and at what level.
// Style wins over formatting, formatting over text shape.
func headingLevel(c candidate, opts Options) (int, bool) {
	style := c.para.Style
	if strings.HasPrefix(strings.ToLower(style), "heading") || strings.Contains(style, "标题") {
		if m := reStyleDigits.FindString(style); m != "" {
			if level, err := strconv.Atoi(m); err == nil {
				return level, true
			}
		}
		return 1, true
	}

	large := c.para.MaxFontPt() > opts.LargeFontPt
	if c.para.HasBold() || large {
		if large {
			return 1, true
		}
		return 2, true
	}

	for _, p := range chapterPatterns {
		if p.re.MatchString(c.text) {
			return p.level, true
		}
	}
	return 0, false
}

// buildNode applies the candidate filters and materializes a tree node.
// First occurrence of a display text wins; later duplicates are dropped.
func buildNode(c candidate, level int, opts Options, seen map[string]bool) (*Node, bool) {
	standardized := Standardize(c.text)
	display := truncate(standardized, opts.TruncateRunes)

	if isPersonalInfo(c.text) || seen[display] || rePunctuation.MatchString(c.text) {
		return nil, false
	}
	if level == 1 && !meetsLevel1Requirement(c, opts) {
		return nil, false
	}

	seen[display] = true
	return &Node{
		Index:            c.index,
		Level:            level,
		Text:             display,
		OriginalText:     c.text,
		StandardizedText: standardized,
		ID:               nodeID(c.index, c.text),
		Children:         []*Node{},
	}, true
}

// meetsLevel1Requirement checks the extra bar for top-level chapters: a
// large font or an explicit first-level heading style.
func meetsLevel1Requirement(c candidate, opts Options) bool {
	if c.para.MaxFontPt() > opts.LargeFontPt {
		return true
	}
	style := c.para.Style
	return strings.HasPrefix(strings.ToLower(style), "heading 1") ||
		strings.Contains(style, "标题 1") ||
		strings.Contains(style, "标题1")
}

// fallbackChapters scans a window past the body start for short formatted
// paragraphs containing common chapter keywords.
func fallbackChapters(paras []candidate, start int, opts Options, seen map[string]bool) []*Node {
	end := start + opts.FallbackScanWindow
	if end > len(paras) {
		end = len(paras)
	}

	var chapters []*Node
	for _, c := range paras[start:end] {
		n := utf8.RuneCountInString(c.text)
		if n < 4 || n > 100 {
			continue
		}
		if !containsKeyword(c.text) {
			continue
		}
		formatted := c.para.HasBold() || n < 30
		if !formatted || isPersonalInfo(c.text) {
			continue
		}

		standardized := Standardize(c.text)
		display := truncate(standardized, opts.TruncateRunes)
		if seen[display] {
			continue
		}
		seen[display] = true
		chapters = append(chapters, &Node{
			Index:            c.index,
			Level:            1,
			Text:             display,
			OriginalText:     c.text,
			StandardizedText: standardized,
			ID:               nodeID(c.index, c.text),
			Children:         []*Node{},
		})
	}
	return chapters
}

// attachChildren hangs each sub-chapter off the nearest preceding chapter,
// falling back to the first chapter for orphans.
func attachChildren(chapters, subs []*Node) {
	for _, sub := range subs {
		attached := false
		for i := len(chapters) - 1; i >= 0; i-- {
			if chapters[i].Index < sub.Index {
				chapters[i].Children = append(chapters[i].Children, sub)
				attached = true
				break
			}
		}
		if !attached && len(chapters) > 0 {
			chapters[0].Children = append(chapters[0].Children, sub)
		}
	}
}

func containsKeyword(text string) bool {
	for _, kw := range fallbackKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isPersonalInfo(text string) bool {
	for _, re := range personalInfoPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// nodeID derives a stable id from the paragraph's position and the word
// characters of its first runes.
func nodeID(index int, text string) string {
	runes := []rune(text)
	if len(runes) > 5 {
		runes = runes[:5]
	}
	return fmt.Sprintf("section-%d-%s", index, reNonWord.ReplaceAllString(string(runes), ""))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
