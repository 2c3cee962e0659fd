package toc

import (
	"strings"
	"testing"

	"paperlens/internal/docmodel"
)

// para builds a paragraph block with a single formatted text run.
func para(index int, text, style string, fontPt float64, bold bool) docmodel.Block {
	return docmodel.Block{
		Kind:  docmodel.BlockParagraph,
		Index: index,
		Paragraph: &docmodel.Paragraph{
			Style: style,
			Inlines: []docmodel.Inline{{
				Kind:   docmodel.InlineText,
				Text:   text,
				Format: docmodel.RunFormat{Bold: bold, FontPt: fontPt},
			}},
		},
	}
}

// thesisBlocks is a minimal front-matter-plus-body document: a contents
// marker, TOC entries, then the real chapters.
func thesisBlocks() []docmodel.Block {
	return []docmodel.Block{
		para(0, "基于深度学习的研究", "Title", 22, true),
		para(1, "姓名：张三", "", 12, true),
		para(2, "目录", "", 16, true),
		para(3, "第一章 绪论1", "", 12, false),
		para(4, "第二章 相关工作3", "", 12, false),
		para(5, "第一章 绪论", "Heading 1", 16, true),
		para(6, "研究背景的正文段落，介绍了该领域的发展历史。", "", 12, false),
		para(7, "第二节 相关工作", "", 12, true),
		para(8, "第二章 方法", "Heading 1", 16, true),
		para(9, "第二章 方法", "Heading 1", 16, true),
	}
}

func TestClassify_BodyStartAtSecondChapterOne(t *testing.T) {
	chapters := Classify(thesisBlocks(), DefaultOptions())
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d: %+v", len(chapters), chapters)
	}
	// The TOC entry at index 3 must not win; the body occurrence does.
	if chapters[0].Index != 5 {
		t.Errorf("expected first chapter at index 5, got %d", chapters[0].Index)
	}
	if chapters[0].StandardizedText != "第一章 绪论" {
		t.Errorf("unexpected standardized text %q", chapters[0].StandardizedText)
	}
}

func TestClassify_DuplicateChapterDropped(t *testing.T) {
	// Index 8 and 9 carry the same title; only the first survives.
	chapters := Classify(thesisBlocks(), DefaultOptions())
	count := 0
	for _, c := range chapters {
		if c.StandardizedText == "第二章 方法" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected duplicate chapter removed, got %d occurrences", count)
	}
}

func TestClassify_PersonalInfoNeverPromoted(t *testing.T) {
	chapters := Classify(thesisBlocks(), DefaultOptions())
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if strings.Contains(n.OriginalText, "姓名") {
				t.Errorf("personal info promoted to chapter: %+v", n)
			}
			walk(n.Children)
		}
	}
	walk(chapters)
}

func TestClassify_SubChapterAttachment(t *testing.T) {
	chapters := Classify(thesisBlocks(), DefaultOptions())
	first := chapters[0]
	if len(first.Children) != 1 {
		t.Fatalf("expected 1 sub-chapter under first chapter, got %d", len(first.Children))
	}
	sub := first.Children[0]
	if sub.Level != 2 || sub.Index != 7 {
		t.Errorf("unexpected sub-chapter: %+v", sub)
	}
}

func TestClassify_PunctuationDisqualifies(t *testing.T) {
	blocks := thesisBlocks()
	blocks = append(blocks, para(10, "第三章：总结与展望", "Heading 1", 16, true))
	chapters := Classify(blocks, DefaultOptions())
	for _, c := range chapters {
		if strings.Contains(c.OriginalText, "第三章") {
			t.Errorf("expected punctuated title rejected, got %+v", c)
		}
	}
}

func TestClassify_NoMarkerUsesFallback(t *testing.T) {
	blocks := []docmodel.Block{
		para(0, "论文标题", "Title", 22, true),
		para(1, "绪论与研究背景", "", 12, true),
		para(2, "这一段是很长的正文内容，详细描述了整个研究领域的发展背景与研究动机，显然并不是一个标题。", "", 12, false),
		para(3, "参考文献", "", 12, true),
	}
	chapters := Classify(blocks, DefaultOptions())
	if len(chapters) != 2 {
		t.Fatalf("expected 2 fallback chapters, got %d: %+v", len(chapters), chapters)
	}
	for _, c := range chapters {
		if c.Level != 1 {
			t.Errorf("fallback chapters are level 1, got %+v", c)
		}
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	chapters := Classify(nil, DefaultOptions())
	if chapters == nil {
		t.Fatal("expected non-nil chapter slice")
	}
	if len(chapters) != 0 {
		t.Errorf("expected no chapters, got %d", len(chapters))
	}
}

func TestClassify_DisplayTextTruncated(t *testing.T) {
	long := "第一章 " + strings.Repeat("很", 30)
	blocks := []docmodel.Block{
		para(0, "目录", "", 12, false),
		para(1, "第一章 引言", "", 12, false),
		para(2, "第一章 引言", "Heading 1", 16, true),
		para(3, long, "Heading 1", 16, true),
	}
	chapters := Classify(blocks, DefaultOptions())
	for _, c := range chapters {
		if c.OriginalText == long {
			if !strings.HasSuffix(c.Text, "...") {
				t.Errorf("expected truncated display text, got %q", c.Text)
			}
			if len([]rune(strings.TrimSuffix(c.Text, "..."))) != 20 {
				t.Errorf("expected 20 rune prefix, got %q", c.Text)
			}
		}
		if c.OriginalText == "第一章 引言" && strings.HasSuffix(c.Text, "...") {
			t.Errorf("short title must not be truncated: %q", c.Text)
		}
	}
}

func TestClassify_NodeIDStable(t *testing.T) {
	chapters := Classify(thesisBlocks(), DefaultOptions())
	// The id keeps the word characters of the first five runes.
	if chapters[0].ID != "section-5-第一章绪" {
		t.Errorf("unexpected node id %q", chapters[0].ID)
	}
}

func TestStandardize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"第一章 绪论1", "第一章 绪论"},
		{"第二章 引言12", "第二章 引言"},
		{"第三章 方法23", "第三章 方法"},
		{"第一节  相关   工作", "第一节 相关 工作"},
		{"普通段落", "普通段落"},
	}
	for _, c := range cases {
		if got := Standardize(c.in); got != c.want {
			t.Errorf("Standardize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStandardize_Idempotent(t *testing.T) {
	inputs := []string{"第一章 绪论1", "第二章 方法", "参考文献"}
	for _, in := range inputs {
		once := Standardize(in)
		if twice := Standardize(once); twice != once {
			t.Errorf("Standardize not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}
