package toc

import (
	"regexp"
	"strings"
)

var (
	// Chapter titles glued to a page number, e.g. "第一章 绪论1".
	reIntroSuffix = []*regexp.Regexp{
		regexp.MustCompile(`^(第[一二三四五六七八九十\d]+章\s*[\s\S]*绪论)\d+`),
		regexp.MustCompile(`^(第[一二三四五六七八九十\d]+章\s*[\s\S]*引言)\d+`),
	}
	reTrailingDigits = regexp.MustCompile(`(第[一二三四五六七八九十\d]+[章节].*?[^0-9])\d+$`)
	reRunsOfSpace    = regexp.MustCompile(`\s+`)
)

// Standardize cleans a chapter title for display and matching: trailing
// page-number digits go, whitespace collapses to single spaces. The result
// is stable under repeated application.
func Standardize(text string) string {
	for _, re := range reIntroSuffix {
		text = re.ReplaceAllString(text, "$1")
	}
	text = reTrailingDigits.ReplaceAllString(text, "$1")
	return strings.TrimSpace(reRunsOfSpace.ReplaceAllString(text, " "))
}
