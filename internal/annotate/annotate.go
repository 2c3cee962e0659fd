// Package annotate holds per-chapter reader commentary and its markdown
// rendering.
package annotate

import (
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// Annotation is one reader note attached to a chapter.
type Annotation struct {
	ChapterID      string    `json:"chapter_id"`
	Commentary     string    `json:"commentary"`
	CommentaryHTML string    `json:"commentary_html"`
	CreatedAt      time.Time `json:"created_at"`
}

var md = goldmark.New()

// Render converts markdown commentary to HTML.
func Render(markdown string) (string, error) {
	var b strings.Builder
	if err := md.Convert([]byte(markdown), &b); err != nil {
		return "", fmt.Errorf("render commentary: %w", err)
	}
	return b.String(), nil
}
