package omml

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// FromElement converts an OMML element straight to a normalized LaTeX
// fragment. Conversions that produce nothing yield Placeholder instead of
// an error, so a bad formula never aborts a document walk.
func FromElement(el *etree.Element) string {
	return ToLaTeX(Parse(el))
}

// ToLaTeX converts a parsed node tree to a normalized LaTeX fragment.
func ToLaTeX(root *Node) string {
	if root == nil {
		return Placeholder
	}
	out := Normalize(convert(root))
	if strings.TrimSpace(out) == "" {
		return Placeholder
	}
	return out
}

func convert(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindRun, KindUnknown, KindBox:
		var b strings.Builder
		for _, c := range n.Children {
			b.WriteString(convert(c))
		}
		return b.String()
	case KindText:
		return convertText(n.Text)
	case KindSymbol:
		return symbolFor(n.Text)
	case KindFraction:
		return fmt.Sprintf(`\frac{%s}{%s}`, convert(n.Num), convert(n.Den))
	case KindSup:
		return fmt.Sprintf(`{%s}^{%s}`, convert(n.Base), convert(n.Sup))
	case KindSub:
		base := convert(n.Base)
		// Subscripted E is almost always the expectation operator.
		if strings.Trim(base, "{}") == "E" {
			base = `\mathbb{E}`
		}
		return fmt.Sprintf(`{%s}_{%s}`, base, convert(n.Sub))
	case KindSubSup:
		return fmt.Sprintf(`{%s}_{%s}^{%s}`, convert(n.Base), convert(n.Sub), convert(n.Sup))
	case KindRadical:
		deg := convert(n.Degree)
		if deg != "" {
			return fmt.Sprintf(`\sqrt[%s]{%s}`, deg, convert(n.Base))
		}
		return fmt.Sprintf(`\sqrt{%s}`, convert(n.Base))
	case KindNAry:
		return convertNAry(n)
	case KindDelimiter:
		return convertDelimiter(n)
	case KindMatrix:
		return convertMatrix(n)
	case KindFunction:
		return fmt.Sprintf(`\%s{%s}`, convert(n.Name), convert(n.Base))
	case KindAccent:
		return fmt.Sprintf(`\hat{%s}`, convert(n.Base))
	case KindBar:
		return fmt.Sprintf(`\overline{%s}`, convert(n.Base))
	case KindBorderBox:
		return fmt.Sprintf(`\boxed{%s}`, convert(n.Base))
	case KindGroupChar:
		return fmt.Sprintf(`\underbrace{%s}`, convert(n.Base))
	case KindLimit:
		return convertLimit(n)
	}
	return ""
}

func convertNAry(n *Node) string {
	op := n.Op
	if latex, ok := naryOps[op]; ok {
		op = latex
	}
	sub := convert(n.Sub)
	sup := convert(n.Sup)
	base := convert(n.Base)
	switch {
	case sub != "" && sup != "":
		return fmt.Sprintf(`%s_{%s}^{%s} %s`, op, sub, sup, base)
	case sub != "":
		return fmt.Sprintf(`%s_{%s} %s`, op, sub, base)
	case sup != "":
		return fmt.Sprintf(`%s^{%s} %s`, op, sup, base)
	default:
		return fmt.Sprintf(`%s %s`, op, base)
	}
}

func convertLimit(n *Node) string {
	base := convert(n.Base)
	bound := convert(n.Bound)
	stripped := strings.Trim(base, "{}")
	if (stripped == "max" || stripped == "min") && bound != "" {
		return fmt.Sprintf(`\operatorname*{%s}_{%s}`, stripped, bound)
	}
	if n.Upper {
		return fmt.Sprintf(`\overset{%s}{%s}`, bound, base)
	}
	return fmt.Sprintf(`\underset{%s}{%s}`, bound, base)
}

func convertMatrix(n *Node) string {
	var b strings.Builder
	b.WriteString("\\begin{matrix}\n")
	for _, row := range n.Rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, convert(cell))
		}
		b.WriteString(strings.Join(cells, " & "))
		b.WriteString(" \\\\\n")
	}
	b.WriteString("\\end{matrix}")
	return b.String()
}

// probIndicators are tokens whose presence anywhere inside a delimiter
// suggests a conditional-probability expression.
var probIndicators = []string{"p", "P", "Pr", "θ", "log"}

// conditioningVars are variables commonly found on the right side of a
// conditional bar.
var conditioningVars = []string{"x", "X", "I", "c"}

func convertDelimiter(n *Node) string {
	sep := n.Sep
	var parts []string
	for _, inner := range n.Inner {
		expr := convert(inner)
		// A lone vertical bar inside an argument acts as a separator.
		if sep == "" && strings.Count(expr, "|") == 1 {
			split := strings.SplitN(expr, "|", 2)
			parts = append(parts, split[0], split[1])
			sep = "|"
			continue
		}
		parts = append(parts, expr)
	}

	// Two-argument parenthesized expressions like p(y)(x) are usually a
	// conditional probability whose bar got lost; detect the shape.
	if len(parts) == 2 && sep == "" && n.Beg == "(" && n.End == ")" {
		first := strings.TrimSpace(parts[0])
		second := strings.TrimSpace(parts[1])
		shortFirst := utf8.RuneCountInString(first) <= 2 && containsAny(second, conditioningVars)
		if shortFirst || containsAny(collectText(n), probIndicators) {
			sep = "|"
		}
	}

	var inner string
	if sep != "" {
		latexSep := " " + sep + " "
		if sep == "|" {
			latexSep = ` \mid `
		}
		inner = strings.Join(parts, latexSep)
	} else {
		inner = strings.Join(parts, "")
	}

	return fmt.Sprintf(`\left%s %s \right%s`, escapeDelim(n.Beg), inner, escapeDelim(n.End))
}

// escapeDelim makes a delimiter character safe after \left/\right. An
// absent delimiter becomes the invisible ".".
func escapeDelim(ch string) string {
	switch ch {
	case "":
		return "."
	case "{", "}":
		return `\` + ch
	}
	return ch
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var (
	reEqNumber = regexp.MustCompile(`#\([^)]+\)`)
)

func convertText(text string) string {
	// A lone vertical bar in math mode reads as a conditional separator.
	if text == "|" {
		return `\mid`
	}
	text = replaceSymbols(text)
	// Strip equation-number artifacts like #(2-1).
	text = reEqNumber.ReplaceAllString(text, "")
	text = stripStrayHash(text)
	return text
}

// stripStrayHash removes '#' characters that are neither escaped nor the
// start of a LaTeX command name.
func stripStrayHash(s string) string {
	if !strings.Contains(s, "#") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i, r := range runes {
		if r != '#' {
			b.WriteRune(r)
			continue
		}
		escaped := i > 0 && runes[i-1] == '\\'
		beforeLetter := i+1 < len(runes) && isASCIILetter(runes[i+1])
		if escaped || beforeLetter {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
