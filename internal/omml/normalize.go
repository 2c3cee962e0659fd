package omml

import (
	"regexp"
	"sort"
	"strings"
)

// spacedCommands are LaTeX commands that need a trailing space when
// immediately followed by an alphanumeric character. The membership
// command \in is deliberately absent: it is a prefix of \infty and \int
// and gets its own narrower rule below.
var spacedCommands = []string{
	"rightarrow", "leftarrow", "leftrightarrow", "Rightarrow",
	"Leftarrow", "Leftrightarrow", "uparrow", "downarrow", "updownarrow",
	"subseteq", "supseteq", "subset", "supset",
	"notin", "neq", "approx", "equiv", "propto",
	"parallel", "emptyset", "forall", "exists",
	"geq", "leq", "pm", "mp", "times", "div",
	"cdot", "circ", "sqrt", "angle", "perp",
	"infty", "partial", "nabla",
	"Gamma", "Delta", "Theta", "Lambda", "Xi", "Pi",
	"Sigma", "Upsilon", "Phi", "Psi", "Omega",
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta",
	"eta", "theta", "iota", "kappa", "lambda", "mu",
	"nu", "xi", "pi", "rho", "sigma", "tau",
	"upsilon", "phi", "chi", "psi", "omega",
	"cup", "cap", "sim",
}

// closableEnvs are multi-line environments the normalizer auto-closes when
// a conversion leaves them dangling.
var closableEnvs = []string{"cases", "align", "matrix", "pmatrix", "bmatrix"}

var (
	reSpacedCommand = buildSpacedCommandRe()
	reMembership    = regexp.MustCompile(`\\in([A-Z])`)

	reHashLeftRight = regexp.MustCompile(`#\\left\([^)]*\\right\)`)

	// Doubled backslash not at a line-break position (next char is neither
	// a backslash nor a newline) collapses to a single command backslash.
	reDoubledBackslash = regexp.MustCompile(`\\\\([^\\\n])`)

	reLeftToken  = regexp.MustCompile(`\\left(?:[^a-zA-Z]|$)`)
	reRightToken = regexp.MustCompile(`\\right(?:[^a-zA-Z]|$)`)

	// Formula-numbering artifacts at the end of a fragment, e.g. (2-1),
	// \left(2−1\right), (1).
	reNumberingTail = []*regexp.Regexp{
		regexp.MustCompile(`\\left\(\s*\d+\s*[-−–—]\s*\d+\s*\\right\)\s*$`),
		regexp.MustCompile(`\(\s*\d+\s*[-−–—]\s*\d+\s*\)\s*$`),
		regexp.MustCompile(`\\left\(\s*\d+\s*\\right\)\s*$`),
		regexp.MustCompile(`\(\s*\d+\s*\)\s*$`),
	}

	reTrailingComma = regexp.MustCompile(`\s*,\s*$`)
	reWhitespace    = regexp.MustCompile(`\s+`)
)

// buildSpacedCommandRe assembles one alternation over spacedCommands,
// longest name first so a short command never shadows a longer one
// sharing its prefix.
func buildSpacedCommandRe() *regexp.Regexp {
	cmds := make([]string, len(spacedCommands))
	copy(cmds, spacedCommands)
	sort.Slice(cmds, func(i, j int) bool {
		if len(cmds[i]) != len(cmds[j]) {
			return len(cmds[i]) > len(cmds[j])
		}
		return cmds[i] < cmds[j]
	})
	return regexp.MustCompile(`\\(` + strings.Join(cmds, "|") + `)([a-zA-Z0-9])`)
}

// Normalize post-processes an assembled LaTeX fragment: strips numbering
// artifacts, fixes doubled backslashes and spacing, balances \left/\right
// pairs, and closes dangling environments.
func Normalize(s string) string {
	if s == "" {
		return s
	}

	// Equation-number artifacts that survived per-text stripping.
	s = reHashLeftRight.ReplaceAllString(s, "")
	s = reEqNumber.ReplaceAllString(s, "")
	s = stripStrayHash(s)

	s = reDoubledBackslash.ReplaceAllString(s, `\$1`)

	// Unicode minus glued to infinity renders badly; use an ASCII minus.
	s = strings.ReplaceAll(s, `−\infty`, `-\infty`)
	s = strings.ReplaceAll(s, "−∞", `-\infty`)

	for _, re := range reNumberingTail {
		s = strings.TrimSpace(re.ReplaceAllString(s, ""))
	}

	s = reSpacedCommand.ReplaceAllString(s, `\$1 $2`)
	s = reMembership.ReplaceAllString(s, `\in $1`)

	// Balance unmatched \left tokens with invisible right delimiters.
	if diff := len(reLeftToken.FindAllString(s, -1)) - len(reRightToken.FindAllString(s, -1)); diff > 0 {
		s += strings.Repeat(` \right.`, diff)
	}

	for _, env := range closableEnvs {
		if strings.Contains(s, `\begin{`+env+`}`) && !strings.Contains(s, `\end{`+env+`}`) {
			s += `\end{` + env + `}`
		}
	}

	s = reTrailingComma.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
