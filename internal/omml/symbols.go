package omml

import "strings"

// symbolMap maps Unicode math symbols and Greek letters to their LaTeX
// equivalents. Letters with no dedicated command map to plain Latin forms.
var symbolMap = map[string]string{
	// Greek letters
	"α": `\alpha`, "β": `\beta`, "γ": `\gamma`, "δ": `\delta`,
	"ε": `\epsilon`, "ζ": `\zeta`, "η": `\eta`, "θ": `\theta`,
	"ι": `\iota`, "κ": `\kappa`, "λ": `\lambda`, "μ": `\mu`,
	"ν": `\nu`, "ξ": `\xi`, "ο": "o", "π": `\pi`,
	"ρ": `\rho`, "σ": `\sigma`, "τ": `\tau`, "υ": `\upsilon`,
	"φ": `\phi`, "χ": `\chi`, "ψ": `\psi`, "ω": `\omega`,

	// Capital Greek letters
	"Α": "A", "Β": "B", "Γ": `\Gamma`, "Δ": `\Delta`,
	"Ε": "E", "Ζ": "Z", "Η": "H", "Θ": `\Theta`,
	"Ι": "I", "Κ": "K", "Λ": `\Lambda`, "Μ": "M",
	"Ν": "N", "Ξ": `\Xi`, "Ο": "O", "Π": `\Pi`,
	"Ρ": "P", "Σ": `\Sigma`, "Τ": "T", "Υ": `\Upsilon`,
	"Φ": `\Phi`, "Χ": "X", "Ψ": `\Psi`, "Ω": `\Omega`,

	// Operators
	"∞": `\infty`, "∑": `\sum`, "∫": `\int`, "∂": `\partial`,
	"∇": `\nabla`, "∆": `\Delta`, "∏": `\prod`,

	// Relations
	"≤": `\leq`, "≥": `\geq`, "≠": `\neq`, "≈": `\approx`,
	"≡": `\equiv`, "∝": `\propto`, "∼": `\sim`,

	// Set theory
	"∈": `\in`, "∉": `\notin`, "⊂": `\subset`, "⊆": `\subseteq`,
	"⊃": `\supset`, "⊇": `\supseteq`, "∪": `\cup`, "∩": `\cap`,
	"∅": `\emptyset`, "∀": `\forall`, "∃": `\exists`,

	// Arrows
	"→": `\rightarrow`, "←": `\leftarrow`, "↔": `\leftrightarrow`,
	"⇒": `\Rightarrow`, "⇐": `\Leftarrow`, "⇔": `\Leftrightarrow`,
	"↑": `\uparrow`, "↓": `\downarrow`, "↕": `\updownarrow`,

	// Other symbols
	"±": `\pm`, "∓": `\mp`, "×": `\times`, "÷": `\div`,
	"·": `\cdot`, "∘": `\circ`, "√": `\sqrt`,
	"∠": `\angle`, "⊥": `\perp`, "∥": `\parallel`,
	"~": `\sim`,

	// Calligraphic/blackboard variants seen in ML formulas
	"ℒ": `\mathcal{L}`,
	"𝒟": `\mathcal{D}`,
	"ℰ": `\mathbb{E}`,
	"𝔼": `\mathbb{E}`,
	"ϕ": `\varphi`,
}

// naryOps maps n-ary operator characters to LaTeX commands. The literal
// max/min forms come through the operator character property too.
var naryOps = map[string]string{
	"∑":   `\sum`,
	"∫":   `\int`,
	"∏":   `\prod`,
	"⋃":   `\bigcup`,
	"⋂":   `\bigcap`,
	"⋁":   `\bigvee`,
	"⋀":   `\bigwedge`,
	"max": `\operatorname*{max}`,
	"min": `\operatorname*{min}`,
}

var symbolReplacer = newSymbolReplacer()

func newSymbolReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(symbolMap)*2)
	for sym, latex := range symbolMap {
		pairs = append(pairs, sym, latex)
	}
	return strings.NewReplacer(pairs...)
}

// replaceSymbols substitutes every known Unicode math symbol in text with
// its LaTeX command.
func replaceSymbols(text string) string {
	return symbolReplacer.Replace(text)
}

// symbolFor maps a single symbol (from an m:sym element) to LaTeX, or
// returns it unchanged when unmapped.
func symbolFor(char string) string {
	if latex, ok := symbolMap[char]; ok {
		return latex
	}
	return char
}
