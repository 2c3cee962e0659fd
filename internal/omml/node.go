// Package omml converts Office Math Markup (OMML) expression trees to LaTeX.
//
// The conversion runs in three stages: Parse builds a Node tree from the XML
// element, convert emits a LaTeX fragment per node kind, and Normalize cleans
// the assembled fragment (brace balancing, numbering artifacts, spacing).
package omml

// Placeholder replaces formulas whose conversion produced nothing usable.
const Placeholder = "[Math Formula]"

// Kind identifies a math grammar node.
type Kind int

const (
	// KindRun is an ordered sequence of children, concatenated in order.
	KindRun Kind = iota
	KindText
	KindSymbol
	KindFraction
	KindSup
	KindSub
	KindSubSup
	KindRadical
	KindNAry
	KindDelimiter
	KindMatrix
	KindFunction
	KindAccent
	KindBar
	KindBox
	KindBorderBox
	KindGroupChar
	KindLimit
	// KindUnknown marks element kinds the grammar does not model. Its
	// children convert in order with no wrapping, so new OMML constructs
	// degrade to their inner content instead of disappearing.
	KindUnknown
)

// Node is one element of the math grammar. Fields are populated per Kind;
// unused fields stay zero.
type Node struct {
	Kind Kind

	Text     string  // KindText, KindSymbol
	Children []*Node // KindRun, KindUnknown, KindBox

	Num, Den *Node // KindFraction

	Base   *Node // scripts, radical, nary, function, accents, limits
	Sub    *Node // KindSub, KindSubSup, KindNAry
	Sup    *Node // KindSup, KindSubSup, KindNAry
	Degree *Node // KindRadical

	Op string // KindNAry operator character (or literal like "max")

	Beg, End, Sep string  // KindDelimiter characters
	Inner         []*Node // KindDelimiter argument expressions

	Rows [][]*Node // KindMatrix

	Name *Node // KindFunction

	Bound *Node // KindLimit
	Upper bool  // KindLimit: true for limUpp, false for limLow
}

// collectText gathers all literal text reachable under n, used by the
// delimiter heuristic to look for probability indicators.
func collectText(n *Node) string {
	if n == nil {
		return ""
	}
	var out []byte
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == KindText || n.Kind == KindSymbol {
			out = append(out, n.Text...)
		}
		for _, c := range n.Children {
			walk(c)
		}
		for _, c := range []*Node{n.Num, n.Den, n.Base, n.Sub, n.Sup, n.Degree, n.Name, n.Bound} {
			walk(c)
		}
		for _, c := range n.Inner {
			walk(c)
		}
		for _, row := range n.Rows {
			for _, c := range row {
				walk(c)
			}
		}
	}
	walk(n)
	return string(out)
}
