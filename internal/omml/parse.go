package omml

import "github.com/beevik/etree"

// Parse builds a math Node tree from an OMML element (typically m:oMath).
// Tag matching ignores namespace prefixes, mirroring how producers vary them.
func Parse(el *etree.Element) *Node {
	if el == nil {
		return nil
	}
	switch el.Tag {
	case "oMath", "oMathPara", "r":
		return &Node{Kind: KindRun, Children: parseChildren(el)}
	case "f":
		return &Node{
			Kind: KindFraction,
			Num:  parseArg(el, "num"),
			Den:  parseArg(el, "den"),
		}
	case "sSup":
		return &Node{Kind: KindSup, Base: parseArg(el, "e"), Sup: parseArg(el, "sup")}
	case "sSub":
		return &Node{Kind: KindSub, Base: parseArg(el, "e"), Sub: parseArg(el, "sub")}
	case "sSubSup":
		return &Node{
			Kind: KindSubSup,
			Base: parseArg(el, "e"),
			Sub:  parseArg(el, "sub"),
			Sup:  parseArg(el, "sup"),
		}
	case "rad":
		return &Node{Kind: KindRadical, Degree: parseArg(el, "deg"), Base: parseArg(el, "e")}
	case "nary":
		n := &Node{
			Kind: KindNAry,
			Sub:  parseArg(el, "sub"),
			Sup:  parseArg(el, "sup"),
			Base: parseArg(el, "e"),
		}
		if pr := childByTag(el, "naryPr"); pr != nil {
			if chr := childByTag(pr, "chr"); chr != nil {
				n.Op = localAttr(chr, "val")
			}
		}
		return n
	case "d":
		return parseDelimiter(el)
	case "m":
		n := &Node{Kind: KindMatrix}
		for _, row := range el.ChildElements() {
			if row.Tag != "mr" {
				continue
			}
			var cells []*Node
			for _, cell := range row.ChildElements() {
				cells = append(cells, Parse(cell))
			}
			n.Rows = append(n.Rows, cells)
		}
		return n
	case "func":
		return &Node{Kind: KindFunction, Name: parseArg(el, "fName"), Base: parseArg(el, "e")}
	case "acc":
		return &Node{Kind: KindAccent, Base: parseArg(el, "e")}
	case "bar":
		return &Node{Kind: KindBar, Base: parseArg(el, "e")}
	case "box":
		return &Node{Kind: KindBox, Children: parseChildren(el)}
	case "borderBox":
		return &Node{Kind: KindBorderBox, Base: parseArg(el, "e")}
	case "groupChr":
		return &Node{Kind: KindGroupChar, Base: parseArg(el, "e")}
	case "limLow":
		return &Node{Kind: KindLimit, Base: parseArg(el, "e"), Bound: parseArg(el, "lim")}
	case "limUpp":
		return &Node{Kind: KindLimit, Base: parseArg(el, "e"), Bound: parseArg(el, "lim"), Upper: true}
	case "t":
		return &Node{Kind: KindText, Text: el.Text()}
	case "sym":
		return &Node{Kind: KindSymbol, Text: localAttr(el, "char")}
	default:
		return &Node{Kind: KindUnknown, Children: parseChildren(el)}
	}
}

func parseDelimiter(el *etree.Element) *Node {
	n := &Node{Kind: KindDelimiter, Beg: "(", End: ")"}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "dPr":
			// sepChr may be an attribute of dPr or a nested element.
			if sep := localAttr(child, "sepChr"); sep != "" {
				n.Sep = sep
			}
			for _, pr := range child.ChildElements() {
				switch pr.Tag {
				case "begChr":
					if v, ok := lookupLocalAttr(pr, "val"); ok {
						n.Beg = v
					}
				case "endChr":
					if v, ok := lookupLocalAttr(pr, "val"); ok {
						n.End = v
					}
				case "sepChr":
					if v := localAttr(pr, "val"); v != "" {
						n.Sep = v
					}
				}
			}
		case "e":
			n.Inner = append(n.Inner, Parse(child))
		}
	}
	return n
}

// parseArg parses the named argument container (e, num, den, sub, sup, deg,
// lim, fName) as an ordered run of its children. Returns nil when absent.
func parseArg(el *etree.Element, tag string) *Node {
	child := childByTag(el, tag)
	if child == nil {
		return nil
	}
	return &Node{Kind: KindRun, Children: parseChildren(child)}
}

func parseChildren(el *etree.Element) []*Node {
	var out []*Node
	for _, child := range el.ChildElements() {
		switch child.Tag {
		// Property containers carry no renderable content.
		case "rPr", "ctrlPr", "argPr", "fPr", "sSupPr", "sSubPr", "sSubSupPr",
			"radPr", "naryPr", "dPr", "mPr", "funcPr", "accPr", "barPr",
			"boxPr", "borderBoxPr", "groupChrPr", "limLowPr", "limUppPr":
			continue
		}
		out = append(out, Parse(child))
	}
	return out
}

func childByTag(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

// localAttr fetches an attribute value by local name, ignoring namespaces.
func localAttr(el *etree.Element, name string) string {
	v, _ := lookupLocalAttr(el, name)
	return v
}

func lookupLocalAttr(el *etree.Element, name string) (string, bool) {
	for _, attr := range el.Attr {
		if attr.Key == name {
			return attr.Value, true
		}
	}
	return "", false
}
