package wordml

// Walk visits every paragraph under n in document order, including
// paragraphs inside tables, text boxes and nested containers.
// The visitor must not restructure the tree; collect with Paragraphs and
// rewrite afterwards instead.
func Walk(n Node, visit func(Paragraph)) {
	el, ok := n.(*Element)
	if !ok || el == nil {
		return
	}
	if el.Kind() == KindParagraph {
		visit(Paragraph{el})
	}
	for _, c := range el.Children {
		Walk(c, visit)
	}
}

// Paragraphs collects the paragraphs Walk would visit.
func Paragraphs(n Node) []Paragraph {
	var out []Paragraph
	if el, ok := n.(*Element); !ok || el == nil {
		return nil
	}
	Walk(n, func(p Paragraph) { out = append(out, p) })
	return out
}
