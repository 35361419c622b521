package wordml

import (
	"encoding/xml"
	"strings"
)

// Run is a span of text in one formatting state. Props is the w:rPr element
// (nil when the run has none); it is never shared between two runs.
type Run struct {
	Props *Element
	Text  string
}

// Element builds the w:r element for the run.
func (r Run) Element() *Element {
	el := NewElement("r")
	if r.Props != nil {
		el.Append(r.Props.Clone())
	}
	t := NewElement("t", xml.Attr{Name: xml.Name{Space: "xml", Local: "space"}, Value: "preserve"})
	if r.Text != "" {
		t.Append(CharData(r.Text))
	}
	return el.Append(t)
}

// runFromElement reads a w:r element. Only w:t children contribute text.
func runFromElement(el *Element) Run {
	var r Run
	var sb strings.Builder
	for _, c := range el.Children {
		child, ok := c.(*Element)
		if !ok {
			continue
		}
		switch {
		case child.Kind() == KindProperties && r.Props == nil:
			r.Props = child
		case child.is("t"):
			sb.WriteString(textOf(child))
		}
	}
	r.Text = sb.String()
	return r
}

func textOf(el *Element) string {
	var sb strings.Builder
	for _, c := range el.Children {
		if cd, ok := c.(CharData); ok {
			sb.WriteString(string(cd))
		}
	}
	return sb.String()
}

// Paragraph wraps a w:p element.
type Paragraph struct {
	*Element
}

// Runs returns the direct w:r children in order. Runs nested deeper, such
// as inside hyperlinks or field results, are not included.
func (p Paragraph) Runs() []Run {
	var runs []Run
	for _, c := range p.Children {
		if el, ok := c.(*Element); ok && el.Kind() == KindRun {
			runs = append(runs, runFromElement(el))
		}
	}
	return runs
}

// Text concatenates the text of the paragraph's direct runs.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// ReplaceRuns swaps the paragraph's direct runs for runs. The new runs take
// the position of the first old run; every other child stays where it was.
// A paragraph without runs is left untouched.
func (p Paragraph) ReplaceRuns(runs []Run) {
	first := -1
	for i, c := range p.Children {
		if el, ok := c.(*Element); ok && el.Kind() == KindRun {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}

	prefix := p.Name.Space
	children := make([]Node, 0, len(p.Children)+len(runs))
	for i, c := range p.Children {
		if i == first {
			for _, r := range runs {
				el := r.Element()
				setPrefix(el, prefix)
				children = append(children, el)
			}
			continue
		}
		if el, ok := c.(*Element); ok && el.Kind() == KindRun {
			continue
		}
		children = append(children, c)
	}
	p.Children = children
}
