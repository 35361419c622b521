// Package wordml models the body of a WordprocessingML part as a typed tree
// and rewrites the text runs of its paragraphs.
package wordml

import "encoding/xml"

// Namespace is the WordprocessingML main namespace.
const Namespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// DefaultPrefix is the prefix used for elements built from scratch.
const DefaultPrefix = "w"

// Node is one of *Element, CharData or Raw.
type Node interface {
	isNode()
}

// Element is a tagged node. Name.Space holds the literal prefix from the
// source ("w" in <w:p>), so re-encoding never renames anything. NS holds the
// namespace URI that prefix resolved to.
type Element struct {
	Name     xml.Name
	NS       string
	Attr     []xml.Attr
	Children []Node
}

// CharData is decoded character data.
type CharData string

// Raw is markup copied verbatim: the XML declaration, comments, directives.
type Raw string

func (*Element) isNode() {}
func (CharData) isNode() {}
func (Raw) isNode()      {}

// Kind classifies elements the rewriter cares about.
type Kind int

const (
	KindContainer Kind = iota
	KindParagraph
	KindRun
	KindProperties
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindRun:
		return "run"
	case KindProperties:
		return "properties"
	default:
		return "container"
	}
}

// Kind reports the element's kind. Only WordprocessingML elements are
// anything but KindContainer; DrawingML <a:p> is a plain container.
func (e *Element) Kind() Kind {
	if e == nil || e.NS != Namespace {
		return KindContainer
	}
	switch e.Name.Local {
	case "p":
		return KindParagraph
	case "r":
		return KindRun
	case "rPr":
		return KindProperties
	}
	return KindContainer
}

// is reports whether e is the WordprocessingML element with the given local name.
func (e *Element) is(local string) bool {
	return e != nil && e.NS == Namespace && e.Name.Local == local
}

// NewElement returns an empty WordprocessingML element with DefaultPrefix.
func NewElement(local string, attrs ...xml.Attr) *Element {
	return &Element{
		Name: xml.Name{Space: DefaultPrefix, Local: local},
		NS:   Namespace,
		Attr: attrs,
	}
}

// Val builds a w:val attribute.
func Val(v string) xml.Attr {
	return Attr("val", v)
}

// Attr builds a WordprocessingML attribute with DefaultPrefix.
func Attr(local, v string) xml.Attr {
	return xml.Attr{Name: xml.Name{Space: DefaultPrefix, Local: local}, Value: v}
}

// Append adds children and returns e.
func (e *Element) Append(children ...Node) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Child returns the first WordprocessingML child element with the local name.
func (e *Element) Child(local string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.is(local) {
			return el
		}
	}
	return nil
}

// AttrValue returns the value of the attribute with the given local name.
func (e *Element) AttrValue(local string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Clone deep-copies e. Cloning nil returns nil.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{
		Name: e.Name,
		NS:   e.NS,
	}
	if len(e.Attr) > 0 {
		out.Attr = make([]xml.Attr, len(e.Attr))
		copy(out.Attr, e.Attr)
	}
	if len(e.Children) > 0 {
		out.Children = make([]Node, 0, len(e.Children))
		for _, c := range e.Children {
			if el, ok := c.(*Element); ok {
				out.Children = append(out.Children, el.Clone())
				continue
			}
			out.Children = append(out.Children, c)
		}
	}
	return out
}

// setPrefix moves WordprocessingML elements (and their prefixed attributes)
// built with one prefix onto the prefix the host document uses. An empty
// prefix means the host binds the namespace as its default, so the names
// come out unprefixed.
func setPrefix(e *Element, prefix string) {
	if e == nil {
		return
	}
	if e.NS == Namespace && e.Name.Space != prefix {
		old := e.Name.Space
		e.Name.Space = prefix
		for i := range e.Attr {
			if e.Attr[i].Name.Space == old {
				e.Attr[i].Name.Space = prefix
			}
		}
	}
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			setPrefix(el, prefix)
		}
	}
}
