package wordml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Document is a decoded XML part: prolog nodes, the root element and any
// trailing nodes, in source order.
type Document struct {
	Nodes []Node
}

// Root returns the document element, or nil.
func (d *Document) Root() *Element {
	if d == nil {
		return nil
	}
	for _, n := range d.Nodes {
		if el, ok := n.(*Element); ok {
			return el
		}
	}
	return nil
}

// Paragraphs returns every paragraph in the document in document order.
func (d *Document) Paragraphs() []Paragraph {
	return Paragraphs(d.Root())
}

// ErrNoRoot is returned when a part has no document element.
var ErrNoRoot = errors.New("no root element")

// Decode parses an XML part. Prefixes are kept verbatim and resolved to
// namespace URIs on the side, so Encode writes back the names it read.
func Decode(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	doc := &Document{}
	var stack []*Element
	scopes := []map[string]string{{"xml": xmlNamespace}}

	add := func(n Node) {
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		tok = xml.CopyToken(tok)

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && doc.Root() != nil {
				return nil, fmt.Errorf("decode xml: second root element <%s>", qname(t.Name))
			}
			scope := scopes[len(scopes)-1]
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					scope = bind(scope, a)
				}
			}
			scopes = append(scopes, scope)
			el := &Element{
				Name: t.Name,
				NS:   scope[t.Name.Space],
				Attr: t.Attr,
			}
			add(el)
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decode xml: unexpected </%s>", qname(t.Name))
			}
			top := stack[len(stack)-1]
			if top.Name != t.Name {
				return nil, fmt.Errorf("decode xml: <%s> closed by </%s>", qname(top.Name), qname(t.Name))
			}
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]

		case xml.CharData:
			add(CharData(t))

		case xml.ProcInst:
			add(Raw("<?" + t.Target + " " + string(t.Inst) + "?>"))

		case xml.Comment:
			add(Raw("<!--" + string(t) + "-->"))

		case xml.Directive:
			add(Raw("<!" + string(t) + ">"))
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("decode xml: unclosed <%s>", qname(stack[len(stack)-1].Name))
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// bind returns a copy of scope with the namespace declaration applied.
func bind(scope map[string]string, a xml.Attr) map[string]string {
	out := make(map[string]string, len(scope)+1)
	for k, v := range scope {
		out[k] = v
	}
	if a.Name.Space == "xmlns" {
		out[a.Name.Local] = a.Value
	} else {
		out[""] = a.Value
	}
	return out
}

// Encode writes the document back out.
func (d *Document) Encode(w io.Writer) error {
	bw := &errWriter{w: w}
	for _, n := range d.Nodes {
		encodeNode(bw, n)
	}
	return bw.err
}

// Bytes encodes the document into a new slice.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) str(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func encodeNode(w *errWriter, n Node) {
	switch v := n.(type) {
	case *Element:
		encodeElement(w, v)
	case CharData:
		w.str(escapeText(string(v)))
	case Raw:
		w.str(string(v))
	}
}

func encodeElement(w *errWriter, e *Element) {
	name := qname(e.Name)
	w.str("<" + name)
	for _, a := range e.Attr {
		w.str(" " + qname(a.Name) + `="` + escapeAttr(a.Value) + `"`)
	}
	if len(e.Children) == 0 {
		w.str("/>")
		return
	}
	w.str(">")
	for _, c := range e.Children {
		encodeNode(w, c)
	}
	w.str("</" + name + ">")
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	`"`, "&quot;",
	"\t", "&#x9;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)

func escapeText(s string) string { return textEscaper.Replace(validChars(s)) }
func escapeAttr(s string) string { return attrEscaper.Replace(validChars(s)) }

// validChars replaces code points XML 1.0 cannot carry, and bytes that are
// not UTF-8, with U+FFFD.
func validChars(s string) string {
	ok := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !isXMLChar(r) {
			ok = false
			break
		}
		i += size
	}
	if ok {
		return s
	}
	s = strings.ToValidUTF8(s, "\uFFFD")
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return '\uFFFD'
	}, s)
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
