package parser

import (
	"strings"

	"github.com/dgallion1/cvforge/internal/doctree"
)

// sectionBuilder nests paragraphs under the most recent heading of a lower
// level. Every structured parser feeds it blocks in document order.
type sectionBuilder struct {
	root  *doctree.DocNode
	stack []sectionEntry
	text  strings.Builder
}

type sectionEntry struct {
	node  *doctree.DocNode
	level int
}

func newSectionBuilder(title string) *sectionBuilder {
	root := &doctree.DocNode{Title: title}
	return &sectionBuilder{
		root:  root,
		stack: []sectionEntry{{node: root, level: 0}},
	}
}

// heading opens a section at level (1 = top).
func (b *sectionBuilder) heading(level int, title string) {
	b.flush()
	node := &doctree.DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, sectionEntry{node: node, level: level})
}

// paragraph adds a block of text to the open section.
func (b *sectionBuilder) paragraph(t string) {
	if t = strings.TrimSpace(t); t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

// item adds a list item. Consecutive items stay in one block.
func (b *sectionBuilder) item(t string) {
	if t = strings.TrimSpace(t); t == "" {
		return
	}
	if b.text.Len() > 0 {
		if strings.HasPrefix(b.lastLine(), doctree.Bullet) {
			b.text.WriteString("\n")
		} else {
			b.text.WriteString("\n\n")
		}
	}
	b.text.WriteString(doctree.Bullet + t)
}

func (b *sectionBuilder) lastLine() string {
	s := b.text.String()
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (b *sectionBuilder) flush() {
	t := strings.TrimSpace(b.text.String())
	if t != "" {
		top := b.stack[len(b.stack)-1].node
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
	}
	b.text.Reset()
}

// tree finishes the document. Text before the first heading becomes a
// leading untitled section.
func (b *sectionBuilder) tree(title string) *doctree.DocTree {
	b.flush()
	tree := &doctree.DocTree{Title: title, Children: b.root.Children}
	if b.root.Text != "" {
		tree.Children = append([]*doctree.DocNode{{Text: b.root.Text}}, tree.Children...)
	}
	return tree
}
