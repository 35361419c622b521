package doctree

import (
	"regexp"
	"strings"
)

// Bullet prefixes a line that came from a list item.
const Bullet = "• "

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Paragraphs separated by blank lines; list items start with Bullet
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Empty reports whether the tree holds no text at all.
func (t *DocTree) Empty() bool {
	if t == nil {
		return true
	}
	for _, n := range t.Children {
		if !n.empty() {
			return false
		}
	}
	return true
}

func (n *DocNode) empty() bool {
	if strings.TrimSpace(n.Title) != "" || strings.TrimSpace(n.Text) != "" {
		return false
	}
	for _, c := range n.Children {
		if !c.empty() {
			return false
		}
	}
	return true
}

// PlainText flattens the tree: headings and paragraphs separated by blank
// lines, in document order.
func PlainText(t *DocTree) string {
	if t == nil {
		return ""
	}
	var blocks []string
	var walk func(n *DocNode)
	walk = func(n *DocNode) {
		if s := strings.TrimSpace(n.Title); s != "" {
			blocks = append(blocks, s)
		}
		if s := strings.TrimSpace(n.Text); s != "" {
			blocks = append(blocks, s)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range t.Children {
		walk(n)
	}
	return strings.Join(blocks, "\n\n")
}

// Markdown renders the tree as CommonMark. Section depth becomes the
// heading level and Bullet lines become list items. Text is escaped so it
// renders literally.
func Markdown(t *DocTree) string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(n *DocNode, depth int)
	walk = func(n *DocNode, depth int) {
		if s := strings.TrimSpace(n.Title); s != "" {
			sb.WriteString(strings.Repeat("#", min(depth, 6)))
			sb.WriteByte(' ')
			sb.WriteString(escapeLine(s))
			sb.WriteString("\n\n")
		}
		for _, para := range strings.Split(n.Text, "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				writeParagraph(&sb, para)
			}
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, n := range t.Children {
		walk(n, 1)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeParagraph(sb *strings.Builder, para string) {
	lines := strings.Split(para, "\n")
	inList := false
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if item, ok := strings.CutPrefix(line, strings.TrimSpace(Bullet)); ok {
			if !inList && i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString("- ")
			sb.WriteString(escapeLine(strings.TrimSpace(item)))
			sb.WriteByte('\n')
			inList = true
			continue
		}
		if inList {
			sb.WriteByte('\n')
			inList = false
		}
		sb.WriteString(escapeLine(line))
		if i < len(lines)-1 {
			// Hard break keeps the source line structure.
			sb.WriteString("\\")
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
}

var (
	inlineEscaper = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
		"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "|", `\|`,
	)
	leadingBlockRe = regexp.MustCompile(`^(#{1,6}|[-+=]|\d{1,9}[.)])(\s|$)`)
)

// escapeLine escapes inline markup and anything that would start a block.
func escapeLine(s string) string {
	s = inlineEscaper.Replace(s)
	if m := leadingBlockRe.FindStringSubmatchIndex(s); m != nil {
		end := m[3]
		return s[:end-1] + `\` + s[end-1:]
	}
	return s
}
