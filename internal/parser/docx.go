package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/cvforge/internal/doctree"
	"github.com/fumiama/go-docx"
)

// maxDOCXBytes bounds what Parse will buffer.
const maxDOCXBytes = 64 << 20

// DOCXParser handles .docx files. Heading styles open sections, numbered
// or bulleted paragraphs become list items and table rows become
// paragraphs with cells joined by " | ".
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDOCXBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	if len(data) > maxDOCXBytes {
		return nil, fmt.Errorf("docx larger than %d bytes", maxDOCXBytes)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	title := strings.TrimSuffix(baseName(filename), ".docx")
	b := newSectionBuilder(title)
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			addDOCXParagraph(b, v)
		case *docx.Table:
			addDOCXTable(b, v)
		}
	}
	return b.tree(title), nil
}

func addDOCXParagraph(b *sectionBuilder, para *docx.Paragraph) {
	text := docxParagraphText(para)
	if text == "" {
		return
	}
	switch {
	case docxHeadingLevel(para) > 0:
		b.heading(docxHeadingLevel(para), text)
	case docxIsListItem(para):
		b.item(text)
	default:
		b.paragraph(text)
	}
}

func addDOCXTable(b *sectionBuilder, tbl *docx.Table) {
	for _, row := range tbl.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			if len(parts) > 0 {
				cells = append(cells, strings.Join(parts, " "))
			}
			for _, nested := range cell.Tables {
				addDOCXTable(b, nested)
			}
		}
		b.paragraph(strings.Join(cells, " | "))
	}
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if n, ok := strings.CutPrefix(style, "heading"); ok {
		if level, err := strconv.Atoi(n); err == nil && level >= 1 && level <= 6 {
			return level
		}
	}
	return 0
}

func docxIsListItem(para *docx.Paragraph) bool {
	if para.Properties == nil {
		return false
	}
	if np := para.Properties.NumProperties; np != nil && np.NumID != nil && np.NumID.Val != "" && np.NumID.Val != "0" {
		return true
	}
	if para.Properties.Style != nil {
		return strings.HasPrefix(strings.ToLower(para.Properties.Style.Val), "list")
	}
	return false
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch v := child.(type) {
		case *docx.Run:
			writeDOCXRun(&buf, v)
		case *docx.Hyperlink:
			writeDOCXRun(&buf, &v.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}

func writeDOCXRun(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch v := rc.(type) {
		case *docx.Text:
			buf.WriteString(v.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte(' ')
		}
	}
}
