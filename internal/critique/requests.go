package critique

import (
	"html"
	"strings"

	"github.com/dgallion1/cvforge/internal/docx"
)

// Requests turns improvements into document edits. ids selects improvements
// by ID; an empty ids selects all of them. Edits keep the order of
// improvements, not of ids. The font settings apply to every edit.
func Requests(improvements []Improvement, ids []int, fontFamily string, fontSize int) []docx.Request {
	var selected map[int]bool
	if len(ids) > 0 {
		selected = make(map[int]bool, len(ids))
		for _, id := range ids {
			selected[id] = true
		}
	}

	reqs := make([]docx.Request, 0, len(improvements))
	for _, imp := range improvements {
		if selected != nil && !selected[imp.ID] {
			continue
		}
		// The CV went out as HTML, so entities may come back in the quote.
		find := strings.TrimSpace(html.UnescapeString(imp.OriginalText))
		if find == "" {
			continue
		}
		reqs = append(reqs, docx.Request{
			Find:       find,
			Replace:    imp.Suggestion,
			FontFamily: fontFamily,
			FontSize:   fontSize,
		})
	}
	return reqs
}
