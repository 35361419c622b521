package wordml

import "strings"

// RewriteRuns replaces every occurrence of find in the concatenated text of
// runs with the replacement runs. Text around each occurrence becomes a run
// carrying a copy of the first run's properties; formatting of the other
// original runs is dropped. It reports false, returning runs unchanged, when
// find is empty or does not occur. Inputs are never modified.
func RewriteRuns(runs []Run, find string, replacement []Run) ([]Run, bool) {
	if find == "" || len(runs) == 0 {
		return runs, false
	}

	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	full := sb.String()
	if !strings.Contains(full, find) {
		return runs, false
	}

	base := runs[0].Props
	parts := strings.Split(full, find)
	out := make([]Run, 0, 2*len(parts)+len(replacement)*(len(parts)-1))
	for i, part := range parts {
		if part != "" {
			out = append(out, Run{Props: base.Clone(), Text: part})
		}
		if i == len(parts)-1 {
			break
		}
		for _, r := range replacement {
			out = append(out, Run{Props: r.Props.Clone(), Text: r.Text})
		}
	}
	return out, true
}

// Rewrite applies RewriteRuns to the paragraph in place and reports whether
// it changed.
func (p Paragraph) Rewrite(find string, replacement []Run) bool {
	runs, ok := RewriteRuns(p.Runs(), find, replacement)
	if !ok {
		return false
	}
	p.ReplaceRuns(runs)
	return true
}
