// Package markup parses the small emphasis dialect used in rewrite
// suggestions into formatted text segments.
//
// Supported markers, highest priority first:
//
//	***text***  bold + italic
//	**text**    bold
//	*text*      italic
//	__text__    underline
//	_text_      italic
//	`text`      accent color
//
// Markers do not nest. A marker without a closing pair is kept as literal text.
package markup

import (
	"regexp"
	"strings"
)

// AccentColor is the hex color (no leading '#') applied to `code` spans.
const AccentColor = "0000FF"

// Segment is a span of text with one consistent formatting state.
// Zero values mean "unspecified", never "explicitly off".
type Segment struct {
	Text       string
	Bold       bool
	Italic     bool
	Underline  bool
	Color      string // hex, e.g. "FF0000"
	FontSize   int    // points
	Highlight  string // color name, e.g. "yellow"
	FontFamily string
}

// Plain reports whether the segment carries no formatting at all.
func (s Segment) Plain() bool {
	return !s.Bold && !s.Italic && !s.Underline &&
		s.Color == "" && s.FontSize <= 0 && s.Highlight == "" && s.FontFamily == ""
}

// Alternation order is the priority order; Go's regexp is leftmost-first.
var tokenRe = regexp.MustCompile("\\*\\*\\*(.+?)\\*\\*\\*" +
	"|\\*\\*(.+?)\\*\\*" +
	"|\\*(.+?)\\*" +
	"|__(.+?)__" +
	"|_(.+?)_" +
	"|`(.+?)`" +
	"|([^*_`]+)")

// group indexes into tokenRe submatches.
const (
	grpBoldItalic = 1 + iota
	grpBold
	grpItalic
	grpUnderline
	grpItalicUnderscore
	grpCode
	grpPlain
)

// Parse splits s into ordered segments. It never fails.
func Parse(s string) []Segment {
	if s == "" {
		return nil
	}

	var segs []Segment
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			segs = append(segs, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	pos := 0
	for _, m := range tokenRe.FindAllStringSubmatchIndex(s, -1) {
		// Characters the regexp skipped are stray markers.
		if m[0] > pos {
			plain.WriteString(s[pos:m[0]])
		}
		pos = m[1]

		seg, ok := segmentFor(s, m)
		if !ok {
			plain.WriteString(s[m[0]:m[1]])
			continue
		}
		flush()
		segs = append(segs, seg)
	}
	if pos < len(s) {
		plain.WriteString(s[pos:])
	}
	flush()
	return segs
}

// segmentFor builds the formatted segment for a match. ok is false for plain text.
func segmentFor(s string, m []int) (Segment, bool) {
	group := func(g int) (string, bool) {
		if m[2*g] < 0 {
			return "", false
		}
		return s[m[2*g]:m[2*g+1]], true
	}

	if t, ok := group(grpBoldItalic); ok {
		return Segment{Text: t, Bold: true, Italic: true}, true
	}
	if t, ok := group(grpBold); ok {
		return Segment{Text: t, Bold: true}, true
	}
	if t, ok := group(grpItalic); ok {
		return Segment{Text: t, Italic: true}, true
	}
	if t, ok := group(grpUnderline); ok {
		return Segment{Text: t, Underline: true}, true
	}
	if t, ok := group(grpItalicUnderscore); ok {
		return Segment{Text: t, Italic: true}, true
	}
	if t, ok := group(grpCode); ok {
		return Segment{Text: t, Color: AccentColor}, true
	}
	return Segment{}, false
}

// Text concatenates the text of every segment.
func Text(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Strip returns s with all matched emphasis markers removed.
func Strip(s string) string {
	return Text(Parse(s))
}
