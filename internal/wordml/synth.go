package wordml

import (
	"strconv"

	"github.com/dgallion1/cvforge/internal/markup"
)

// Override is formatting applied to every synthesized run on top of the
// segment's own. Zero values leave the segment alone.
type Override struct {
	FontFamily string
	FontSize   int // points
}

// Synthesize turns parsed segments into runs, one per segment.
func Synthesize(segs []markup.Segment, o Override) []Run {
	runs := make([]Run, 0, len(segs))
	for _, s := range segs {
		if o.FontFamily != "" {
			s.FontFamily = o.FontFamily
		}
		if o.FontSize > 0 {
			s.FontSize = o.FontSize
		}
		runs = append(runs, Run{Props: Properties(s), Text: s.Text})
	}
	return runs
}

// Properties builds the w:rPr for a segment, children in schema order.
// It returns nil for a plain segment.
func Properties(s markup.Segment) *Element {
	if s.Plain() {
		return nil
	}
	rpr := NewElement("rPr")
	if s.FontFamily != "" {
		rpr.Append(NewElement("rFonts",
			Attr("ascii", s.FontFamily),
			Attr("hAnsi", s.FontFamily),
			Attr("cs", s.FontFamily),
		))
	}
	if s.Bold {
		rpr.Append(NewElement("b"))
	}
	if s.Italic {
		rpr.Append(NewElement("i"))
	}
	if s.Color != "" {
		rpr.Append(NewElement("color", Val(s.Color)))
	}
	if s.FontSize > 0 {
		// w:sz is measured in half-points.
		rpr.Append(NewElement("sz", Val(strconv.Itoa(s.FontSize*2))))
	}
	if s.Highlight != "" {
		rpr.Append(NewElement("highlight", Val(s.Highlight)))
	}
	if s.Underline {
		rpr.Append(NewElement("u", Val("single")))
	}
	return rpr
}
