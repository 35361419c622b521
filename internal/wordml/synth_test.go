package wordml

import (
	"strings"
	"testing"

	"github.com/dgallion1/cvforge/internal/markup"
)

func propsXML(t *testing.T, e *Element) string {
	t.Helper()
	if e == nil {
		return ""
	}
	return mustEncode(t, &Document{Nodes: []Node{e}})
}

func TestSynthesize_OneRunPerSegment(t *testing.T) {
	segs := markup.Parse("**Automated** deployments, reducing release time by *50%*")
	runs := Synthesize(segs, Override{})
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if got := propsXML(t, runs[0].Props); got != `<w:rPr><w:b/></w:rPr>` {
		t.Errorf("run 0 props: %s", got)
	}
	if runs[1].Props != nil {
		t.Errorf("run 1 should be plain")
	}
	if got := propsXML(t, runs[2].Props); got != `<w:rPr><w:i/></w:rPr>` {
		t.Errorf("run 2 props: %s", got)
	}
}

func TestSynthesize_OverrideAppliesToEveryRun(t *testing.T) {
	runs := Synthesize(markup.Parse("plain `code`"), Override{FontFamily: "Arial", FontSize: 11})
	want := []string{
		`<w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/><w:sz w:val="22"/></w:rPr>`,
		`<w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/><w:color w:val="0000FF"/><w:sz w:val="22"/></w:rPr>`,
	}
	if len(runs) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(runs))
	}
	for i := range want {
		if got := propsXML(t, runs[i].Props); got != want[i] {
			t.Errorf("run %d\nwant: %s\n got: %s", i, want[i], got)
		}
	}
}

func TestProperties_SchemaOrder(t *testing.T) {
	s := markup.Segment{
		Text: "x", Bold: true, Italic: true, Underline: true,
		Color: "FF0000", FontSize: 12, Highlight: "yellow", FontFamily: "Calibri",
	}
	got := propsXML(t, Properties(s))
	order := []string{"rFonts", "<w:b/>", "<w:i/>", "color", `sz w:val="24"`, "highlight", `u w:val="single"`}
	last := -1
	for _, tok := range order {
		idx := strings.Index(got, tok)
		if idx < 0 {
			t.Fatalf("missing %s in %s", tok, got)
		}
		if idx < last {
			t.Errorf("%s out of order in %s", tok, got)
		}
		last = idx
	}
}

func TestProperties_PlainIsNil(t *testing.T) {
	if Properties(markup.Segment{Text: "x"}) != nil {
		t.Error("expected nil properties for plain text")
	}
}

func TestRun_ElementPreservesSpace(t *testing.T) {
	got := propsXML(t, Run{Text: " padded "}.Element())
	if got != `<w:r><w:t xml:space="preserve"> padded </w:t></w:r>` {
		t.Errorf("got %s", got)
	}
}
