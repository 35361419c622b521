package markup

import (
	"strings"
	"testing"
)

func TestParse_EmptyInput(t *testing.T) {
	if segs := Parse(""); len(segs) != 0 {
		t.Fatalf("expected no segments, got %d", len(segs))
	}
}

func TestParse_PlainTextIsSingleSegment(t *testing.T) {
	inputs := []string{
		"hello",
		"Responsible for deployments",
		"  leading and trailing  ",
		"numbers 1, 2 & 3 <ok>",
		"line one\nline two",
	}
	for _, in := range inputs {
		segs := Parse(in)
		if len(segs) != 1 {
			t.Fatalf("input %q: expected 1 segment, got %d", in, len(segs))
		}
		if segs[0].Text != in {
			t.Errorf("input %q: expected text %q, got %q", in, in, segs[0].Text)
		}
		if !segs[0].Plain() {
			t.Errorf("input %q: expected no formatting, got %+v", in, segs[0])
		}
	}
}

func TestParse_Markers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Segment
	}{
		{"bold italic", "***x***", Segment{Text: "x", Bold: true, Italic: true}},
		{"bold", "**x**", Segment{Text: "x", Bold: true}},
		{"italic star", "*x*", Segment{Text: "x", Italic: true}},
		{"underline", "__x__", Segment{Text: "x", Underline: true}},
		{"italic underscore", "_x_", Segment{Text: "x", Italic: true}},
		{"code", "`x`", Segment{Text: "x", Color: AccentColor}},
		{"spaces kept", "** padded **", Segment{Text: " padded ", Bold: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Parse(tt.in)
			if len(segs) != 1 {
				t.Fatalf("expected 1 segment, got %d: %+v", len(segs), segs)
			}
			if segs[0] != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, segs[0])
			}
		})
	}
}

func TestParse_MixedSentence(t *testing.T) {
	segs := Parse("**Automated** deployments, reducing release time by *50%*")
	want := []Segment{
		{Text: "Automated", Bold: true},
		{Text: " deployments, reducing release time by "},
		{Text: "50%", Italic: true},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d: expected %+v, got %+v", i, want[i], segs[i])
		}
	}
}

func TestParse_UnclosedMarkerIsLiteral(t *testing.T) {
	tests := []string{
		"**unclosed",
		"trailing *",
		"a * b",
		"snake_case",
		"tick ` here",
	}
	for _, in := range tests {
		segs := Parse(in)
		if len(segs) != 1 {
			t.Fatalf("input %q: expected 1 segment, got %d: %+v", in, len(segs), segs)
		}
		if segs[0].Text != in || !segs[0].Plain() {
			t.Errorf("input %q: expected literal plain text, got %+v", in, segs[0])
		}
	}
}

func TestParse_UnclosedAfterFormatted(t *testing.T) {
	segs := Parse("**done** and *open")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "done" || !segs[0].Bold {
		t.Errorf("expected bold %q, got %+v", "done", segs[0])
	}
	if segs[1].Text != " and *open" || !segs[1].Plain() {
		t.Errorf("expected plain %q, got %+v", " and *open", segs[1])
	}
}

func TestParse_PriorityOrder(t *testing.T) {
	// Triple stars win over double, double over single.
	segs := Parse("***a*** **b** *c*")
	if len(segs) != 5 {
		t.Fatalf("expected 5 segments, got %d: %+v", len(segs), segs)
	}
	if !(segs[0].Bold && segs[0].Italic) || segs[0].Text != "a" {
		t.Errorf("expected bold+italic a, got %+v", segs[0])
	}
	if !segs[2].Bold || segs[2].Italic || segs[2].Text != "b" {
		t.Errorf("expected bold b, got %+v", segs[2])
	}
	if segs[4].Bold || !segs[4].Italic || segs[4].Text != "c" {
		t.Errorf("expected italic c, got %+v", segs[4])
	}
}

func TestParse_NoNesting(t *testing.T) {
	segs := Parse("**bold _inner_ text**")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "bold _inner_ text" || !segs[0].Bold || segs[0].Italic {
		t.Errorf("expected bold with literal underscores, got %+v", segs[0])
	}
}

func TestParse_ContentRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**b** *i* __u__ _j_ `c` ***bi***", "b i u j c bi"},
		{"Led a team of **12** engineers", "Led a team of 12 engineers"},
		{"`Go`, `Kubernetes` and __Terraform__", "Go, Kubernetes and Terraform"},
	}
	for _, tt := range tests {
		if got := Text(Parse(tt.in)); got != tt.want {
			t.Errorf("input %q: expected %q, got %q", tt.in, tt.want, got)
		}
		if got := Strip(tt.in); got != tt.want {
			t.Errorf("Strip(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestParse_SegmentsInSourceOrder(t *testing.T) {
	in := "one **two** three *four* five"
	var sb strings.Builder
	for _, s := range Parse(in) {
		sb.WriteString(s.Text)
		sb.WriteString("|")
	}
	if got, want := sb.String(), "one |two| three |four| five|"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
