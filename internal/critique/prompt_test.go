package critique

import (
	"strings"
	"testing"
)

func TestBuildPrompt_EmbedsInputsAndSyntax(t *testing.T) {
	p := BuildPrompt("  <p>Go developer</p>\n", "Senior Go engineer wanted")
	for _, want := range []string{"<p>Go developer</p>", "Senior Go engineer wanted", "**text** bold", "__text__ underline", `"originalText"`} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Index(p, "Go developer") > strings.Index(p, "Senior Go engineer") {
		t.Error("CV should come before the job post")
	}
}

func TestFitPrompt_NoBudget(t *testing.T) {
	cv := strings.Repeat("word ", 5000)
	if got := FitPrompt(cv, "job", 0); got != BuildPrompt(cv, "job") {
		t.Error("zero budget should not truncate")
	}
}

func TestFitPrompt_TruncatesToBudget(t *testing.T) {
	cv := strings.Repeat("cv ", 10000)
	job := strings.Repeat("job ", 10000)
	budget := EstimateTokens(BuildPrompt("", "")) + 1000
	got := FitPrompt(cv, job, budget)
	if n := EstimateTokens(got); n > budget {
		t.Errorf("expected at most %d tokens, got %d", budget, n)
	}
	if !strings.Contains(got, "cv cv") || !strings.Contains(got, "job job") {
		t.Error("both inputs should survive truncation")
	}
}

func TestFitPrompt_SmallInputsUntouched(t *testing.T) {
	if got := FitPrompt("cv", "job", 100000); got != BuildPrompt("cv", "job") {
		t.Error("prompt under budget should not change")
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one two three", 3},
		{strings.Repeat("w ", 100), 133},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestTruncateToTokens(t *testing.T) {
	text := "alpha  beta\ngamma delta epsilon"
	if got := TruncateToTokens(text, 100); got != text {
		t.Errorf("expected text unchanged, got %q", got)
	}
	// 4 tokens fit 3 words.
	if got := TruncateToTokens(text, 4); got != "alpha  beta\ngamma" {
		t.Errorf("expected spacing kept, got %q", got)
	}
	if got := TruncateToTokens(text, 0); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
