package critique

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const maxImprovements = 50

// wireAnalysis is the answer as providers send it. Scores sometimes arrive
// as decimals or strings, so they are decoded loosely.
type wireAnalysis struct {
	OverallScore json.Number `json:"overallScore"`
	Strengths    []string    `json:"strengths"`
	Improvements []struct {
		OriginalText string `json:"originalText"`
		Suggestion   string `json:"suggestion"`
	} `json:"improvements"`
	NewScore json.Number `json:"newScore"`
}

// ParseAnalysis decodes and validates a provider answer. Suggestions equal
// to their original are dropped and IDs are assigned by position.
// Any shape problem is a *CollaboratorError.
func ParseAnalysis(text string) (*Analysis, error) {
	body := extractObject(stripCodeBlock(text))
	if body == "" {
		return nil, &CollaboratorError{Message: "no JSON object in response: " + truncate(text, 200)}
	}

	var w wireAnalysis
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return nil, &CollaboratorError{Message: "decode analysis", Err: err}
	}

	overall, err := score("overallScore", w.OverallScore)
	if err != nil {
		return nil, err
	}
	newScore, err := score("newScore", w.NewScore)
	if err != nil {
		return nil, err
	}
	if len(w.Improvements) > maxImprovements {
		return nil, &CollaboratorError{Message: fmt.Sprintf("too many improvements (%d)", len(w.Improvements))}
	}

	a := &Analysis{
		OverallScore: overall,
		NewScore:     newScore,
		Improvements: make([]Improvement, 0, len(w.Improvements)),
	}
	for _, s := range w.Strengths {
		if s = strings.TrimSpace(s); s != "" {
			a.Strengths = append(a.Strengths, s)
		}
	}
	for i, imp := range w.Improvements {
		orig := strings.TrimSpace(imp.OriginalText)
		sugg := strings.TrimSpace(imp.Suggestion)
		if orig == "" || sugg == "" {
			return nil, &CollaboratorError{Message: fmt.Sprintf("improvement %d: originalText and suggestion are required", i)}
		}
		if orig == sugg {
			continue
		}
		a.Improvements = append(a.Improvements, Improvement{
			ID:           len(a.Improvements),
			OriginalText: orig,
			Suggestion:   sugg,
		})
	}
	return a, nil
}

// extractObject returns the outermost {...} span of s.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func score(field string, n json.Number) (int, error) {
	if n == "" {
		return 0, &CollaboratorError{Message: field + " is missing"}
	}
	f, err := n.Float64()
	if err != nil {
		return 0, &CollaboratorError{Message: field + " is not a number", Err: err}
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		return 0, &CollaboratorError{Message: fmt.Sprintf("%s %v out of range 0..100", field, f)}
	}
	return int(math.Round(f)), nil
}
