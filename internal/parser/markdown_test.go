package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_JobPostSections(t *testing.T) {
	input := `# Senior Platform Engineer

Acme Cloud is hiring for its infrastructure group.

## Responsibilities

Own the deployment pipeline.

### On-call

Share a weekly rotation.

## Requirements

Five years of Go.
`
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "platform-engineer.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "platform-engineer" {
		t.Errorf("expected title %q, got %q", "platform-engineer", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(tree.Children))
	}

	role := tree.Children[0]
	if role.Title != "Senior Platform Engineer" {
		t.Errorf("expected role heading, got %q", role.Title)
	}
	if !strings.Contains(role.Text, "Acme Cloud is hiring") {
		t.Errorf("expected company blurb under the role, got %q", role.Text)
	}
	if len(role.Children) != 2 {
		t.Fatalf("expected responsibilities and requirements, got %d sections", len(role.Children))
	}

	duties := role.Children[0]
	if duties.Title != "Responsibilities" || !strings.Contains(duties.Text, "deployment pipeline") {
		t.Errorf("unexpected responsibilities section %q: %q", duties.Title, duties.Text)
	}
	if len(duties.Children) != 1 || duties.Children[0].Title != "On-call" {
		t.Fatalf("expected an On-call subsection, got %+v", duties.Children)
	}
	if reqs := role.Children[1]; reqs.Title != "Requirements" || !strings.Contains(reqs.Text, "Five years of Go.") {
		t.Errorf("unexpected requirements section %q: %q", reqs.Title, reqs.Text)
	}
}

func TestMarkdownParser_CVWithoutHeadings(t *testing.T) {
	input := "Jane Doe, Site Reliability Engineer.\n\nAutomated deployments for 40 services."
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "jane.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 section for headingless markdown, got %d", len(tree.Children))
	}
	text := tree.Children[0].Text
	for _, want := range []string{"Jane Doe, Site Reliability Engineer.", "Automated deployments for 40 services."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
}

func TestMarkdownParser_CodeBlockInJobPost(t *testing.T) {
	input := "# Backend Engineer\n\n## Take-home\n\nImplement this interface:\n\n```\ntype Store interface {\n\tGet(key string) ([]byte, error)\n}\n```\n\nSubmit within a week.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "backend.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 || len(tree.Children[0].Children) != 1 {
		t.Fatalf("expected role with one subsection, got %+v", tree.Children)
	}
	task := tree.Children[0].Children[0]
	if task.Title != "Take-home" {
		t.Errorf("expected %q, got %q", "Take-home", task.Title)
	}
	if !strings.Contains(task.Text, "type Store interface") {
		t.Errorf("expected code block content, got %q", task.Text)
	}
	if !strings.Contains(task.Text, "Submit within a week.") {
		t.Errorf("expected text after the code block, got %q", task.Text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(tree.Children))
	}
}

func TestMarkdownParser_TitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"jane-doe-cv.md", "jane-doe-cv"},
		{"sre-posting.markdown", "sre-posting"},
	}
	for _, tt := range tests {
		tree, err := (&MarkdownParser{}).Parse(strings.NewReader("Go, Kubernetes"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if tree.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, tree.Title)
		}
	}
}

func TestMarkdownParser_ListsAndInlineMarkup(t *testing.T) {
	input := "# Requirements\n\nWe want **strong** Go skills and [docs](https://example.com).\n\n- Kubernetes\n- *Terraform*\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "job.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Children))
	}
	want := "We want strong Go skills and docs.\n\n• Kubernetes\n• Terraform"
	if got := tree.Children[0].Text; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownParser_PreambleKept(t *testing.T) {
	input := "Jane Doe, jane@example.com\n\n# Experience\n\nAcme Cloud, 2019-2024."
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "jane.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected preamble plus section, got %d", len(tree.Children))
	}
	if tree.Children[0].Text != "Jane Doe, jane@example.com" {
		t.Errorf("unexpected preamble %q", tree.Children[0].Text)
	}
}
