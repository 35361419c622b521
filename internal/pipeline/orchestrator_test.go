package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/cvforge/internal/config"
	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/dgallion1/cvforge/internal/docx"
	godocx "github.com/fumiama/go-docx"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    int
	failures []error
	result   *critique.Analysis
	cvHTML   string
	jobPost  string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, cvHTML, jobPost string) (*critique.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.cvHTML, f.jobPost = cvHTML, jobPost
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildCV(t *testing.T) []byte {
	t.Helper()
	doc := godocx.New()
	doc.AddParagraph().AddText("Jane Doe")
	doc.AddParagraph().Style("Heading1").AddText("Experience")
	doc.AddParagraph().AddText("Responsible for deployments")
	doc.AddParagraph().AddText("Maintained scripts")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func sampleAnalysis() *critique.Analysis {
	return &critique.Analysis{
		OverallScore: 60,
		NewScore:     85,
		Improvements: []critique.Improvement{
			{ID: 0, OriginalText: "Responsible for deployments", Suggestion: "**Automated** deployments"},
			{ID: 1, OriginalText: "Maintained scripts", Suggestion: "Wrote *Go* tooling"},
		},
	}
}

func startOrchestrator(t *testing.T, a critique.Analyzer) *Orchestrator {
	t.Helper()
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 4, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, func(critique.Provider, string, string) (critique.Analyzer, error) {
		return a, nil
	}, discardLogger())
	o.backoff = func(int) time.Duration { return 0 }
	o.Start(context.Background())
	t.Cleanup(o.Stop)
	return o
}

func waitForStatus(t *testing.T, job *Job, want ...JobStatus) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		for _, s := range want {
			if snap.Status == s {
				return snap
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job did not reach %v, last status %q", want, job.Snapshot().Status)
	return JobSnapshot{}
}

func TestOrchestrator_AnalyzeOnly(t *testing.T) {
	fa := &fakeAnalyzer{result: sampleAnalysis()}
	o := startOrchestrator(t, fa)

	job := NewJob("cv.docx", buildCV(t), "We need Go and automation.")
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitForStatus(t, job, StatusCompleted, StatusFailed)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Errors)
	}
	if snap.HasDocument {
		t.Error("expected no document without auto-apply")
	}
	if !strings.Contains(fa.cvHTML, "<h1>Experience</h1>") {
		t.Errorf("expected CV rendered as HTML, got %q", fa.cvHTML)
	}
	if fa.jobPost != "We need Go and automation." {
		t.Errorf("expected job post text passed through, got %q", fa.jobPost)
	}
	if o.GetJob(job.ID) != job {
		t.Error("expected job to be retrievable")
	}
}

func TestOrchestrator_AutoApply(t *testing.T) {
	o := startOrchestrator(t, &fakeAnalyzer{result: sampleAnalysis()})

	job := NewJob("cv.docx", buildCV(t), "Go role")
	job.AutoApply = true
	job.Font = Font{Family: "Calibri", Size: 11}
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitForStatus(t, job, StatusCompleted, StatusFailed)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Errors)
	}
	if len(snap.Matches) != 2 || snap.Matches[0] != 1 || snap.Matches[1] != 1 {
		t.Errorf("expected one match per improvement, got %v", snap.Matches)
	}

	paras, err := docx.BodyText(job.Document())
	if err != nil {
		t.Fatalf("BodyText: %v", err)
	}
	joined := strings.Join(paras, "\n")
	if !strings.Contains(joined, "Automated deployments") || !strings.Contains(joined, "Wrote Go tooling") {
		t.Errorf("expected rewritten paragraphs, got %q", joined)
	}
}

func TestOrchestrator_RetriesRetryableErrors(t *testing.T) {
	fa := &fakeAnalyzer{
		result:   sampleAnalysis(),
		failures: []error{&critique.RetryableError{StatusCode: 429, Message: "slow down"}},
	}
	o := startOrchestrator(t, fa)

	job := NewJob("cv.docx", buildCV(t), "Go role")
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitForStatus(t, job, StatusCompleted, StatusFailed)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed after retry, got %q (%v)", snap.Status, snap.Errors)
	}
	if fa.Calls() != 2 {
		t.Errorf("expected 2 calls, got %d", fa.Calls())
	}
}

func TestOrchestrator_NonRetryableFails(t *testing.T) {
	fa := &fakeAnalyzer{failures: []error{&critique.CollaboratorError{Provider: "openai", Message: "bad shape"}}}
	o := startOrchestrator(t, fa)

	job := NewJob("cv.docx", buildCV(t), "Go role")
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitForStatus(t, job, StatusCompleted, StatusFailed)
	if snap.Status != StatusFailed || snap.Phase != "analyzing" {
		t.Fatalf("expected failure in analyzing, got %q/%q", snap.Status, snap.Phase)
	}
	if fa.Calls() != 1 {
		t.Errorf("expected no retries, got %d calls", fa.Calls())
	}
	if len(snap.Errors) != 1 {
		t.Errorf("expected one recorded error, got %v", snap.Errors)
	}
}

func TestOrchestrator_UnsupportedJobFileFails(t *testing.T) {
	o := startOrchestrator(t, &fakeAnalyzer{result: sampleAnalysis()})

	job := NewJob("cv.docx", buildCV(t), "")
	job.SetJobFile("post.xls", []byte("binary"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitForStatus(t, job, StatusCompleted, StatusFailed)
	if snap.Status != StatusFailed || snap.Phase != "extracting" {
		t.Errorf("expected failure in extracting, got %q/%q", snap.Status, snap.Phase)
	}
}

func TestOrchestrator_ApplySelected(t *testing.T) {
	o := startOrchestrator(t, &fakeAnalyzer{result: sampleAnalysis()})

	cv := buildCV(t)
	job := NewJob("cv.docx", cv, "Go role")
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitForStatus(t, job, StatusCompleted, StatusFailed)

	res, err := o.ApplySelected(job.ID, []int{1}, Font{})
	if err != nil {
		t.Fatalf("ApplySelected: %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0] != 1 {
		t.Errorf("expected one request with one match, got %v", res.Matches)
	}
	paras, err := docx.BodyText(res.Data)
	if err != nil {
		t.Fatalf("BodyText: %v", err)
	}
	joined := strings.Join(paras, "\n")
	if !strings.Contains(joined, "Responsible for deployments") {
		t.Error("expected unselected improvement to be left alone")
	}
	if !strings.Contains(joined, "Wrote Go tooling") {
		t.Error("expected selected improvement to be applied")
	}
	if !bytes.Equal(job.CVData(), cv) {
		t.Error("expected original CV bytes to be untouched")
	}
}

func TestOrchestrator_ApplySelectedErrors(t *testing.T) {
	o := startOrchestrator(t, &fakeAnalyzer{result: sampleAnalysis()})

	if _, err := o.ApplySelected("missing", nil, Font{}); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}

	job := NewJob("cv.docx", nil, "")
	o.jobs.Put(job)
	if _, err := o.ApplySelected(job.ID, nil, Font{}); !errors.Is(err, ErrNoAnalysis) {
		t.Errorf("expected ErrNoAnalysis, got %v", err)
	}

	job.SetAnalysis(sampleAnalysis())
	_, err := o.ApplySelected(job.ID, nil, Font{})
	var ce *docx.ContainerError
	if !errors.As(err, &ce) {
		t.Errorf("expected ContainerError for an empty CV, got %v", err)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 0, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, nil, discardLogger())

	if err := o.Submit(NewJob("a.docx", nil, "x")); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.docx", nil, "x")
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if second.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %q", second.Snapshot().Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	o.Stop()
	if err := o.Submit(NewJob("c.docx", nil, "x")); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed after Stop, got %v", err)
	}
}

func TestAnalyzeWithRetry_GivesUp(t *testing.T) {
	retry := &critique.RetryableError{StatusCode: 503, Message: "down"}
	fa := &fakeAnalyzer{failures: []error{retry, retry, retry, retry}}
	_, err := analyzeWithRetry(context.Background(), fa, "cv", "job", discardLogger(), func(int) time.Duration { return 0 })
	if !IsRetryable(err) {
		t.Errorf("expected the last retryable error, got %v", err)
	}
	if fa.Calls() != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, fa.Calls())
	}
}

func TestAnalyzeWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fa := &fakeAnalyzer{failures: []error{&critique.RetryableError{StatusCode: 500}}}
	_, err := analyzeWithRetry(ctx, fa, "cv", "job", discardLogger(), func(int) time.Duration { return time.Hour })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, expected in [%v, %v)", attempt, d, base, base+base/2)
		}
	}
	if d := Backoff(10); d < 30*time.Second || d >= 45*time.Second {
		t.Errorf("expected capped backoff, got %v", d)
	}
}
