package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/dgallion1/cvforge/internal/docx"
	"github.com/dgallion1/cvforge/internal/parser"
)

// Worker processes a single tailoring job.
type Worker struct {
	newAnalyzer AnalyzerFunc
	log         *slog.Logger
	parserOpts  parser.Options
	backoff     func(int) time.Duration
}

func NewWorker(newAnalyzer AnalyzerFunc, log *slog.Logger, parserOpts parser.Options) *Worker {
	return &Worker{
		newAnalyzer: newAnalyzer,
		log:         log,
		parserOpts:  parserOpts,
		backoff:     Backoff,
	}
}

// Process runs extraction, analysis and the optional rewrite for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "provider", string(job.Provider))

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	cvName, cvData, jobName, jobData, jobPost := job.inputs()

	cvHTML, err := w.renderCV(cvName, cvData)
	if err != nil {
		w.fail(log, job, "extracting", "cv", err)
		return
	}
	if jobName != "" {
		tree, err := parser.Parse(bytes.NewReader(jobData), jobName, w.parserOpts)
		if err != nil {
			w.fail(log, job, "extracting", "job post", err)
			return
		}
		jobPost = parser.PlainText(tree)
	}
	if jobPost == "" {
		w.fail(log, job, "extracting", "job post", fmt.Errorf("no text"))
		return
	}
	log.Info("extracted inputs", "cv_html_len", len(cvHTML), "job_post_len", len(jobPost))

	// Phase 2: Analyze
	job.SetStatus(StatusAnalyzing, "analyzing")
	analyzer, err := w.newAnalyzer(job.Provider, job.Model, job.APIKey())
	if err != nil {
		w.fail(log, job, "analyzing", "analyzer", err)
		return
	}
	if c, ok := analyzer.(interface{ Close() }); ok {
		defer c.Close()
	}
	analysis, err := analyzeWithRetry(ctx, analyzer, cvHTML, jobPost, log, w.backoff)
	if err != nil {
		w.fail(log, job, "analyzing", "analyze", err)
		return
	}
	job.SetAnalysis(analysis)
	log.Info("analysis complete",
		"overall_score", analysis.OverallScore,
		"new_score", analysis.NewScore,
		"improvements", len(analysis.Improvements))

	if !job.AutoApply {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Apply every improvement.
	job.SetStatus(StatusApplying, "applying")
	reqs := critique.Requests(analysis.Improvements, nil, job.Font.Family, job.Font.Size)
	res, err := docx.Apply(cvData, reqs)
	if err != nil {
		w.fail(log, job, "applying", "apply", err)
		return
	}
	job.SetDocument(res.Data, res.Matches)
	log.Info("applied improvements", "requests", len(reqs), "changed", res.Changed())

	job.SetStatus(StatusCompleted, "done")
}

// renderCV turns a CV upload into the marked-up text the prompt embeds.
func (w *Worker) renderCV(filename string, data []byte) (string, error) {
	tree, err := parser.Parse(bytes.NewReader(data), filename, w.parserOpts)
	if err != nil {
		return "", err
	}
	if tree.Empty() {
		return "", fmt.Errorf("no extractable content")
	}
	return parser.RenderHTML(tree)
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase, what string, err error) {
	log.Error(what+" failed", "phase", phase, "error", err)
	job.AddError(fmt.Sprintf("%s: %s", what, err))
	job.SetStatus(StatusFailed, phase)
}
