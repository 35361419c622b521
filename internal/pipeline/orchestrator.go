package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/cvforge/internal/config"
	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/dgallion1/cvforge/internal/docx"
	"github.com/dgallion1/cvforge/internal/parser"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrNoAnalysis  = errors.New("job has no analysis yet")
	ErrQueueClosed = errors.New("pipeline is stopped")
)

// AnalyzerFunc builds the analyzer for a job. An empty apiKey means the
// server-side key for the provider.
type AnalyzerFunc func(provider critique.Provider, model, apiKey string) (critique.Analyzer, error)

// Orchestrator manages the tailoring pipeline.
type Orchestrator struct {
	jobs        *JobStore
	queue       chan *Job
	newAnalyzer AnalyzerFunc
	log         *slog.Logger
	cfg         config.Config
	backoff     func(int) time.Duration

	mu     sync.Mutex
	closed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, newAnalyzer AnalyzerFunc, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:        NewJobStore(cfg.JobTTL),
		queue:       make(chan *Job, cfg.MaxQueueSize),
		newAnalyzer: newAnalyzer,
		log:         log,
		cfg:         cfg,
		backoff:     Backoff,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	parserOpts := parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.newAnalyzer, o.log, parserOpts)
			w.backoff = o.backoff
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrQueueClosed
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// ApplySelected rewrites the job's original CV with the improvements whose
// IDs are listed. No IDs selects every improvement. A zero font falls back
// to the one the job was submitted with.
func (o *Orchestrator) ApplySelected(jobID string, ids []int, font Font) (*docx.Result, error) {
	job := o.jobs.Get(jobID)
	if job == nil {
		return nil, ErrJobNotFound
	}
	analysis := job.Analysis()
	if analysis == nil {
		return nil, ErrNoAnalysis
	}
	if font == (Font{}) {
		font = job.Font
	}

	reqs := critique.Requests(analysis.Improvements, ids, font.Family, font.Size)
	res, err := docx.Apply(job.CVData(), reqs)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	o.log.Info("applied selected improvements", "job_id", jobID, "requests", len(reqs), "changed", res.Changed())
	return res, nil
}
