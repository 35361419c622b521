package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/cvforge/internal/critique"
	"github.com/google/uuid"
)

// JobStatus represents the state of a tailoring job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusAnalyzing  JobStatus = "analyzing"
	StatusApplying   JobStatus = "applying"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Font is the formatting override applied to suggestion runs.
type Font struct {
	Family string `json:"font_family,omitempty"`
	Size   int    `json:"font_size,omitempty"`
}

// Job tracks one CV tailored against one job post.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	CVFilename  string `json:"cv_filename"`
	JobFilename string `json:"job_filename,omitempty"`

	Provider  critique.Provider `json:"provider"`
	Model     string            `json:"model"`
	AutoApply bool              `json:"auto_apply"`
	Font      Font              `json:"font"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	cvData   []byte
	jobPost  string
	jobData  []byte
	apiKey   string
	analysis *critique.Analysis
	document []byte
	matches  []int
	errors   []string
}

// NewJob creates a queued job for a CV and a job post given as text.
func NewJob(cvFilename string, cvData []byte, jobPost string) *Job {
	now := time.Now()
	return &Job{
		ID:         uuid.NewString(),
		Status:     StatusQueued,
		Phase:      "queued",
		CVFilename: cvFilename,
		CreatedAt:  now,
		UpdatedAt:  now,
		cvData:     cvData,
		jobPost:    jobPost,
	}
}

// SetJobFile replaces the job post text with an uploaded file that is
// parsed during extraction.
func (j *Job) SetJobFile(filename string, data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.JobFilename = filename
	j.jobData = data
	j.jobPost = ""
}

// SetAPIKey sets the provider key used for this job only.
func (j *Job) SetAPIKey(key string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.apiKey = key
}

// APIKey returns the per-job provider key, if any.
func (j *Job) APIKey() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.apiKey
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetAnalysis stores the validated AI answer.
func (j *Job) SetAnalysis(a *critique.Analysis) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.analysis = a
	j.UpdatedAt = time.Now()
}

// Analysis returns the AI answer, or nil before the analyzing phase ends.
func (j *Job) Analysis() *critique.Analysis {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.analysis
}

// SetDocument stores the rewritten .docx and its per-request match counts.
func (j *Job) SetDocument(data []byte, matches []int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.document = data
	j.matches = matches
	j.UpdatedAt = time.Now()
}

// Document returns the rewritten .docx, or nil if none was produced.
func (j *Job) Document() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.document
}

// CVData returns the original CV bytes.
func (j *Job) CVData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cvData
}

func (j *Job) inputs() (cvName string, cv []byte, jobName string, jobData []byte, jobPost string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.CVFilename, j.cvData, j.JobFilename, j.jobData, j.jobPost
}

// Score is the before/after pair reported by the AI.
type Score struct {
	Overall int `json:"overall"`
	New     int `json:"new"`
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string            `json:"job_id"`
	Status       JobStatus         `json:"status"`
	Phase        string            `json:"phase"`
	CVFilename   string            `json:"cv_filename"`
	JobFilename  string            `json:"job_filename,omitempty"`
	Provider     critique.Provider `json:"provider"`
	Model        string            `json:"model"`
	AutoApply    bool              `json:"auto_apply"`
	Score        *Score            `json:"score,omitempty"`
	Improvements int               `json:"improvements"`
	HasDocument  bool              `json:"has_document"`
	Matches      []int             `json:"matches,omitempty"`
	Errors       []string          `json:"errors"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	snap := JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		CVFilename:  j.CVFilename,
		JobFilename: j.JobFilename,
		Provider:    j.Provider,
		Model:       j.Model,
		AutoApply:   j.AutoApply,
		HasDocument: j.document != nil,
		Matches:     append([]int(nil), j.matches...),
		Errors:      errs,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.analysis != nil {
		snap.Score = &Score{Overall: j.analysis.OverallScore, New: j.analysis.NewScore}
		snap.Improvements = len(j.analysis.Improvements)
	}
	return snap
}
