package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/report"
	"github.com/google/uuid"
)

// JobKind selects what a job produces.
type JobKind string

const (
	KindOutline  JobKind = "outline"
	KindAnalysis JobKind = "analysis"
)

// JobStatus represents the state of a job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusOutlining JobStatus = "outlining"
	StatusRanking   JobStatus = "ranking"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Upload is one file submitted with a job.
type Upload struct {
	Filename string
	Data     []byte
}

// Job tracks the state of one outline or analysis request.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Kind   JobKind   `json:"kind"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Persona string `json:"persona,omitempty"`
	Task    string `json:"job_to_be_done,omitempty"`
	TopN    int    `json:"top_n,omitempty"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	filenames []string
	files     []Upload
	errors    []string
	outlines  []report.OutlineResult
	analysis  *report.Analysis
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments     int      `json:"total_documents"`
	DocumentsProcessed int      `json:"documents_processed"`
	DocumentsFailed    int      `json:"documents_failed"`
	SectionsRanked     int      `json:"sections_ranked"`
	Errors             []string `json:"errors"`
}

// NewJobID returns a random job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// NewJob creates a queued job over files.
func NewJob(kind JobKind, files []Upload) *Job {
	now := time.Now()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}
	return &Job{
		ID:        NewJobID(),
		Kind:      kind,
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalDocuments: len(files)},
		CreatedAt: now,
		UpdatedAt: now,
		filenames: names,
		files:     files,
	}
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

// Cleanup removes jobs idle for longer than the TTL and returns how many
// were removed.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
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
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// DocumentDone counts one parsed or failed document.
func (j *Job) DocumentDone(ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsProcessed++
	if !ok {
		j.Progress.DocumentsFailed++
	}
	j.UpdatedAt = time.Now()
}

// SetSectionsRanked records how many sections made the ranking.
func (j *Job) SetSectionsRanked(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsRanked = n
	j.UpdatedAt = time.Now()
}

// Files returns the uploaded files.
func (j *Job) Files() []Upload {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// Filenames returns the uploaded filenames in submission order.
func (j *Job) Filenames() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.filenames...)
}

// releaseFiles drops the raw upload bytes once parsing is over.
func (j *Job) releaseFiles() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = nil
}

// SetOutlines stores the result of an outline job.
func (j *Job) SetOutlines(res []report.OutlineResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outlines = res
	j.UpdatedAt = time.Now()
}

// SetAnalysis stores the result of an analysis job.
func (j *Job) SetAnalysis(res *report.Analysis) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.analysis = res
	j.UpdatedAt = time.Now()
}

// Outlines returns the outline results, nil until the job finishes.
func (j *Job) Outlines() []report.OutlineResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outlines
}

// Analysis returns the analysis result, nil until the job finishes.
func (j *Job) Analysis() *report.Analysis {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.analysis
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Kind      JobKind   `json:"kind"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Documents []string  `json:"documents"`
	Persona   string    `json:"persona,omitempty"`
	Task      string    `json:"job_to_be_done,omitempty"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	docs := append([]string{}, j.filenames...)
	return JobSnapshot{
		ID:        j.ID,
		Kind:      j.Kind,
		Status:    j.Status,
		Phase:     j.Phase,
		Documents: docs,
		Persona:   j.Persona,
		Task:      j.Task,
		Progress: Progress{
			TotalDocuments:     j.Progress.TotalDocuments,
			DocumentsProcessed: j.Progress.DocumentsProcessed,
			DocumentsFailed:    j.Progress.DocumentsFailed,
			SectionsRanked:     j.Progress.SectionsRanked,
			Errors:             errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
