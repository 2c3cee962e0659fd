package pipeline

import (
	"sync"
	"time"

	"paperlens/internal/annotate"
	"paperlens/internal/render"
	"paperlens/internal/toc"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusWalking     JobStatus = "walking"
	StatusRendering   JobStatus = "rendering"
	StatusClassifying JobStatus = "classifying"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// Result holds the output of a finished conversion.
type Result struct {
	HTML     string       `json:"-"`
	Chapters []*toc.Node  `json:"chapters"`
	Stats    render.Stats `json:"stats"`
	// Fallback marks output produced by the degraded text-only renderer.
	Fallback bool `json:"fallback"`
}

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	result      *Result
	errors      []string
	annotations map[string]*annotate.Annotation
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
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

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResult stores the conversion output and releases the upload bytes.
func (j *Job) SetResult(r *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the conversion output, nil while the job is in flight.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Annotate attaches commentary to a chapter of a finished job. It reports
// whether the chapter id exists in the result tree.
func (j *Job) Annotate(a *annotate.Annotation) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil || !chapterExists(j.result.Chapters, a.ChapterID) {
		return false
	}
	if j.annotations == nil {
		j.annotations = make(map[string]*annotate.Annotation)
	}
	j.annotations[a.ChapterID] = a
	j.UpdatedAt = time.Now()
	return true
}

// Annotations returns the job's annotations keyed by chapter id.
func (j *Job) Annotations() map[string]*annotate.Annotation {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[string]*annotate.Annotation, len(j.annotations))
	for id, a := range j.annotations {
		out[id] = a
	}
	return out
}

func chapterExists(nodes []*toc.Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id || chapterExists(n.Children, id) {
			return true
		}
	}
	return false
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Errors    []string  `json:"errors"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Result    *Result   `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Title:     j.Title,
		Errors:    errs,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Result:    j.result,
	}
}
