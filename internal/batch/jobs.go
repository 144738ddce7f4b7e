package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// Status represents the batch job status.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Job represents an asynchronous batch.
type Job struct {
	ID          string              `json:"id"`
	FileName    string              `json:"fileName"`
	Status      Status              `json:"status"`
	Total       int                 `json:"total"`
	Processed   int                 `json:"processed"`
	Progress    float64             `json:"progress"`
	Result      *models.BatchResult `json:"-"`
	Error       string              `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
}

// Finished reports whether the job reached a terminal status.
func (j Job) Finished() bool {
	return j.Status == StatusComplete || j.Status == StatusError
}

// Runner runs an already prepared batch.
type Runner interface {
	Run(ctx context.Context, texts []models.CandidateText, progress ProgressFunc) (*models.BatchResult, error)
}

// JobManager runs batches in the background and tracks their progress.
type JobManager struct {
	jobs   map[string]*Job
	mu     sync.RWMutex
	runner Runner
	ctx    context.Context
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewJobManager creates a job manager. Cancelling ctx cancels running jobs.
func NewJobManager(ctx context.Context, runner Runner, logger *slog.Logger) *JobManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobManager{
		jobs:   make(map[string]*Job),
		runner: runner,
		ctx:    ctx,
		logger: logger,
	}
}

// Start queues texts for background processing and returns a snapshot
// of the new job.
func (m *JobManager) Start(fileName string, texts []models.CandidateText) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		FileName:  fileName,
		Status:    StatusQueued,
		Total:     len(texts),
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.processJob(job, texts)
	}()

	return &snapshot
}

// Get returns a snapshot of the job.
func (m *JobManager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Wait blocks until every started job has finished.
func (m *JobManager) Wait() {
	m.wg.Wait()
}

func (m *JobManager) processJob(job *Job, texts []models.CandidateText) {
	logger := m.logger.With("job_id", job.ID, "file", job.FileName)
	logger.Info("batch job started", "texts", len(texts))

	m.setStatus(job, StatusProcessing)

	result, err := m.runner.Run(m.ctx, texts, func(done, total int) {
		m.updateProgress(job, done, total)
	})
	if err != nil {
		m.markJobError(job, err.Error())
		logger.Error("batch job failed", "error", err)
		return
	}

	m.markJobComplete(job, result)
	logger.Info("batch job complete",
		"successful", result.Summary.Successful,
		"failed", result.Summary.Failed)
}

func (m *JobManager) setStatus(job *Job, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = status
}

// updateProgress records completed items (thread-safe).
func (m *JobManager) updateProgress(job *Job, done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Progress callbacks can arrive out of order.
	if done <= job.Processed {
		return
	}
	job.Processed = done
	if total > 0 {
		job.Progress = float64(done) * 100 / float64(total)
	}
}

func (m *JobManager) markJobComplete(job *Job, result *models.BatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusComplete
	job.Result = result
	job.Processed = job.Total
	job.Progress = 100
	now := time.Now()
	job.CompletedAt = &now
}

func (m *JobManager) markJobError(job *Job, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Error = errMsg
	now := time.Now()
	job.CompletedAt = &now
}

// CleanupOldJobs removes finished jobs completed more than maxAge ago.
// It returns the number of jobs removed.
func (m *JobManager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.Finished() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}
