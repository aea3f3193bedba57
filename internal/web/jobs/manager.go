package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("job not found")

// newUUID generates job ids. Extracted as a variable for testing.
var newUUID = uuid.NewString

// Analyzer produces an outcome for a message.
type Analyzer interface {
	Analyze(ctx context.Context, message string) types.ScanOutcome
}

// Manager manages analysis job lifecycle: create, execute, track, store results.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	analyzer Analyzer
	timeout  time.Duration
}

// NewManager creates a job manager. timeout bounds a single analysis; zero
// means no bound.
func NewManager(analyzer Analyzer, timeout time.Duration) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		analyzer: analyzer,
		timeout:  timeout,
	}
}

// Create creates a new pending analysis job.
func (m *Manager) Create(message string) Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		ID:        newUUID(),
		Message:   message,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	m.jobs[job.ID] = job
	return job.clone()
}

// Start launches the analysis in a background goroutine.
func (m *Manager) Start(jobID string) error {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	job.Status = StatusRunning
	job.StartedAt = time.Now()
	m.mu.Unlock()

	go m.execute(job)
	return nil
}

func (m *Manager) execute(job *Job) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Errorw("analysis job panicked", "job", job.ID, "panic", r)
			m.mu.Lock()
			job.Status = StatusFailed
			job.Error = fmt.Sprintf("panic: %v", r)
			job.CompletedAt = time.Now()
			m.mu.Unlock()
		}
	}()

	ctx := context.Background()
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	outcome := m.analyzer.Analyze(ctx, job.Message)

	m.mu.Lock()
	job.Outcome = &outcome
	job.Status = StatusCompleted
	job.CompletedAt = time.Now()
	m.mu.Unlock()
}

// Get returns a snapshot of a job.
func (m *Manager) Get(jobID string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	return job.clone(), nil
}

// SetOutcome replaces the outcome of a completed job, e.g. after pending
// URL verdicts were resolved.
func (m *Manager) SetOutcome(jobID string, o types.ScanOutcome) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	job.Outcome = &o
	return job.clone(), nil
}

// List returns snapshots of all jobs sorted by CreatedAt descending.
func (m *Manager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		result = append(result, j.clone())
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})
	return result
}

// Delete removes a job from the manager.
func (m *Manager) Delete(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[jobID]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	delete(m.jobs, jobID)
	return nil
}
