package mcp

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sriram-PR/doc-outline/pkg/outline"
)

// JobStatus represents the current state of an outline job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// DocumentOutline is the outcome for one document of a job
type DocumentOutline struct {
	Path     string                 `json:"path"`
	Headings []outline.HeadingEntry `json:"headings,omitempty"`
	Outline  string                 `json:"outline,omitempty"`
	HTML     string                 `json:"html,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Job represents a background outline job over a document set
type Job struct {
	ID                 string            `json:"id"`
	SetKey             string            `json:"set_key"`
	RunID              string            `json:"run_id,omitempty"` // run_id field of the job's log entries
	Status             JobStatus         `json:"status"`
	StartedAt          time.Time         `json:"started_at"`
	CompletedAt        time.Time         `json:"completed_at,omitempty"`
	DocumentsTotal     int               `json:"documents_total"`
	DocumentsProcessed int               `json:"documents_processed"`
	ErrorMessage       string            `json:"error_message,omitempty"`
	Documents          []DocumentOutline `json:"documents,omitempty"`

	// Internal fields
	ctx    context.Context
	cancel context.CancelFunc
}

// JobManager manages background outline jobs
type JobManager struct {
	jobs  map[string]*Job
	mu    sync.RWMutex
	byset map[string]string // setKey -> jobID for active jobs
}

// NewJobManager creates a new job manager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:  make(map[string]*Job),
		byset: make(map[string]string),
	}
}

// CreateJob creates a new job for a document set. If a job for the set is
// still active, that job is returned instead and created is false.
func (m *JobManager) CreateJob(setKey string) (job *Job, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, exists := m.byset[setKey]; exists {
		if existing := m.jobs[existingID]; existing != nil && !existing.Status.terminal() {
			return existing, false
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	job = &Job{
		ID:        uuid.New().String(),
		SetKey:    setKey,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	m.jobs[job.ID] = job
	m.byset[setKey] = job.ID

	return job, true
}

// GetJob returns a snapshot of a job, or nil if it does not exist
func (m *JobManager) GetJob(jobID string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil
	}
	snapshot := *job
	snapshot.Documents = append([]DocumentOutline(nil), job.Documents...)
	return &snapshot
}

// IsRunning checks if a job is active for a document set
func (m *JobManager) IsRunning(setKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if jobID, exists := m.byset[setKey]; exists {
		job := m.jobs[jobID]
		return job != nil && !job.Status.terminal()
	}
	return false
}

// UpdateStatus updates the status of a job. A terminal job keeps its status.
func (m *JobManager) UpdateStatus(jobID string, status JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists || job.Status.terminal() {
		return
	}
	job.Status = status
	if status.terminal() {
		job.CompletedAt = time.Now()
		delete(m.byset, job.SetKey)
	}
	if errorMsg != "" {
		job.ErrorMessage = errorMsg
	}
}

// SetTotal records how many documents a job will process
func (m *JobManager) SetTotal(jobID string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		job.DocumentsTotal = total
	}
}

// SetRunID records the orchestrator run serving a job
func (m *JobManager) SetRunID(jobID, runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		job.RunID = runID
	}
}

// SetDocuments stores the per-document outcomes of a job
func (m *JobManager) SetDocuments(jobID string, docs []DocumentOutline) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		job.Documents = docs
		job.DocumentsProcessed = len(docs)
	}
}

// CancelJob cancels an active job
func (m *JobManager) CancelJob(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists || job.Status.terminal() {
		return false
	}
	job.cancel()
	job.Status = JobStatusCancelled
	job.CompletedAt = time.Now()
	delete(m.byset, job.SetKey)
	return true
}

// CancelAll cancels all active jobs
func (m *JobManager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.jobs {
		if !job.Status.terminal() {
			job.cancel()
			job.Status = JobStatusCancelled
			job.CompletedAt = time.Now()
		}
	}
	m.byset = make(map[string]string)
}

// ListJobs returns snapshots of all jobs, oldest first
func (m *JobManager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		snapshot := *job
		snapshot.Documents = nil
		jobs = append(jobs, &snapshot)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].StartedAt.Before(jobs[j].StartedAt) })
	return jobs
}

// GetContext returns the context for a job
func (m *JobManager) GetContext(jobID string) context.Context {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if job, exists := m.jobs[jobID]; exists {
		return job.ctx
	}
	return context.Background()
}
