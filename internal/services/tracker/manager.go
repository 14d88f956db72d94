package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// Manager is the in-memory tracking job registry. It owns job state
// transitions and emits an event on every mutation so streaming clients stay
// current. Jobs are not persisted; a restart clears the registry.
type Manager struct {
	logger arbor.ILogger
	events interfaces.EventService

	mu   sync.RWMutex
	jobs map[string]*models.TrackingJob
}

// NewManager creates an empty job registry
func NewManager(events interfaces.EventService, logger arbor.ILogger) *Manager {
	return &Manager{
		logger: logger,
		events: events,
		jobs:   make(map[string]*models.TrackingJob),
	}
}

// AddJob registers a new job in queued state and returns its generated id
func (m *Manager) AddJob(userID, userName, userEmail string, serviceType models.ServiceType) string {
	job := &models.TrackingJob{
		ID:        common.NewJobID(),
		UserID:    userID,
		UserName:  userName,
		UserEmail: userEmail,
		Type:      serviceType,
		Status:    models.JobStatusQueued,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.logger.Info().
		Str("job_id", job.ID).
		Str("user_id", userID).
		Str("service_type", string(serviceType)).
		Msg("Tracking job registered")

	m.emitJobUpdate(job.Clone())
	return job.ID
}

// UpdateJob applies a partial update. Terminal states are one-way: an update
// arriving after completion or failure is logged and dropped.
func (m *Manager) UpdateJob(jobID string, update interfaces.JobUpdate) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		m.logger.Warn().Str("job_id", jobID).Msg("Update for unknown job dropped")
		return
	}
	if job.Status.IsTerminal() {
		status := job.Status
		m.mu.Unlock()
		m.logger.Warn().
			Str("job_id", jobID).
			Str("status", string(status)).
			Msg("Update for terminal job dropped")
		return
	}

	if update.Status != nil {
		job.Status = *update.Status
		if job.Status.IsTerminal() {
			job.CompletedAt = time.Now()
		}
	}
	if update.Summary != nil {
		job.Summary = update.Summary
	}
	if update.Error != nil {
		job.Error = update.Error
	}
	snapshot := job.Clone()
	m.mu.Unlock()

	m.emitJobUpdate(snapshot)
}

// UpdateProgress sets absolute progress counters and publishes a status event.
// Progress on a terminal job is dropped the same way as any other late update.
func (m *Manager) UpdateProgress(jobID string, current, total int, currentKeyword string) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status.IsTerminal() {
		m.mu.Unlock()
		m.logger.Warn().Str("job_id", jobID).Msg("Progress for unknown or terminal job dropped")
		return
	}
	if current < job.Progress.Current {
		// Absolute counters only move forward; a stale callback cannot rewind
		current = job.Progress.Current
	}
	job.Progress = models.JobProgress{Current: current, Total: total, CurrentKeyword: currentKeyword}
	snapshot := job.Clone()
	m.mu.Unlock()

	m.events.Emit(models.EventStatusUpdate, models.ProgressPayload{
		JobID:   snapshot.ID,
		Status:  string(snapshot.Status),
		Current: snapshot.Progress.Current,
		Total:   snapshot.Progress.Total,
		Keyword: snapshot.Progress.CurrentKeyword,
	})
}

// GetJob returns a copy of the job, or nil when unknown
func (m *Manager) GetJob(jobID string) *models.TrackingJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if job, ok := m.jobs[jobID]; ok {
		return job.Clone()
	}
	return nil
}

// GetAllJobs returns copies of all registered jobs, newest first
func (m *Manager) GetAllJobs() []*models.TrackingJob {
	m.mu.RLock()
	jobs := make([]*models.TrackingJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs
}

func (m *Manager) emitJobUpdate(job *models.TrackingJob) {
	m.events.Emit(models.EventJobUpdate, job)
}
