package interfaces

import (
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// JobUpdate is a partial mutation applied to a tracking job. Nil fields are
// left untouched.
type JobUpdate struct {
	Status  *models.JobStatus
	Summary *models.RunSummary
	Error   *models.JobError
}

// JobManager is the in-process registry of tracking jobs. Lifetime is
// process-wide; jobs are observability metadata and are not persisted.
type JobManager interface {
	// AddJob registers a new job in queued state and returns its generated id
	AddJob(userID, userName, userEmail string, serviceType models.ServiceType) string

	// UpdateJob applies a partial update. Terminal transitions are one-way:
	// once completed or failed, further updates are warn-logged no-ops.
	UpdateJob(jobID string, update JobUpdate)

	// UpdateProgress sets absolute progress counters for a job. Safe to call
	// from concurrent keyword-completion callbacks.
	UpdateProgress(jobID string, current, total int, currentKeyword string)

	// GetJob returns a copy of the job, or nil when unknown
	GetJob(jobID string) *models.TrackingJob

	// GetAllJobs returns copies of all registered jobs, newest first
	GetAllJobs() []*models.TrackingJob
}
