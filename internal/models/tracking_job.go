package models

import (
	"time"
)

// JobStatus represents the state of a tracking job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status is a final state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ServiceType identifies which search surface a tracking run targets
type ServiceType string

const (
	ServiceSmartPlace ServiceType = "smartplace"
	ServiceBlog       ServiceType = "blog"
	ServiceAds        ServiceType = "ads"
)

// ValidServiceType reports whether t is a known service type
func ValidServiceType(t ServiceType) bool {
	switch t {
	case ServiceSmartPlace, ServiceBlog, ServiceAds:
		return true
	}
	return false
}

// TrackingJob identifies one tracking run for one user and one service type.
// Jobs are operational metadata owned by the job manager; they live in memory
// only and reset on process restart.
type TrackingJob struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	UserName  string      `json:"user_name,omitempty"`  // Denormalized for dashboard display
	UserEmail string      `json:"user_email,omitempty"` // Denormalized for dashboard display
	Type      ServiceType `json:"type"`
	Status    JobStatus   `json:"status"`

	Progress JobProgress `json:"progress"`

	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	Summary *RunSummary `json:"summary,omitempty"`
	Error   *JobError   `json:"error,omitempty"`
}

// JobProgress tracks how far through the keyword list a run has gotten.
// Current is an absolute count, never a delta.
type JobProgress struct {
	Current        int    `json:"current"`
	Total          int    `json:"total"`
	CurrentKeyword string `json:"current_keyword,omitempty"`
}

// JobError carries the failure detail for a failed job
type JobError struct {
	Message   string    `json:"message"`
	Stack     string    `json:"stack,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RunSummary aggregates the outcome of one tracking run
type RunSummary struct {
	JobID        string          `json:"job_id,omitempty"`
	SuccessCount int             `json:"success_count"`
	FailedCount  int             `json:"failed_count"`
	NoTargets    bool            `json:"no_targets,omitempty"` // Keyword list was empty; nothing ran
	Details      []KeywordDetail `json:"details,omitempty"`
}

// KeywordDetail is the per-keyword line item in a run summary
type KeywordDetail struct {
	KeywordID   string `json:"keyword_id"`
	Keyword     string `json:"keyword"`
	OrganicRank *int   `json:"organic_rank,omitempty"`
	AdRank      *int   `json:"ad_rank,omitempty"`
	Found       bool   `json:"found"`
	Error       string `json:"error,omitempty"`
}

// Clone returns a deep copy so callers can read job state without racing the manager
func (j *TrackingJob) Clone() *TrackingJob {
	copied := *j
	if j.Summary != nil {
		summary := *j.Summary
		summary.Details = append([]KeywordDetail(nil), j.Summary.Details...)
		copied.Summary = &summary
	}
	if j.Error != nil {
		jobErr := *j.Error
		copied.Error = &jobErr
	}
	return &copied
}
