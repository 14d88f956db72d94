package models

import (
	"time"
)

// EventType tags a tracking event
type EventType string

const (
	EventStatusUpdate EventType = "status_update"
	EventJobUpdate    EventType = "job_update"
	EventLogUpdate    EventType = "log_update"
	EventInitialState EventType = "initial_state"
	EventConnected    EventType = "connected"
)

// TrackingEvent is an ephemeral progress/status notification. Events exist
// only in the broadcaster's ring buffer and in transit to subscribers; they
// are never persisted.
type TrackingEvent struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Buffered  bool        `json:"buffered,omitempty"` // True when replayed from the ring buffer
}

// ProgressPayload is the payload for status_update events
type ProgressPayload struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Keyword string `json:"keyword,omitempty"`
}

// JobListPayload is the payload for initial_state events
type JobListPayload struct {
	Jobs      []*TrackingJob `json:"jobs"`
	TotalJobs int            `json:"total_jobs"`
}

// LogPayload is the payload for log_update events
type LogPayload struct {
	JobID   string `json:"job_id,omitempty"`
	Level   string `json:"level"`
	Message string `json:"message"`
}
