package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique tracking job ID with the "trk_" prefix
func NewJobID() string {
	return "trk_" + uuid.New().String()
}

// NewKeywordID generates a unique keyword ID with the "kw_" prefix
func NewKeywordID() string {
	return "kw_" + uuid.New().String()
}

// NewResultID generates a unique rank result ID with the "rr_" prefix
func NewResultID() string {
	return "rr_" + uuid.New().String()
}

// NewClientID generates a unique streaming client ID with the "cli_" prefix
func NewClientID() string {
	return "cli_" + uuid.New().String()
}
