package models

import (
	"time"
)

// Keyword is a tracked search term owned by a user, with the target entity
// that must be located in its results.
type Keyword struct {
	ID          string      `json:"id" badgerhold:"key"`
	UserID      string      `json:"user_id" badgerholdIndex:"UserID"`
	ServiceType ServiceType `json:"service_type"`
	Text        string      `json:"text"`

	TargetID   string `json:"target_id,omitempty"` // Naver place id / blog id
	TargetName string `json:"target_name"`

	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	LastTrackedAt time.Time `json:"last_tracked_at,omitempty"`
}

// Target returns the match target for this keyword
func (k *Keyword) Target() Target {
	return Target{ID: k.TargetID, Name: k.TargetName}
}

// RankRecord is one persisted rank check: one row per keyword per check date.
// CheckDate uses the business timezone captured once per run, so a run that
// straddles midnight still writes a single consistent date.
type RankRecord struct {
	ID        string `json:"id" badgerhold:"key"`
	KeywordID string `json:"keyword_id" badgerholdIndex:"KeywordID"`
	UserID    string `json:"user_id"`
	CheckDate string `json:"check_date"` // "2006-01-02" in the run timezone

	OrganicRank *int        `json:"organic_rank,omitempty"`
	AdRank      *int        `json:"ad_rank,omitempty"`
	Found       bool        `json:"found"`
	MatchedName string      `json:"matched_name,omitempty"`
	MatchedURL  string      `json:"matched_url,omitempty"`
	TopEntries  []RankEntry `json:"top_entries,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
	CreatedAt time.Time `json:"created_at"`
}
