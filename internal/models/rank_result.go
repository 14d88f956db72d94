package models

import (
	"time"
)

// RankResult is the outcome of one rank check for one keyword.
// Organic rank and ad rank are counted independently: rank 1 organic and
// rank 1 ad can coexist within the same result set.
type RankResult struct {
	Keyword     string `json:"keyword"`
	OrganicRank *int   `json:"organic_rank,omitempty"` // 1-based; nil when not found
	AdRank      *int   `json:"ad_rank,omitempty"`      // 1-based; nil when not found
	Found       bool   `json:"found"`

	MatchedName string `json:"matched_name,omitempty"`
	MatchedURL  string `json:"matched_url,omitempty"`

	// TopEntries is a bounded snapshot of the leading classified items,
	// captured regardless of match, for audit and dashboard display.
	TopEntries []RankEntry `json:"top_entries,omitempty"`

	CheckedAt time.Time `json:"checked_at"` // Run-wide business-timezone timestamp
	Error     string    `json:"error,omitempty"`
}

// RankEntry is one classified item from a scanned result list
type RankEntry struct {
	Rank  int    `json:"rank"` // Position within its own category (organic or ad)
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"` // Stable place/blog identifier when resolvable
	IsAd  bool   `json:"is_ad"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// ResultItem is a raw item parsed from a rendered search-results page,
// in document order, before rank classification.
type ResultItem struct {
	Name  string
	ID    string // Stable identifier parsed from the item link, empty if unresolvable
	URL   string
	Title string // Post title for blog results, empty for place results
	IsAd  bool
}

// Target identifies what entity must be matched in scanned results
type Target struct {
	ID   string `json:"id,omitempty"` // Stable place/blog identifier, preferred when present
	Name string `json:"name"`
}
