package scraper

import (
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// defaultTopN bounds the result-entry snapshot captured per extraction
const defaultTopN = 10

// ExtractResult is the outcome of classifying a scanned result list against
// one target.
type ExtractResult struct {
	OrganicRank *int
	AdRank      *int
	Found       bool
	Matched     *models.RankEntry
	TopEntries  []models.RankEntry
}

// Extract classifies items in document order with two independent 1-based
// counters (organic and ad), matches the target, and captures a bounded
// snapshot of the leading entries.
//
// Matching per item, in priority order: exact stable-id match, normalized-name
// exact match, normalized-name substring match in either direction. The first
// matching organic item and the first matching ad item each win their
// category; scanning stops once both categories have a match and the snapshot
// is full. A target absent from the list yields Found=false with both ranks
// nil, never zero.
func Extract(items []models.ResultItem, target models.Target, topN int) ExtractResult {
	if topN <= 0 {
		topN = defaultTopN
	}

	result := ExtractResult{}
	organicCount := 0
	adCount := 0

	for _, item := range items {
		var rank int
		if item.IsAd {
			adCount++
			rank = adCount
		} else {
			organicCount++
			rank = organicCount
		}

		entry := models.RankEntry{
			Rank:  rank,
			Name:  item.Name,
			ID:    item.ID,
			IsAd:  item.IsAd,
			URL:   item.URL,
			Title: item.Title,
		}
		if len(result.TopEntries) < topN {
			result.TopEntries = append(result.TopEntries, entry)
		}

		if matchesTarget(item, target) {
			if item.IsAd && result.AdRank == nil {
				r := rank
				result.AdRank = &r
				result.Found = true
				if result.Matched == nil {
					matched := entry
					result.Matched = &matched
				}
			} else if !item.IsAd && result.OrganicRank == nil {
				r := rank
				result.OrganicRank = &r
				result.Found = true
				if result.Matched == nil || result.Matched.IsAd {
					matched := entry
					result.Matched = &matched
				}
			}
		}

		// Both categories matched and snapshot full: nothing left to learn
		if result.OrganicRank != nil && result.AdRank != nil && len(result.TopEntries) >= topN {
			break
		}
	}

	return result
}

// matchesTarget applies the match policy for a single item
func matchesTarget(item models.ResultItem, target models.Target) bool {
	if target.ID != "" && item.ID != "" && item.ID == target.ID {
		return true
	}
	return namesMatch(item.Name, target.Name)
}
