package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

const defaultHistoryLimit = 30

type rankStore struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// SaveRankResult writes one rank row per keyword per check date. A rerun on
// the same date overwrites the earlier row instead of stacking duplicates.
func (s *rankStore) SaveRankResult(ctx context.Context, keywordID, userID string, result *models.RankResult, checkDate string) error {
	var existing []*models.RankRecord
	query := badgerhold.Where("KeywordID").Eq(keywordID).Index("KeywordID").
		And("CheckDate").Eq(checkDate)
	if err := s.store.Find(&existing, query); err != nil {
		return fmt.Errorf("failed to check for existing rank row: %w", err)
	}

	record := &models.RankRecord{
		ID:          common.NewResultID(),
		KeywordID:   keywordID,
		UserID:      userID,
		CheckDate:   checkDate,
		OrganicRank: result.OrganicRank,
		AdRank:      result.AdRank,
		Found:       result.Found,
		MatchedName: result.MatchedName,
		MatchedURL:  result.MatchedURL,
		TopEntries:  result.TopEntries,
		CheckedAt:   result.CheckedAt,
		CreatedAt:   time.Now(),
	}
	if len(existing) > 0 {
		record.ID = existing[0].ID
		record.CreatedAt = existing[0].CreatedAt
	}

	if err := s.store.Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save rank result for keyword %s: %w", keywordID, err)
	}

	s.logger.Debug().
		Str("keyword_id", keywordID).
		Str("check_date", checkDate).
		Bool("found", result.Found).
		Msg("Rank result saved")

	return nil
}

// GetRankHistory returns the most recent rank rows for a keyword, newest first
func (s *rankStore) GetRankHistory(ctx context.Context, keywordID string, limit int) ([]*models.RankRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var records []*models.RankRecord
	query := badgerhold.Where("KeywordID").Eq(keywordID).Index("KeywordID").
		SortBy("CheckedAt").Reverse().Limit(limit)
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to load rank history for keyword %s: %w", keywordID, err)
	}
	return records, nil
}
