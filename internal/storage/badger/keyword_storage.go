package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// ErrKeywordNotFound is returned when a keyword id does not exist
var ErrKeywordNotFound = errors.New("keyword not found")

type keywordStore struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

func (s *keywordStore) SaveKeyword(ctx context.Context, keyword *models.Keyword) error {
	if keyword.ID == "" {
		keyword.ID = common.NewKeywordID()
	}
	if keyword.CreatedAt.IsZero() {
		keyword.CreatedAt = time.Now()
	}
	if err := s.store.Upsert(keyword.ID, keyword); err != nil {
		return fmt.Errorf("failed to save keyword %s: %w", keyword.ID, err)
	}
	return nil
}

func (s *keywordStore) GetKeyword(ctx context.Context, id string) (*models.Keyword, error) {
	var keyword models.Keyword
	err := s.store.Get(id, &keyword)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, ErrKeywordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword %s: %w", id, err)
	}
	return &keyword, nil
}

func (s *keywordStore) ListActiveKeywords(ctx context.Context, userID string, serviceType models.ServiceType) ([]*models.Keyword, error) {
	var keywords []*models.Keyword
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").
		And("ServiceType").Eq(serviceType).
		And("Active").Eq(true)
	if err := s.store.Find(&keywords, query); err != nil {
		return nil, fmt.Errorf("failed to list active keywords: %w", err)
	}
	return keywords, nil
}

func (s *keywordStore) ListKeywords(ctx context.Context, userID string, serviceType models.ServiceType) ([]*models.Keyword, error) {
	var keywords []*models.Keyword
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").
		And("ServiceType").Eq(serviceType)
	if err := s.store.Find(&keywords, query); err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return keywords, nil
}

// ListTrackedUsers returns the distinct user ids that have at least one
// active keyword of the given service type, sorted for stable sweep order.
func (s *keywordStore) ListTrackedUsers(ctx context.Context, serviceType models.ServiceType) ([]string, error) {
	var keywords []*models.Keyword
	query := badgerhold.Where("ServiceType").Eq(serviceType).And("Active").Eq(true)
	if err := s.store.Find(&keywords, query); err != nil {
		return nil, fmt.Errorf("failed to list tracked users: %w", err)
	}

	seen := make(map[string]struct{}, len(keywords))
	var userIDs []string
	for _, keyword := range keywords {
		if _, ok := seen[keyword.UserID]; !ok {
			seen[keyword.UserID] = struct{}{}
			userIDs = append(userIDs, keyword.UserID)
		}
	}
	sort.Strings(userIDs)
	return userIDs, nil
}

func (s *keywordStore) UpdateLastTrackedAt(ctx context.Context, userID string, serviceType models.ServiceType, ts time.Time) error {
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").
		And("ServiceType").Eq(serviceType).
		And("Active").Eq(true)
	err := s.store.UpdateMatching(&models.Keyword{}, query, func(record interface{}) error {
		keyword, ok := record.(*models.Keyword)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		keyword.LastTrackedAt = ts
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to stamp last tracked time: %w", err)
	}
	return nil
}

func (s *keywordStore) DeleteKeyword(ctx context.Context, id string) error {
	err := s.store.Delete(id, models.Keyword{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return ErrKeywordNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete keyword %s: %w", id, err)
	}
	return nil
}
