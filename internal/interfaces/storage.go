package interfaces

import (
	"context"
	"time"

	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// KeywordStorage is the read side of the persistence boundary: which keywords
// to track and for whom.
type KeywordStorage interface {
	SaveKeyword(ctx context.Context, keyword *models.Keyword) error
	GetKeyword(ctx context.Context, id string) (*models.Keyword, error)
	ListActiveKeywords(ctx context.Context, userID string, serviceType models.ServiceType) ([]*models.Keyword, error)
	ListKeywords(ctx context.Context, userID string, serviceType models.ServiceType) ([]*models.Keyword, error)
	ListTrackedUsers(ctx context.Context, serviceType models.ServiceType) ([]string, error)
	UpdateLastTrackedAt(ctx context.Context, userID string, serviceType models.ServiceType, ts time.Time) error
	DeleteKeyword(ctx context.Context, id string) error
}

// RankStorage is the write side of the persistence boundary: time-series rank
// results, one row per keyword per check date.
type RankStorage interface {
	SaveRankResult(ctx context.Context, keywordID, userID string, result *models.RankResult, checkDate string) error
	GetRankHistory(ctx context.Context, keywordID string, limit int) ([]*models.RankRecord, error)
}

// StorageManager bundles the storage surfaces behind one lifecycle
type StorageManager interface {
	KeywordStorage() KeywordStorage
	RankStorage() RankStorage
	Close() error
}
