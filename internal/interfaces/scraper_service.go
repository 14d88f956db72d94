package interfaces

import (
	"context"

	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// ScraperService tracks the rank of a target entity for one keyword on one
// search surface. Per-keyword scrape failures (navigation timeout, missing
// selector) are soft: the returned result carries Found=false and an error
// message, and the method returns nil. Hard failures (pool exhaustion,
// browser crash) are returned as errors and escalate to the orchestrator.
type ScraperService interface {
	TrackRanking(ctx context.Context, keyword string, target models.Target) (*models.RankResult, error)
	ServiceType() models.ServiceType
}
