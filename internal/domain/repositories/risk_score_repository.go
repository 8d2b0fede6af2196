package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
)

// RiskScoreRepository defines the interface for merchant risk score persistence.
// Scores are upserted, never deleted; the latest row supersedes any prior one.
type RiskScoreRepository interface {
	Upsert(ctx context.Context, score *entities.MerchantRiskScore) error
	GetByMerchantID(ctx context.Context, merchantID int) (*entities.MerchantRiskScore, error)
}
