package repositories

import (
	"context"
	"errors"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// riskScoreRepository implements RiskScoreRepository interface
type riskScoreRepository struct {
	db *gorm.DB
}

// NewRiskScoreRepository creates a new risk score repository
func NewRiskScoreRepository(db *gorm.DB) domainRepos.RiskScoreRepository {
	return &riskScoreRepository{db: db}
}

// Upsert writes a merchant risk score, replacing any prior row for the merchant
func (r *riskScoreRepository) Upsert(ctx context.Context, score *entities.MerchantRiskScore) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_id"}},
			UpdateAll: true,
		}).
		Create(score).Error
}

// GetByMerchantID retrieves the current risk score for a merchant
func (r *riskScoreRepository) GetByMerchantID(ctx context.Context, merchantID int) (*entities.MerchantRiskScore, error) {
	var score entities.MerchantRiskScore
	err := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID).First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &score, nil
}
