package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"gorm.io/gorm"
)

// merchantPayoutRequestRepository implements MerchantPayoutRequestRepository interface
type merchantPayoutRequestRepository struct {
	db *gorm.DB
}

// NewMerchantPayoutRequestRepository creates a new merchant payout request repository
func NewMerchantPayoutRequestRepository(db *gorm.DB) domainRepos.MerchantPayoutRequestRepository {
	return &merchantPayoutRequestRepository{db: db}
}

// GetByID retrieves a merchant-facing payout request by ID
func (r *merchantPayoutRequestRepository) GetByID(ctx context.Context, id int) (*entities.MerchantPayoutRequest, error) {
	var request entities.MerchantPayoutRequest
	err := r.db.WithContext(ctx).First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// MarkCompleted mirrors a successful execution onto the merchant-facing record
func (r *merchantPayoutRequestRepository) MarkCompleted(ctx context.Context, id int, transactionHash string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.MerchantPayoutRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           entities.MerchantPayoutStatusCompleted,
			"transaction_hash": transactionHash,
			"processed_at":     now,
		}).Error
}

// MarkRejected mirrors a rejection onto the merchant-facing record
func (r *merchantPayoutRequestRepository) MarkRejected(ctx context.Context, id int, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.MerchantPayoutRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           entities.MerchantPayoutStatusRejected,
			"rejection_reason": reason,
			"processed_at":     now,
		}).Error
}
