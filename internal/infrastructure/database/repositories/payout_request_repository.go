package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"gorm.io/gorm"
)

// payoutRequestRepository implements PayoutRequestRepository interface
type payoutRequestRepository struct {
	db *gorm.DB
}

// NewPayoutRequestRepository creates a new payout request repository
func NewPayoutRequestRepository(db *gorm.DB) domainRepos.PayoutRequestRepository {
	return &payoutRequestRepository{
		db: db,
	}
}

// Create creates a new automated payout request record
func (r *payoutRequestRepository) Create(ctx context.Context, request *entities.AutomatedPayoutRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID retrieves a payout request by ID
func (r *payoutRequestRepository) GetByID(ctx context.Context, id int) (*entities.AutomatedPayoutRequest, error) {
	var request entities.AutomatedPayoutRequest
	err := r.db.WithContext(ctx).First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetByMerchantID retrieves payout requests for a merchant, newest first
func (r *payoutRequestRepository) GetByMerchantID(ctx context.Context, merchantID int, limit, offset int) ([]entities.AutomatedPayoutRequest, error) {
	var requests []entities.AutomatedPayoutRequest
	query := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

// GetCreatedSince retrieves all payout requests created at or after the given time
func (r *payoutRequestRepository) GetCreatedSince(ctx context.Context, since time.Time) ([]entities.AutomatedPayoutRequest, error) {
	var requests []entities.AutomatedPayoutRequest
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

// Update updates an existing payout request record
func (r *payoutRequestRepository) Update(ctx context.Context, request *entities.AutomatedPayoutRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// CountCompletedToWallet counts executed payouts from a merchant to a destination wallet
func (r *payoutRequestRepository) CountCompletedToWallet(ctx context.Context, merchantID int, wallet string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.AutomatedPayoutRequest{}).
		Where("merchant_id = ? AND destination_wallet = ? AND status = ?",
			merchantID, wallet, entities.PayoutStatusExecuted).
		Count(&count).Error
	return count, err
}

// CountByMerchantSince counts a merchant's payout requests created since the given time
func (r *payoutRequestRepository) CountByMerchantSince(ctx context.Context, merchantID int, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.AutomatedPayoutRequest{}).
		Where("merchant_id = ? AND created_at >= ?", merchantID, since).
		Count(&count).Error
	return count, err
}
