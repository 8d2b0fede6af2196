package repositories

import (
	"context"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
)

// PayoutRequestRepository defines the interface for automated payout request operations
type PayoutRequestRepository interface {
	// Create operations
	Create(ctx context.Context, request *entities.AutomatedPayoutRequest) error

	// Read operations
	GetByID(ctx context.Context, id int) (*entities.AutomatedPayoutRequest, error)
	GetByMerchantID(ctx context.Context, merchantID int, limit, offset int) ([]entities.AutomatedPayoutRequest, error)
	GetCreatedSince(ctx context.Context, since time.Time) ([]entities.AutomatedPayoutRequest, error)

	// Update operations
	Update(ctx context.Context, request *entities.AutomatedPayoutRequest) error

	// Risk inputs
	CountCompletedToWallet(ctx context.Context, merchantID int, wallet string) (int64, error)
	CountByMerchantSince(ctx context.Context, merchantID int, since time.Time) (int64, error)
}
