package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
)

// MerchantPayoutRequestRepository mirrors engine outcomes onto the
// merchant-facing payout request records
type MerchantPayoutRequestRepository interface {
	GetByID(ctx context.Context, id int) (*entities.MerchantPayoutRequest, error)
	MarkCompleted(ctx context.Context, id int, transactionHash string) error
	MarkRejected(ctx context.Context, id int, reason string) error
}
