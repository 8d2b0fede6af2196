package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
)

// LedgerRepository appends ledger entries for executed payouts
type LedgerRepository interface {
	Create(ctx context.Context, entry *entities.LedgerEntry) error
	GetByMerchantID(ctx context.Context, merchantID int, limit, offset int) ([]entities.LedgerEntry, error)
}
