package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
)

// MerchantRepository defines the read-only interface over merchant history.
// Merchants and orders are owned by the storefront; the engine never writes them.
type MerchantRepository interface {
	GetByID(ctx context.Context, id int) (*entities.Merchant, error)
	GetOrderStats(ctx context.Context, merchantID int) (*entities.MerchantOrderStats, error)
}
