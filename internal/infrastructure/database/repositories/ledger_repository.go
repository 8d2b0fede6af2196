package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"gorm.io/gorm"
)

// ledgerRepository implements LedgerRepository interface
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) domainRepos.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Create appends a ledger entry
func (r *ledgerRepository) Create(ctx context.Context, entry *entities.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByMerchantID retrieves ledger entries for a merchant, newest first
func (r *ledgerRepository) GetByMerchantID(ctx context.Context, merchantID int, limit, offset int) ([]entities.LedgerEntry, error) {
	var entries []entities.LedgerEntry
	query := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Order("created_at DESC").Find(&entries).Error
	return entries, err
}
