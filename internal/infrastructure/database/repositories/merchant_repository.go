package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// merchantRepository implements MerchantRepository interface
type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) domainRepos.MerchantRepository {
	return &merchantRepository{db: db}
}

// GetByID retrieves a merchant by ID
func (r *merchantRepository) GetByID(ctx context.Context, id int) (*entities.Merchant, error) {
	var merchant entities.Merchant
	err := r.db.WithContext(ctx).First(&merchant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// GetOrderStats aggregates a merchant's order history for risk scoring
func (r *merchantRepository) GetOrderStats(ctx context.Context, merchantID int) (*entities.MerchantOrderStats, error) {
	stats := &entities.MerchantOrderStats{TotalRevenue: decimal.Zero}

	type row struct {
		TotalOrders     int64
		TotalRevenue    decimal.Decimal
		CancelledOrders int64
	}
	var agg row
	err := r.db.WithContext(ctx).
		Model(&entities.Order{}).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total), 0) AS total_revenue, COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled_orders").
		Where("merchant_id = ?", merchantID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats.TotalOrders = agg.TotalOrders
	stats.TotalRevenue = agg.TotalRevenue
	stats.CancelledOrders = agg.CancelledOrders

	err = r.db.WithContext(ctx).
		Model(&entities.Order{}).
		Where("merchant_id = ? AND created_at >= ?", merchantID, time.Now().AddDate(0, 0, -30)).
		Count(&stats.OrdersLast30d).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
