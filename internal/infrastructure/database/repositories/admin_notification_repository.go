package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"gorm.io/gorm"
)

// adminNotificationRepository implements AdminNotificationRepository interface
type adminNotificationRepository struct {
	db *gorm.DB
}

// NewAdminNotificationRepository creates a new admin notification repository
func NewAdminNotificationRepository(db *gorm.DB) domainRepos.AdminNotificationRepository {
	return &adminNotificationRepository{db: db}
}

// Create appends an admin notification record
func (r *adminNotificationRepository) Create(ctx context.Context, notification *entities.AdminNotification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// GetRecent retrieves the most recent admin notifications
func (r *adminNotificationRepository) GetRecent(ctx context.Context, limit int) ([]entities.AdminNotification, error) {
	var notifications []entities.AdminNotification
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}
