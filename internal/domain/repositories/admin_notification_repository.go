package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
)

// AdminNotificationRepository persists notifications destined for operators
type AdminNotificationRepository interface {
	Create(ctx context.Context, notification *entities.AdminNotification) error
	GetRecent(ctx context.Context, limit int) ([]entities.AdminNotification, error)
}
