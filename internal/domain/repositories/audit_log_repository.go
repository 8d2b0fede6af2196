package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
)

// AuditLogRepository defines the append-only audit trail. There is
// intentionally no update or delete operation.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entities.AuditLog) error
	GetByEventType(ctx context.Context, eventType string, limit, offset int) ([]entities.AuditLog, error)
	GetRecent(ctx context.Context, limit int) ([]entities.AuditLog, error)
}
