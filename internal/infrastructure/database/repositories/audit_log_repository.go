package repositories

import (
	"context"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"gorm.io/gorm"
)

// auditLogRepository implements AuditLogRepository interface.
// The audit trail is append-only, so only Create and reads exist.
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) domainRepos.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create appends an audit record
func (r *auditLogRepository) Create(ctx context.Context, log *entities.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByEventType retrieves audit records of one event type, newest first
func (r *auditLogRepository) GetByEventType(ctx context.Context, eventType string, limit, offset int) ([]entities.AuditLog, error) {
	var logs []entities.AuditLog
	query := r.db.WithContext(ctx).Where("event_type = ?", eventType)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// GetRecent retrieves the most recent audit records
func (r *auditLogRepository) GetRecent(ctx context.Context, limit int) ([]entities.AuditLog, error) {
	var logs []entities.AuditLog
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&logs).Error
	return logs, err
}
