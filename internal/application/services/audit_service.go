package services

import (
	"context"
	"encoding/json"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"go.uber.org/zap"
)

// AuditService appends immutable audit records for automation-affecting
// actions. A failed append is logged but never blocks the action it records.
type AuditService struct {
	auditRepo domainRepos.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo domainRepos.AuditLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends one audit entry with structured detail
func (s *AuditService) Record(ctx context.Context, actor, eventType string, detail map[string]interface{}) {
	payload, err := json.Marshal(detail)
	if err != nil {
		s.logger.Error("Failed to marshal audit detail",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		payload = []byte("{}")
	}

	entry := &entities.AuditLog{
		Actor:     actor,
		EventType: eventType,
		Detail:    string(payload),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to append audit record",
			zap.String("actor", actor),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// RecentEvents returns the newest audit records for the operational API
func (s *AuditService) RecentEvents(ctx context.Context, limit int) ([]entities.AuditLog, error) {
	return s.auditRepo.GetRecent(ctx, limit)
}
