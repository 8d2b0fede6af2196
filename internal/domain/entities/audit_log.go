package entities

import "time"

// Audit event types recorded by the engine
const (
	AuditEventEmergencyHalt     = "EMERGENCY_HALT"
	AuditEventProcessingResumed = "PROCESSING_RESUMED"
	AuditEventBatchFailure      = "BATCH_FAILURE"
	AuditEventRiskScoreRefresh  = "RISK_SCORE_REFRESHED"
	AuditEventQueueCompleted    = "QUEUE_COMPLETED"
)

// AuditLog represents the audit_logs table. Rows are append-only: the
// repository exposes no update or delete path.
type AuditLog struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Actor     string    `gorm:"size:200;not null;column:actor" json:"actor"`
	EventType string    `gorm:"size:50;not null;index;column:event_type" json:"event_type"`
	Detail    string    `gorm:"type:jsonb;column:detail" json:"detail"`
	CreatedAt time.Time `gorm:"not null;default:now();column:created_at" json:"created_at"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
