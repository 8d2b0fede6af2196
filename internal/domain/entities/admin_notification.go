package entities

import "time"

// Admin notification types produced by the engine
const (
	NotificationManualReviewRequired = "MANUAL_REVIEW_REQUIRED"
	NotificationEmergencyHalt        = "EMERGENCY_HALT"
	NotificationProcessingResumed    = "PROCESSING_RESUMED"
	NotificationBatchFailure         = "BATCH_FAILURE"
)

// AdminNotification represents the admin_notifications table. Delivery to the
// ops channel is best effort; the row is the durable record.
type AdminNotification struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Type      string    `gorm:"size:50;not null;column:type" json:"type"`
	Message   string    `gorm:"type:text;not null;column:message" json:"message"`
	RequestID *int      `gorm:"column:request_id" json:"request_id"`
	CreatedAt time.Time `gorm:"not null;default:now();column:created_at" json:"created_at"`
}

// TableName returns the table name for AdminNotification
func (AdminNotification) TableName() string {
	return "admin_notifications"
}
