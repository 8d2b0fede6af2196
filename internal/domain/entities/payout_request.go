package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PayoutScheduleType describes how a payout request entered the engine
type PayoutScheduleType string

const (
	ScheduleTypeRealTime           PayoutScheduleType = "REAL_TIME"
	ScheduleTypeScheduled          PayoutScheduleType = "SCHEDULED"
	ScheduleTypeThresholdTriggered PayoutScheduleType = "THRESHOLD_TRIGGERED"
	ScheduleTypeManualOverride     PayoutScheduleType = "MANUAL_OVERRIDE"
)

// PayoutPriority orders requests inside a processing queue
type PayoutPriority string

const (
	PriorityUrgent PayoutPriority = "URGENT"
	PriorityHigh   PayoutPriority = "HIGH"
	PriorityNormal PayoutPriority = "NORMAL"
	PriorityLow    PayoutPriority = "LOW"
)

// Weight returns the sort weight of a priority (higher processes first)
func (p PayoutPriority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	default:
		return 1
	}
}

// PayoutStatus is the request state machine
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusExecuted   PayoutStatus = "EXECUTED"
	PayoutStatusFailed     PayoutStatus = "FAILED"
	PayoutStatusCancelled  PayoutStatus = "CANCELLED"
)

// IsTerminal reports whether no transition may leave the status
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusExecuted || s == PayoutStatusFailed || s == PayoutStatusCancelled
}

// AutomationDecision classifies a payout request at admission time
type AutomationDecision string

const (
	DecisionAutoApprove  AutomationDecision = "AUTO_APPROVE"
	DecisionManualReview AutomationDecision = "MANUAL_REVIEW"
	DecisionAutoReject   AutomationDecision = "AUTO_REJECT"
)

// MaxProcessingAttempts bounds how many times a request may enter PROCESSING
const MaxProcessingAttempts = 3

// AutomatedPayoutRequest represents the automated_payout_requests table.
// One row per payout attempt; rows are immutable once in a terminal state.
type AutomatedPayoutRequest struct {
	ID                    int                `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MerchantID            int                `gorm:"not null;index;column:merchant_id" json:"merchant_id"`
	Amount                decimal.Decimal    `gorm:"type:decimal(38,18);not null;column:amount" json:"amount"`
	Currency              string             `gorm:"size:20;not null;column:currency" json:"currency"`
	DestinationWallet     string             `gorm:"type:text;not null;column:destination_wallet" json:"destination_wallet"`
	DestinationNetwork    string             `gorm:"size:50;not null;column:destination_network" json:"destination_network"`
	ScheduleType          PayoutScheduleType `gorm:"size:30;not null;column:schedule_type" json:"schedule_type"`
	Priority              PayoutPriority     `gorm:"size:10;not null;column:priority" json:"priority"`
	Status                PayoutStatus       `gorm:"size:20;not null;index;column:status" json:"status"`
	RiskScore             int                `gorm:"not null;column:risk_score" json:"risk_score"`
	AutomationDecision    AutomationDecision `gorm:"size:20;not null;column:automation_decision" json:"automation_decision"`
	ProcessingAttempts    int                `gorm:"not null;default:0;column:processing_attempts" json:"processing_attempts"`
	ScheduledFor          time.Time          `gorm:"not null;column:scheduled_for" json:"scheduled_for"`
	LastAttemptAt         *time.Time         `gorm:"column:last_attempt_at" json:"last_attempt_at"`
	TreasuryTransactionID string             `gorm:"size:100;column:treasury_transaction_id" json:"treasury_transaction_id"`
	TransactionHash       string             `gorm:"size:120;column:transaction_hash" json:"transaction_hash"`
	FailureReason         string             `gorm:"type:text;column:failure_reason" json:"failure_reason"`
	OriginalRequestID     *int               `gorm:"column:original_request_id" json:"original_request_id"`
	Metadata              PayoutMetadata     `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt             time.Time          `gorm:"not null;default:now();column:created_at" json:"created_at"`
	UpdatedAt             time.Time          `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the table name for AutomatedPayoutRequest
func (AutomatedPayoutRequest) TableName() string {
	return "automated_payout_requests"
}

// CanTransitionTo reports whether the state machine allows moving to next
func (r *AutomatedPayoutRequest) CanTransitionTo(next PayoutStatus) bool {
	if r.Status.IsTerminal() {
		return false
	}
	switch r.Status {
	case PayoutStatusPending:
		return next == PayoutStatusProcessing || next == PayoutStatusCancelled
	case PayoutStatusProcessing:
		return next == PayoutStatusExecuted || next == PayoutStatusFailed
	default:
		return false
	}
}

// PayoutMetadata is the typed metadata carried by a payout request.
// Only the fields relevant to the request's schedule type are populated.
type PayoutMetadata struct {
	ThresholdAmount   *decimal.Decimal `json:"threshold_amount,omitempty"`
	OverrideActor     string           `json:"override_actor,omitempty"`
	OverrideReason    string           `json:"override_reason,omitempty"`
	RejectionDetail   string           `json:"rejection_detail,omitempty"`
	SourceDescription string           `json:"source_description,omitempty"`
}

// Value implements driver.Valuer so the metadata persists as jsonb
func (m PayoutMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for the jsonb metadata column
func (m *PayoutMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = PayoutMetadata{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
}
