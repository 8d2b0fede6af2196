package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant-facing payout request statuses mirrored by the engine
const (
	MerchantPayoutStatusPending   = "pending"
	MerchantPayoutStatusCompleted = "completed"
	MerchantPayoutStatusRejected  = "rejected"
)

// MerchantPayoutRequest represents the merchant_payout_requests table: the
// originating record a merchant sees. The engine only mirrors status onto it.
type MerchantPayoutRequest struct {
	ID              int             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MerchantID      int             `gorm:"not null;index;column:merchant_id" json:"merchant_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(38,18);not null;column:amount" json:"amount"`
	Currency        string          `gorm:"size:20;not null;column:currency" json:"currency"`
	Status          string          `gorm:"size:30;not null;column:status" json:"status"`
	TransactionHash string          `gorm:"size:120;column:transaction_hash" json:"transaction_hash"`
	RejectionReason string          `gorm:"type:text;column:rejection_reason" json:"rejection_reason"`
	RequestedAt     time.Time       `gorm:"not null;default:now();column:requested_at" json:"requested_at"`
	ProcessedAt     *time.Time      `gorm:"column:processed_at" json:"processed_at"`
}

// TableName returns the table name for MerchantPayoutRequest
func (MerchantPayoutRequest) TableName() string {
	return "merchant_payout_requests"
}
