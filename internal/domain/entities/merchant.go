package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant represents the merchants table. Owned by the storefront side of
// the platform; the payout engine only reads it for risk scoring.
type Merchant struct {
	ID            int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Email         string    `gorm:"size:200;not null;uniqueIndex:merchant_email_idx;column:email" json:"email"`
	BusinessName  string    `gorm:"size:200;not null;column:business_name" json:"business_name"`
	EmailVerified bool      `gorm:"not null;default:false;column:email_verified" json:"email_verified"`
	PhoneVerified bool      `gorm:"not null;default:false;column:phone_verified" json:"phone_verified"`
	CreatedAt     time.Time `gorm:"not null;default:now();column:created_at" json:"created_at"`
}

// TableName returns the table name for Merchant
func (Merchant) TableName() string {
	return "merchants"
}

// Order represents the orders table, read-only history input for risk factors
type Order struct {
	ID         int             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MerchantID int             `gorm:"not null;index;column:merchant_id" json:"merchant_id"`
	Total      decimal.Decimal `gorm:"type:decimal(38,18);not null;column:total" json:"total"`
	Status     string          `gorm:"size:30;not null;column:status" json:"status"`
	CreatedAt  time.Time       `gorm:"not null;default:now();column:created_at" json:"created_at"`
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

// MerchantOrderStats aggregates a merchant's order history for scoring
type MerchantOrderStats struct {
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	CancelledOrders int64           `json:"cancelled_orders"`
	OrdersLast30d   int64           `json:"orders_last_30d"`
}
