package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry represents the ledger_entries table, appended once per
// successfully executed payout.
type LedgerEntry struct {
	ID              int             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MerchantID      int             `gorm:"not null;index;column:merchant_id" json:"merchant_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(38,18);not null;column:amount" json:"amount"`
	Currency        string          `gorm:"size:20;not null;column:currency" json:"currency"`
	Direction       string          `gorm:"size:10;not null;column:direction" json:"direction"`
	Reference       string          `gorm:"size:200;not null;column:reference" json:"reference"`
	TransactionHash string          `gorm:"size:120;column:transaction_hash" json:"transaction_hash"`
	CreatedAt       time.Time       `gorm:"not null;default:now();column:created_at" json:"created_at"`
}

// Ledger directions
const (
	LedgerDirectionDebit  = "DEBIT"
	LedgerDirectionCredit = "CREDIT"
)

// TableName returns the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
