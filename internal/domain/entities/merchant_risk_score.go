package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutomationLevel describes how much of a merchant's payout flow may run unattended
type AutomationLevel string

const (
	AutomationLevelFull         AutomationLevel = "FULL"
	AutomationLevelPartial      AutomationLevel = "PARTIAL"
	AutomationLevelManualReview AutomationLevel = "MANUAL_REVIEW"
)

// RiskFactors holds the five bounded components of a merchant risk score
type RiskFactors struct {
	TransactionHistory int `gorm:"not null;column:factor_transaction_history" json:"transaction_history"`
	ChargebackRate     int `gorm:"not null;column:factor_chargeback_rate" json:"chargeback_rate"`
	AccountAge         int `gorm:"not null;column:factor_account_age" json:"account_age"`
	VerificationLevel  int `gorm:"not null;column:factor_verification_level" json:"verification_level"`
	RecentActivity     int `gorm:"not null;column:factor_recent_activity" json:"recent_activity"`
}

// Sum returns the overall score implied by the factors
func (f RiskFactors) Sum() int {
	return f.TransactionHistory + f.ChargebackRate + f.AccountAge + f.VerificationLevel + f.RecentActivity
}

// MerchantRiskScore represents the merchant_risk_scores table.
// One row per merchant, upserted on every recalculation (last write wins).
type MerchantRiskScore struct {
	ID                     int             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MerchantID             int             `gorm:"not null;uniqueIndex:merchant_risk_score_merchant_idx;column:merchant_id" json:"merchant_id"`
	OverallScore           int             `gorm:"not null;column:overall_score" json:"overall_score"`
	Factors                RiskFactors     `gorm:"embedded" json:"factors"`
	AutomationLevel        AutomationLevel `gorm:"size:20;not null;column:automation_level" json:"automation_level"`
	DailyLimit             decimal.Decimal `gorm:"type:decimal(38,18);not null;column:daily_limit" json:"daily_limit"`
	WeeklyLimit            decimal.Decimal `gorm:"type:decimal(38,18);not null;column:weekly_limit" json:"weekly_limit"`
	MonthlyLimit           decimal.Decimal `gorm:"type:decimal(38,18);not null;column:monthly_limit" json:"monthly_limit"`
	SingleTransactionLimit decimal.Decimal `gorm:"type:decimal(38,18);not null;column:single_transaction_limit" json:"single_transaction_limit"`
	RequiresApprovalAbove  decimal.Decimal `gorm:"type:decimal(38,18);not null;column:requires_approval_above" json:"requires_approval_above"`
	CalculatedAt           time.Time       `gorm:"not null;default:now();column:calculated_at" json:"calculated_at"`
}

// TableName returns the table name for MerchantRiskScore
func (MerchantRiskScore) TableName() string {
	return "merchant_risk_scores"
}

// AutomationLevelForScore maps an overall score to its automation level
func AutomationLevelForScore(score int) AutomationLevel {
	switch {
	case score <= 30:
		return AutomationLevelFull
	case score <= 60:
		return AutomationLevelPartial
	default:
		return AutomationLevelManualReview
	}
}
