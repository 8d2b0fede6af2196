package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsTimeframe selects the aggregation window for automation metrics
type MetricsTimeframe string

const (
	TimeframeDaily   MetricsTimeframe = "DAILY"
	TimeframeWeekly  MetricsTimeframe = "WEEKLY"
	TimeframeMonthly MetricsTimeframe = "MONTHLY"
)

// WindowStart returns the start of the timeframe's window relative to now
func (t MetricsTimeframe) WindowStart(now time.Time) time.Time {
	switch t {
	case TimeframeWeekly:
		return now.AddDate(0, 0, -7)
	case TimeframeMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, 0, -1)
	}
}

// AutomationMetrics is a derived, read-only aggregate over a time window.
// It is never stored, only recomputed from the payout request history.
type AutomationMetrics struct {
	Timeframe            MetricsTimeframe `json:"timeframe"`
	WindowStart          time.Time        `json:"window_start"`
	TotalRequests        int              `json:"total_requests"`
	SucceededRequests    int              `json:"succeeded_requests"`
	FailedRequests       int              `json:"failed_requests"`
	AverageProcessingMs  int64            `json:"average_processing_ms"`
	TotalExecutedVolume  decimal.Decimal  `json:"total_executed_volume"`
	AutomationRate       float64          `json:"automation_rate"`
	ErrorRate            float64          `json:"error_rate"`
	EstimatedCostSaving  decimal.Decimal  `json:"estimated_cost_saving"`
}
