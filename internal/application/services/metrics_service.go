package services

import (
	"context"
	"fmt"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MetricsConfig holds the cost model for automation savings
type MetricsConfig struct {
	CostPerManualPayout decimal.Decimal
}

// MetricsService recomputes automation metrics over a time window. Metrics
// are derived on every call, never stored.
type MetricsService struct {
	payoutRepo domainRepos.PayoutRequestRepository
	logger     *zap.Logger
	config     MetricsConfig
	now        func() time.Time
}

// NewMetricsService creates a new metrics service
func NewMetricsService(payoutRepo domainRepos.PayoutRequestRepository, logger *zap.Logger, config MetricsConfig) *MetricsService {
	if config.CostPerManualPayout.IsZero() {
		config.CostPerManualPayout = decimal.NewFromInt(15)
	}
	return &MetricsService{
		payoutRepo: payoutRepo,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}
}

// GetAutomationMetrics aggregates request outcomes over the timeframe window
func (s *MetricsService) GetAutomationMetrics(ctx context.Context, timeframe entities.MetricsTimeframe) (*entities.AutomationMetrics, error) {
	switch timeframe {
	case entities.TimeframeDaily, entities.TimeframeWeekly, entities.TimeframeMonthly:
	default:
		return nil, ErrInvalidTimeframe
	}

	windowStart := timeframe.WindowStart(s.now())
	requests, err := s.payoutRepo.GetCreatedSince(ctx, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests since %s: %w", windowStart.Format(time.RFC3339), err)
	}

	metrics := &entities.AutomationMetrics{
		Timeframe:           timeframe,
		WindowStart:         windowStart,
		TotalRequests:       len(requests),
		TotalExecutedVolume: decimal.Zero,
		EstimatedCostSaving: decimal.Zero,
	}

	var latencySum time.Duration
	var latencyCount int
	autoExecuted := 0

	for i := range requests {
		req := &requests[i]
		switch req.Status {
		case entities.PayoutStatusExecuted:
			metrics.SucceededRequests++
			metrics.TotalExecutedVolume = metrics.TotalExecutedVolume.Add(req.Amount)
			if req.AutomationDecision == entities.DecisionAutoApprove {
				autoExecuted++
			}
			if req.LastAttemptAt != nil {
				latencySum += req.LastAttemptAt.Sub(req.CreatedAt)
				latencyCount++
			}
		case entities.PayoutStatusFailed:
			metrics.FailedRequests++
		}
	}

	if latencyCount > 0 {
		metrics.AverageProcessingMs = (latencySum / time.Duration(latencyCount)).Milliseconds()
	}
	if metrics.TotalRequests > 0 {
		metrics.AutomationRate = float64(autoExecuted) / float64(metrics.TotalRequests) * 100
		metrics.ErrorRate = float64(metrics.FailedRequests) / float64(metrics.TotalRequests) * 100
	}
	metrics.EstimatedCostSaving = s.config.CostPerManualPayout.Mul(decimal.NewFromInt(int64(autoExecuted)))

	return metrics, nil
}
