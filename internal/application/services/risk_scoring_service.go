package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// baseLimits is the limit table per automation level before risk scaling
type baseLimits struct {
	daily            int64
	weekly           int64
	monthly          int64
	single           int64
	requiresApproval int64
}

var baseLimitTable = map[entities.AutomationLevel]baseLimits{
	entities.AutomationLevelFull:         {daily: 10000, weekly: 50000, monthly: 150000, single: 5000, requiresApproval: 2500},
	entities.AutomationLevelPartial:      {daily: 5000, weekly: 25000, monthly: 75000, single: 2500, requiresApproval: 1000},
	entities.AutomationLevelManualReview: {daily: 1000, weekly: 5000, monthly: 15000, single: 500, requiresApproval: 0},
}

// minRiskMultiplier floors the limit scaling for the riskiest merchants
var minRiskMultiplier = decimal.NewFromFloat(0.1)

// RiskScoringService computes merchant risk scores and derived automation
// limits. Scores are upserted to storage and cached in memory; the cache entry
// for a merchant is replaced wholesale on recalculation (last write wins).
type RiskScoringService struct {
	merchantRepo  domainRepos.MerchantRepository
	riskScoreRepo domainRepos.RiskScoreRepository
	audit         *AuditService
	logger        *zap.Logger
	cache         map[int]*entities.MerchantRiskScore
	mutex         sync.RWMutex
	now           func() time.Time
}

// NewRiskScoringService creates a new risk scoring service
func NewRiskScoringService(
	merchantRepo domainRepos.MerchantRepository,
	riskScoreRepo domainRepos.RiskScoreRepository,
	audit *AuditService,
	logger *zap.Logger,
) *RiskScoringService {
	return &RiskScoringService{
		merchantRepo:  merchantRepo,
		riskScoreRepo: riskScoreRepo,
		audit:         audit,
		logger:        logger,
		cache:         make(map[int]*entities.MerchantRiskScore),
		now:           time.Now,
	}
}

// CalculateMerchantRiskScore computes the five risk factors from the
// merchant's order history, derives the automation level and limits, persists
// the result and replaces the cache entry.
func (s *RiskScoringService) CalculateMerchantRiskScore(ctx context.Context, merchantID int) (*entities.MerchantRiskScore, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant %d: %w", merchantID, err)
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}

	stats, err := s.merchantRepo.GetOrderStats(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order stats for merchant %d: %w", merchantID, err)
	}

	now := s.now()
	factors := entities.RiskFactors{
		TransactionHistory: transactionHistoryFactor(stats),
		ChargebackRate:     chargebackRateFactor(stats.TotalOrders),
		AccountAge:         accountAgeFactor(now.Sub(merchant.CreatedAt)),
		VerificationLevel:  verificationFactor(merchant),
		RecentActivity:     recentActivityFactor(stats.OrdersLast30d),
	}
	overall := factors.Sum()
	level := entities.AutomationLevelForScore(overall)
	score := &entities.MerchantRiskScore{
		MerchantID:      merchantID,
		OverallScore:    overall,
		Factors:         factors,
		AutomationLevel: level,
		CalculatedAt:    now,
	}
	applyLimits(score, level, overall)

	if err := s.riskScoreRepo.Upsert(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to upsert risk score for merchant %d: %w", merchantID, err)
	}

	s.mutex.Lock()
	s.cache[merchantID] = score
	s.mutex.Unlock()

	s.logger.Info("Merchant risk score calculated",
		zap.Int("merchant_id", merchantID),
		zap.Int("overall_score", overall),
		zap.String("automation_level", string(level)),
	)

	return score, nil
}

// GetMerchantRiskScore returns the cached score, falling back to storage and
// then to a fresh calculation.
func (s *RiskScoringService) GetMerchantRiskScore(ctx context.Context, merchantID int) (*entities.MerchantRiskScore, error) {
	s.mutex.RLock()
	cached, ok := s.cache[merchantID]
	s.mutex.RUnlock()
	if ok {
		return cached, nil
	}

	stored, err := s.riskScoreRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk score for merchant %d: %w", merchantID, err)
	}
	if stored != nil {
		s.mutex.Lock()
		s.cache[merchantID] = stored
		s.mutex.Unlock()
		return stored, nil
	}

	return s.CalculateMerchantRiskScore(ctx, merchantID)
}

// RefreshMerchantRiskScore recomputes a merchant's score and audits the refresh
func (s *RiskScoringService) RefreshMerchantRiskScore(ctx context.Context, merchantID int) (*entities.MerchantRiskScore, error) {
	score, err := s.CalculateMerchantRiskScore(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "automation-engine", entities.AuditEventRiskScoreRefresh, map[string]interface{}{
		"merchant_id":      merchantID,
		"overall_score":    score.OverallScore,
		"automation_level": score.AutomationLevel,
	})

	return score, nil
}

// CacheSize returns the number of cached merchant scores
func (s *RiskScoringService) CacheSize() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.cache)
}

// applyLimits derives monetary limits from the base table, scaled by the
// risk multiplier max(0.1, 1 - overallScore/100).
func applyLimits(score *entities.MerchantRiskScore, level entities.AutomationLevel, overall int) {
	multiplier := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(overall)).Div(decimal.NewFromInt(100)))
	if multiplier.LessThan(minRiskMultiplier) {
		multiplier = minRiskMultiplier
	}

	base := baseLimitTable[level]
	score.DailyLimit = decimal.NewFromInt(base.daily).Mul(multiplier)
	score.WeeklyLimit = decimal.NewFromInt(base.weekly).Mul(multiplier)
	score.MonthlyLimit = decimal.NewFromInt(base.monthly).Mul(multiplier)
	score.SingleTransactionLimit = decimal.NewFromInt(base.single).Mul(multiplier)
	score.RequiresApprovalAbove = decimal.NewFromInt(base.requiresApproval).Mul(multiplier)
}

// transactionHistoryFactor starts at 25 and is reduced by volume and revenue
// tiers, then increased by the cancellation ratio, clamped to [0,25].
func transactionHistoryFactor(stats *entities.MerchantOrderStats) int {
	factor := 25

	switch {
	case stats.TotalOrders >= 100:
		factor -= 10
	case stats.TotalOrders >= 50:
		factor -= 7
	case stats.TotalOrders >= 20:
		factor -= 4
	case stats.TotalOrders >= 5:
		factor -= 2
	}

	revenue := stats.TotalRevenue
	switch {
	case revenue.GreaterThanOrEqual(decimal.NewFromInt(100000)):
		factor -= 5
	case revenue.GreaterThanOrEqual(decimal.NewFromInt(25000)):
		factor -= 3
	case revenue.GreaterThanOrEqual(decimal.NewFromInt(5000)):
		factor -= 1
	}

	if stats.TotalOrders > 0 {
		ratio := float64(stats.CancelledOrders) / float64(stats.TotalOrders)
		switch {
		case ratio > 0.20:
			factor += 8
		case ratio > 0.10:
			factor += 5
		case ratio > 0.05:
			factor += 2
		}
	}

	return clampFactor(factor, 25)
}

// chargebackRateFactor is a tiered proxy on order count. A merchant with no
// orders has no chargeback signal at all, which lands at the neutral midpoint.
func chargebackRateFactor(totalOrders int64) int {
	switch {
	case totalOrders == 0:
		return 15
	case totalOrders >= 200:
		return 3
	case totalOrders >= 100:
		return 6
	case totalOrders >= 50:
		return 10
	case totalOrders >= 20:
		return 15
	case totalOrders >= 5:
		return 20
	default:
		return 25
	}
}

// accountAgeFactor tiers by account age
func accountAgeFactor(age time.Duration) int {
	days := int(age.Hours() / 24)
	switch {
	case days >= 365:
		return 0
	case days >= 180:
		return 3
	case days >= 90:
		return 6
	case days >= 30:
		return 9
	case days >= 7:
		return 12
	default:
		return 15
	}
}

// verificationFactor reduces the base of 15 per verified channel
func verificationFactor(merchant *entities.Merchant) int {
	factor := 15
	if merchant.EmailVerified {
		factor -= 7
	}
	if merchant.PhoneVerified {
		factor -= 8
	}
	if factor < 0 {
		factor = 0
	}
	return factor
}

// recentActivityFactor tiers by orders in the last 30 days
func recentActivityFactor(orders30d int64) int {
	switch {
	case orders30d >= 20:
		return 0
	case orders30d >= 10:
		return 5
	case orders30d >= 5:
		return 10
	case orders30d >= 1:
		return 15
	default:
		return 20
	}
}

func clampFactor(value, max int) int {
	if value < 0 {
		return 0
	}
	if value > max {
		return max
	}
	return value
}
