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

// partialAutomationReviewThreshold forces review of larger amounts for
// merchants that only qualify for partial automation
var partialAutomationReviewThreshold = decimal.NewFromInt(2500)

// PayoutAdmissionInput carries the fields of a new payout intent
type PayoutAdmissionInput struct {
	MerchantID         int
	Amount             decimal.Decimal
	Currency           string
	DestinationWallet  string
	DestinationNetwork string
	ScheduleType       entities.PayoutScheduleType
	ScheduledFor       *time.Time
	OriginalRequestID  *int
	Metadata           entities.PayoutMetadata
}

// PayoutAdmissionService scores and classifies incoming payout intents and
// hands accepted requests to the queue manager. Admission never talks to the
// treasury; its only side effects are persistence and queue insertion.
type PayoutAdmissionService struct {
	payoutRepo   domainRepos.PayoutRequestRepository
	riskScoring  *RiskScoringService
	queueManager *QueueManager
	logger       *zap.Logger
	now          func() time.Time
}

// NewPayoutAdmissionService creates a new payout admission service
func NewPayoutAdmissionService(
	payoutRepo domainRepos.PayoutRequestRepository,
	riskScoring *RiskScoringService,
	queueManager *QueueManager,
	logger *zap.Logger,
) *PayoutAdmissionService {
	return &PayoutAdmissionService{
		payoutRepo:   payoutRepo,
		riskScoring:  riskScoring,
		queueManager: queueManager,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateAutomatedPayoutRequest admits one payout intent: computes its request
// risk score, the automation decision and priority, persists the request and
// inserts it into the matching processing queue.
func (s *PayoutAdmissionService) CreateAutomatedPayoutRequest(ctx context.Context, input PayoutAdmissionInput) (*entities.AutomatedPayoutRequest, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	merchantScore, err := s.riskScoring.GetMerchantRiskScore(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}

	requestRisk, err := s.calculateRequestRisk(ctx, input)
	if err != nil {
		return nil, err
	}

	decision := s.decide(merchantScore, requestRisk, input.Amount)
	priority := s.prioritize(merchantScore, input)

	now := s.now()
	scheduledFor := now
	if input.ScheduledFor != nil {
		scheduledFor = *input.ScheduledFor
	}

	request := &entities.AutomatedPayoutRequest{
		MerchantID:         input.MerchantID,
		Amount:             input.Amount,
		Currency:           input.Currency,
		DestinationWallet:  input.DestinationWallet,
		DestinationNetwork: input.DestinationNetwork,
		ScheduleType:       input.ScheduleType,
		Priority:           priority,
		Status:             entities.PayoutStatusPending,
		RiskScore:          requestRisk,
		AutomationDecision: decision,
		ScheduledFor:       scheduledFor,
		OriginalRequestID:  input.OriginalRequestID,
		Metadata:           input.Metadata,
		CreatedAt:          now,
	}

	if err := s.payoutRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to persist payout request: %w", err)
	}

	s.queueManager.Enqueue(request)

	s.logger.Info("Payout request admitted",
		zap.Int("request_id", request.ID),
		zap.Int("merchant_id", input.MerchantID),
		zap.String("amount", input.Amount.String()),
		zap.Int("request_risk", requestRisk),
		zap.String("decision", string(decision)),
		zap.String("priority", string(priority)),
	)

	return request, nil
}

// calculateRequestRisk sums amount, wallet-novelty and 24h-frequency risk,
// capped at 100.
func (s *PayoutAdmissionService) calculateRequestRisk(ctx context.Context, input PayoutAdmissionInput) (int, error) {
	risk := amountRisk(input.Amount)

	walletUses, err := s.payoutRepo.CountCompletedToWallet(ctx, input.MerchantID, input.DestinationWallet)
	if err != nil {
		return 0, fmt.Errorf("failed to count wallet history: %w", err)
	}
	risk += walletNoveltyRisk(walletUses)

	prior, err := s.payoutRepo.CountByMerchantSince(ctx, input.MerchantID, s.now().Add(-24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("failed to count recent payouts: %w", err)
	}
	// the request being admitted counts toward the 24h window
	risk += frequencyRisk(prior + 1)

	if risk > 100 {
		risk = 100
	}
	return risk, nil
}

// decide applies the automation decision rules. Rejection on the single
// transaction limit is unconditional: no amount of merchant standing
// overrides it.
func (s *PayoutAdmissionService) decide(score *entities.MerchantRiskScore, requestRisk int, amount decimal.Decimal) entities.AutomationDecision {
	if amount.GreaterThan(score.SingleTransactionLimit) || requestRisk > 80 {
		return entities.DecisionAutoReject
	}

	combined := (score.OverallScore + requestRisk) / 2
	switch {
	case amount.GreaterThan(score.RequiresApprovalAbove):
		return entities.DecisionManualReview
	case score.AutomationLevel == entities.AutomationLevelManualReview:
		return entities.DecisionManualReview
	case combined > 70:
		return entities.DecisionManualReview
	case score.AutomationLevel == entities.AutomationLevelPartial && amount.GreaterThan(partialAutomationReviewThreshold):
		return entities.DecisionManualReview
	}

	return entities.DecisionAutoApprove
}

// prioritize orders requests within their queue
func (s *PayoutAdmissionService) prioritize(score *entities.MerchantRiskScore, input PayoutAdmissionInput) entities.PayoutPriority {
	switch {
	case input.ScheduleType == entities.ScheduleTypeRealTime:
		return entities.PriorityUrgent
	case input.ScheduleType == entities.ScheduleTypeManualOverride,
		input.Amount.GreaterThan(decimal.NewFromInt(20000)):
		return entities.PriorityHigh
	case input.Amount.GreaterThan(decimal.NewFromInt(10000)),
		score.AutomationLevel == entities.AutomationLevelFull:
		return entities.PriorityNormal
	default:
		return entities.PriorityLow
	}
}

func amountRisk(amount decimal.Decimal) int {
	switch {
	case amount.GreaterThan(decimal.NewFromInt(50000)):
		return 30
	case amount.GreaterThan(decimal.NewFromInt(20000)):
		return 20
	case amount.GreaterThan(decimal.NewFromInt(10000)):
		return 12
	case amount.GreaterThan(decimal.NewFromInt(5000)):
		return 8
	case amount.GreaterThan(decimal.NewFromInt(1000)):
		return 4
	default:
		return 0
	}
}

func walletNoveltyRisk(completedUses int64) int {
	switch {
	case completedUses == 0:
		return 20
	case completedUses < 3:
		return 10
	case completedUses < 10:
		return 5
	default:
		return 0
	}
}

func frequencyRisk(recentPayouts int64) int {
	switch {
	case recentPayouts > 5:
		return 25
	case recentPayouts > 3:
		return 15
	case recentPayouts > 1:
		return 5
	default:
		return 0
	}
}
