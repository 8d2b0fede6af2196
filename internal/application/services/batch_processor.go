package services

import (
	"context"
	"fmt"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	domainRepos "github.com/acecasino/payout_automation/internal/domain/repositories"
	"github.com/acecasino/payout_automation/internal/domain/treasury"
	"github.com/acecasino/payout_automation/internal/notification"
	"go.uber.org/zap"
)

// BatchProcessorConfig holds the batch execution tunables
type BatchProcessorConfig struct {
	OptimalBatchSize   int
	MaxBatchSize       int
	MaxProcessingTime  time.Duration
	AutomationIdentity string
}

// DefaultBatchProcessorConfig returns the production defaults
func DefaultBatchProcessorConfig() BatchProcessorConfig {
	return BatchProcessorConfig{
		OptimalBatchSize:   20,
		MaxBatchSize:       50,
		MaxProcessingTime:  10 * time.Minute,
		AutomationIdentity: "automation-engine",
	}
}

// BatchProcessor drains one processing queue: rejects the auto-rejected,
// flags manual reviews, and executes auto-approved requests against the
// treasury in network-homogeneous batches. One bad request fails alone; one
// bad batch never touches its siblings.
type BatchProcessor struct {
	payoutRepo         domainRepos.PayoutRequestRepository
	merchantPayoutRepo domainRepos.MerchantPayoutRequestRepository
	ledgerRepo         domainRepos.LedgerRepository
	notificationRepo   domainRepos.AdminNotificationRepository
	treasury           treasury.Service
	audit              *AuditService
	notifier           notification.Sender
	logger             *zap.Logger
	config             BatchProcessorConfig
	now                func() time.Time
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(
	payoutRepo domainRepos.PayoutRequestRepository,
	merchantPayoutRepo domainRepos.MerchantPayoutRequestRepository,
	ledgerRepo domainRepos.LedgerRepository,
	notificationRepo domainRepos.AdminNotificationRepository,
	treasuryService treasury.Service,
	audit *AuditService,
	notifier notification.Sender,
	logger *zap.Logger,
	config BatchProcessorConfig,
) *BatchProcessor {
	if config.OptimalBatchSize <= 0 {
		config.OptimalBatchSize = 20
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = 50
	}
	if config.OptimalBatchSize > config.MaxBatchSize {
		config.OptimalBatchSize = config.MaxBatchSize
	}
	if config.AutomationIdentity == "" {
		config.AutomationIdentity = "automation-engine"
	}
	return &BatchProcessor{
		payoutRepo:         payoutRepo,
		merchantPayoutRepo: merchantPayoutRepo,
		ledgerRepo:         ledgerRepo,
		notificationRepo:   notificationRepo,
		treasury:           treasuryService,
		audit:              audit,
		notifier:           notifier,
		logger:             logger,
		config:             config,
		now:                time.Now,
	}
}

// ProcessQueue drains one queue's detached request snapshot, handed over by
// QueueManager.MarkProcessing so the live queue is never touched here.
// shouldStop is consulted before each batch; requests not reached before a
// stop are returned as remaining so the scheduler can requeue them for the
// next tick.
func (p *BatchProcessor) ProcessQueue(ctx context.Context, queueID string, requests []*entities.AutomatedPayoutRequest, shouldStop func() bool) (*entities.QueueProcessingResult, []*entities.AutomatedPayoutRequest) {
	result := &entities.QueueProcessingResult{
		QueueID:       queueID,
		TotalRequests: len(requests),
		Failed:        make([]entities.FailedPayoutDetail, 0),
	}

	approved := make([]*entities.AutomatedPayoutRequest, 0)
	for _, req := range requests {
		switch req.AutomationDecision {
		case entities.DecisionAutoReject:
			p.rejectRequest(ctx, req, result)
		case entities.DecisionManualReview:
			p.flagForReview(ctx, req, result)
		default:
			approved = append(approved, req)
		}
	}

	remaining := p.processApproved(ctx, approved, result, shouldStop)
	result.Deferred = len(remaining)

	p.logger.Info("Queue processed",
		zap.String("queue_id", queueID),
		zap.Int("total", result.TotalRequests),
		zap.Int("executed", result.Executed),
		zap.Int("rejected", result.Rejected),
		zap.Int("manual_review", result.ManualReview),
		zap.Int("deferred", result.Deferred),
		zap.Int("failed", len(result.Failed)),
	)

	return result, remaining
}

// rejectRequest is the fast path: no treasury call, the request is cancelled
// and the rejection is mirrored to the originating merchant record.
func (p *BatchProcessor) rejectRequest(ctx context.Context, req *entities.AutomatedPayoutRequest, result *entities.QueueProcessingResult) {
	if !req.CanTransitionTo(entities.PayoutStatusCancelled) {
		return
	}

	reason := req.Metadata.RejectionDetail
	if reason == "" {
		reason = fmt.Sprintf("rejected by automation policy (risk score %d)", req.RiskScore)
	}

	req.Status = entities.PayoutStatusCancelled
	req.FailureReason = reason
	if err := p.payoutRepo.Update(ctx, req); err != nil {
		p.logger.Error("Failed to persist rejection", zap.Int("request_id", req.ID), zap.Error(err))
		return
	}

	if req.OriginalRequestID != nil {
		if err := p.merchantPayoutRepo.MarkRejected(ctx, *req.OriginalRequestID, reason); err != nil {
			p.logger.Error("Failed to mirror rejection",
				zap.Int("request_id", req.ID),
				zap.Int("original_request_id", *req.OriginalRequestID),
				zap.Error(err),
			)
		}
	}

	result.Rejected++
}

// flagForReview leaves the request PENDING and notifies operators. The engine
// never promotes a request out of manual review on its own.
func (p *BatchProcessor) flagForReview(ctx context.Context, req *entities.AutomatedPayoutRequest, result *entities.QueueProcessingResult) {
	message := fmt.Sprintf("Payout #%d requires manual review: merchant %d, %s %s, risk score %d",
		req.ID, req.MerchantID, req.Amount.String(), req.Currency, req.RiskScore)

	record := &entities.AdminNotification{
		Type:      entities.NotificationManualReviewRequired,
		Message:   message,
		RequestID: &req.ID,
	}
	if err := p.notificationRepo.Create(ctx, record); err != nil {
		p.logger.Error("Failed to persist review notification", zap.Int("request_id", req.ID), zap.Error(err))
	}
	if err := p.notifier.Send(message); err != nil {
		p.logger.Warn("Failed to deliver review notification", zap.Int("request_id", req.ID), zap.Error(err))
	}

	result.ManualReview++
}

// processApproved groups approved requests by destination network and runs
// them through the treasury in bounded batches.
func (p *BatchProcessor) processApproved(ctx context.Context, approved []*entities.AutomatedPayoutRequest, result *entities.QueueProcessingResult, shouldStop func() bool) []*entities.AutomatedPayoutRequest {
	byNetwork := make(map[string][]*entities.AutomatedPayoutRequest)
	networks := make([]string, 0)
	for _, req := range approved {
		if _, seen := byNetwork[req.DestinationNetwork]; !seen {
			networks = append(networks, req.DestinationNetwork)
		}
		byNetwork[req.DestinationNetwork] = append(byNetwork[req.DestinationNetwork], req)
	}

	remaining := make([]*entities.AutomatedPayoutRequest, 0)
	for ni, network := range networks {
		requests := byNetwork[network]
		for start := 0; start < len(requests); start += p.config.OptimalBatchSize {
			if shouldStop() {
				remaining = append(remaining, requests[start:]...)
				for _, later := range networks[ni+1:] {
					remaining = append(remaining, byNetwork[later]...)
				}
				return remaining
			}

			end := start + p.config.OptimalBatchSize
			if end > len(requests) {
				end = len(requests)
			}
			p.executeBatch(ctx, network, requests[start:end], result)
			result.BatchesStarted++
		}
	}
	return remaining
}

// executeBatch runs one network-homogeneous batch against the treasury.
// Requests fail independently; a batch-level error fails every request still
// PROCESSING in this batch and nothing else.
func (p *BatchProcessor) executeBatch(ctx context.Context, network string, batch []*entities.AutomatedPayoutRequest, result *entities.QueueProcessingResult) {
	started := make([]*entities.AutomatedPayoutRequest, 0, len(batch))
	for _, req := range batch {
		if req.ProcessingAttempts >= entities.MaxProcessingAttempts {
			p.failRequest(ctx, req, network, "attempt limit", "processing attempt limit reached", result)
			continue
		}
		if !req.CanTransitionTo(entities.PayoutStatusProcessing) {
			continue
		}
		now := p.now()
		req.Status = entities.PayoutStatusProcessing
		req.ProcessingAttempts++
		req.LastAttemptAt = &now
		if err := p.payoutRepo.Update(ctx, req); err != nil {
			p.logger.Error("Failed to mark request processing", zap.Int("request_id", req.ID), zap.Error(err))
			continue
		}
		started = append(started, req)
	}
	if len(started) == 0 {
		return
	}

	wallet, err := p.treasury.GetTreasuryWalletForNetwork(ctx, network)
	if err != nil {
		p.failBatch(ctx, network, started, err, result)
		return
	}

	for _, req := range started {
		p.executeRequest(ctx, wallet, req, network, result)
	}
}

// executeRequest creates, auto-signs and executes one multi-sig transaction
func (p *BatchProcessor) executeRequest(ctx context.Context, wallet *treasury.WalletHandle, req *entities.AutomatedPayoutRequest, network string, result *entities.QueueProcessingResult) {
	tx, err := p.treasury.CreateMultiSigTransaction(ctx, treasury.CreateTransactionInput{
		WalletID:    wallet.ID,
		Type:        "PAYOUT",
		ToAddress:   req.DestinationWallet,
		Amount:      req.Amount.String(),
		Currency:    req.Currency,
		Memo:        fmt.Sprintf("automated payout #%d", req.ID),
		RequestedBy: p.config.AutomationIdentity,
		Metadata:    map[string]string{"payout_request_id": fmt.Sprintf("%d", req.ID)},
	})
	if err != nil {
		p.failRequest(ctx, req, network, "transaction creation", err.Error(), result)
		return
	}

	req.TreasuryTransactionID = tx.ID
	if err := p.payoutRepo.Update(ctx, req); err != nil {
		p.logger.Error("Failed to record treasury transaction id",
			zap.Int("request_id", req.ID),
			zap.String("treasury_transaction_id", tx.ID),
			zap.Error(err),
		)
	}

	signed, err := p.treasury.AutoSign(ctx, tx)
	if err != nil {
		p.failRequest(ctx, req, network, "auto-sign", err.Error(), result)
		return
	}
	if signed.CurrentSignatures < signed.RequiredSignatures {
		// awaiting co-signers; the request stays PROCESSING under its treasury id
		p.logger.Info("Transaction below signature threshold",
			zap.Int("request_id", req.ID),
			zap.String("treasury_transaction_id", signed.ID),
			zap.Int("current_signatures", signed.CurrentSignatures),
			zap.Int("required_signatures", signed.RequiredSignatures),
		)
		return
	}

	execution, err := p.treasury.ExecuteMultiSigTransaction(ctx, signed.ID, p.config.AutomationIdentity)
	if err != nil {
		p.failRequest(ctx, req, network, "execution", err.Error(), result)
		return
	}

	req.Status = entities.PayoutStatusExecuted
	req.TransactionHash = execution.TransactionHash
	req.FailureReason = ""
	if err := p.payoutRepo.Update(ctx, req); err != nil {
		p.logger.Error("Failed to persist execution", zap.Int("request_id", req.ID), zap.Error(err))
	}

	p.recordSuccess(ctx, req, execution.TransactionHash)
	result.Executed++
}

// recordSuccess mirrors completion onto the merchant record and appends the
// ledger entry for the executed payout.
func (p *BatchProcessor) recordSuccess(ctx context.Context, req *entities.AutomatedPayoutRequest, transactionHash string) {
	if req.OriginalRequestID != nil {
		if err := p.merchantPayoutRepo.MarkCompleted(ctx, *req.OriginalRequestID, transactionHash); err != nil {
			p.logger.Error("Failed to mirror completion",
				zap.Int("request_id", req.ID),
				zap.Int("original_request_id", *req.OriginalRequestID),
				zap.Error(err),
			)
		}
	}

	entry := &entities.LedgerEntry{
		MerchantID:      req.MerchantID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Direction:       entities.LedgerDirectionDebit,
		Reference:       fmt.Sprintf("payout-%d", req.ID),
		TransactionHash: transactionHash,
	}
	if err := p.ledgerRepo.Create(ctx, entry); err != nil {
		p.logger.Error("Failed to append ledger entry", zap.Int("request_id", req.ID), zap.Error(err))
	}
}

// failRequest marks one request FAILED with the captured reason
func (p *BatchProcessor) failRequest(ctx context.Context, req *entities.AutomatedPayoutRequest, network, stage, errMsg string, result *entities.QueueProcessingResult) {
	if !req.Status.IsTerminal() {
		req.Status = entities.PayoutStatusFailed
		req.FailureReason = fmt.Sprintf("%s: %s", stage, errMsg)
		if err := p.payoutRepo.Update(ctx, req); err != nil {
			p.logger.Error("Failed to persist failure", zap.Int("request_id", req.ID), zap.Error(err))
		}
	}

	result.Failed = append(result.Failed, entities.FailedPayoutDetail{
		RequestID: req.ID,
		Network:   network,
		Amount:    req.Amount.String(),
		Reason:    stage,
		Error:     errMsg,
	})

	p.logger.Warn("Payout request failed",
		zap.Int("request_id", req.ID),
		zap.String("network", network),
		zap.String("stage", stage),
		zap.String("error", errMsg),
	)
}

// failBatch handles a batch-level error: every request still PROCESSING in
// the batch fails with the shared reason, other batches are untouched.
func (p *BatchProcessor) failBatch(ctx context.Context, network string, batch []*entities.AutomatedPayoutRequest, batchErr error, result *entities.QueueProcessingResult) {
	for _, req := range batch {
		if req.Status != entities.PayoutStatusProcessing {
			continue
		}
		p.failRequest(ctx, req, network, "batch failure", batchErr.Error(), result)
	}

	p.audit.Record(ctx, p.config.AutomationIdentity, entities.AuditEventBatchFailure, map[string]interface{}{
		"network":    network,
		"batch_size": len(batch),
		"error":      batchErr.Error(),
	})

	message := fmt.Sprintf("Payout batch on %s failed (%d requests): %s", network, len(batch), batchErr.Error())
	record := &entities.AdminNotification{
		Type:    entities.NotificationBatchFailure,
		Message: message,
	}
	if err := p.notificationRepo.Create(ctx, record); err != nil {
		p.logger.Error("Failed to persist batch failure notification", zap.Error(err))
	}
	if err := p.notifier.Send(message); err != nil {
		p.logger.Warn("Failed to deliver batch failure notification", zap.Error(err))
	}
}
