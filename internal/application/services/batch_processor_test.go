package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	"github.com/acecasino/payout_automation/internal/domain/treasury"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type batchFixture struct {
	processor          *BatchProcessor
	payoutRepo         *mockPayoutRequestRepo
	merchantPayoutRepo *mockMerchantPayoutRepo
	ledgerRepo         *mockLedgerRepo
	notificationRepo   *mockAdminNotificationRepo
	treasury           *mockTreasury
	auditRepo          *mockAuditLogRepo
	notifier           *mockNotifier
}

func newBatchFixture(config BatchProcessorConfig) *batchFixture {
	f := &batchFixture{
		payoutRepo:         newMockPayoutRequestRepo(),
		merchantPayoutRepo: newMockMerchantPayoutRepo(),
		ledgerRepo:         &mockLedgerRepo{},
		notificationRepo:   &mockAdminNotificationRepo{},
		treasury:           newMockTreasury(),
		auditRepo:          &mockAuditLogRepo{},
		notifier:           &mockNotifier{},
	}
	audit := NewAuditService(f.auditRepo, zap.NewNop())
	f.processor = NewBatchProcessor(
		f.payoutRepo,
		f.merchantPayoutRepo,
		f.ledgerRepo,
		f.notificationRepo,
		f.treasury,
		audit,
		f.notifier,
		zap.NewNop(),
		config,
	)
	return f
}

func neverStop() bool { return false }

func approvedRequest(id int, network string) *entities.AutomatedPayoutRequest {
	return &entities.AutomatedPayoutRequest{
		ID:                 id,
		MerchantID:         1,
		Amount:             decimal.NewFromInt(100),
		Currency:           "USDT",
		DestinationWallet:  fmt.Sprintf("0xdest-%d", id),
		DestinationNetwork: network,
		ScheduleType:       entities.ScheduleTypeScheduled,
		Priority:           entities.PriorityNormal,
		Status:             entities.PayoutStatusPending,
		AutomationDecision: entities.DecisionAutoApprove,
		ScheduledFor:       time.Now(),
	}
}

const testQueueID = "SCHEDULED-2026-03-10"

// testBatch mirrors the snapshot MarkProcessing hands the processor: the
// queue's requests sorted by priority weight.
func testBatch(requests ...*entities.AutomatedPayoutRequest) []*entities.AutomatedPayoutRequest {
	queue := &entities.ProcessingQueue{
		ID:     testQueueID,
		Type:   entities.QueueTypeScheduled,
		Status: entities.QueueStatusProcessing,
	}
	for _, req := range requests {
		queue.Insert(req)
	}
	return queue.Requests
}

func TestProcessQueue_ExecutesApprovedRequests(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	req := approvedRequest(1, "ethereum")

	result, remaining := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	assert.Empty(t, remaining)
	assert.Equal(t, 1, result.Executed)
	assert.Empty(t, result.Failed)
	assert.Equal(t, entities.PayoutStatusExecuted, req.Status)
	assert.NotEmpty(t, req.TransactionHash)
	assert.NotEmpty(t, req.TreasuryTransactionID)
	assert.Equal(t, 1, req.ProcessingAttempts)

	require.Len(t, f.ledgerRepo.Entries, 1)
	assert.Equal(t, entities.LedgerDirectionDebit, f.ledgerRepo.Entries[0].Direction)
	assert.Equal(t, "payout-1", f.ledgerRepo.Entries[0].Reference)
}

func TestProcessQueue_StampsAttemptTime(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	attemptAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.processor.now = func() time.Time { return attemptAt }
	req := approvedRequest(1, "ethereum")

	f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	require.NotNil(t, req.LastAttemptAt)
	assert.Equal(t, attemptAt, *req.LastAttemptAt)
}

func TestProcessQueue_RejectedFastPathSkipsTreasury(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	req := approvedRequest(1, "ethereum")
	req.AutomationDecision = entities.DecisionAutoReject
	original := 42
	req.OriginalRequestID = &original

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, entities.PayoutStatusCancelled, req.Status)
	assert.NotEmpty(t, req.FailureReason)
	assert.Equal(t, 0, f.treasury.CreateCalls, "rejection must not touch the treasury")
	assert.Contains(t, f.merchantPayoutRepo.Rejected, 42)
}

func TestProcessQueue_ManualReviewStaysPendingAndNotifies(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	req := approvedRequest(1, "ethereum")
	req.AutomationDecision = entities.DecisionManualReview

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	assert.Equal(t, 1, result.ManualReview)
	assert.Equal(t, entities.PayoutStatusPending, req.Status, "engine never promotes a review on its own")
	assert.Equal(t, 0, f.treasury.CreateCalls)
	require.Len(t, f.notificationRepo.Notifications, 1)
	assert.Equal(t, entities.NotificationManualReviewRequired, f.notificationRepo.Notifications[0].Type)
	assert.Len(t, f.notifier.Messages, 1)
}

func TestProcessQueue_OneBadRequestFailsAlone(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	good := approvedRequest(1, "ethereum")
	bad := approvedRequest(2, "ethereum")
	other := approvedRequest(3, "ethereum")

	f.treasury.CreateFunc = func(input treasury.CreateTransactionInput) (*treasury.Transaction, error) {
		if input.ToAddress == bad.DestinationWallet {
			return nil, errMockTreasury
		}
		return &treasury.Transaction{ID: "tx-" + input.ToAddress, RequiredSignatures: 2, CurrentSignatures: 0}, nil
	}

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(good, bad, other), neverStop)

	assert.Equal(t, 2, result.Executed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].RequestID)
	assert.Equal(t, "transaction creation", result.Failed[0].Reason)

	assert.Equal(t, entities.PayoutStatusExecuted, good.Status)
	assert.Equal(t, entities.PayoutStatusFailed, bad.Status)
	assert.Equal(t, entities.PayoutStatusExecuted, other.Status)
}

func TestProcessQueue_BatchFailureSparesOtherNetworks(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	eth1 := approvedRequest(1, "ethereum")
	eth2 := approvedRequest(2, "ethereum")
	tron := approvedRequest(3, "tron")

	f.treasury.WalletFunc = func(network string) (*treasury.WalletHandle, error) {
		if network == "ethereum" {
			return nil, errMockTreasury
		}
		return &treasury.WalletHandle{ID: "wallet-tron", Network: network, Status: treasury.WalletStatusActive}, nil
	}

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(eth1, eth2, tron), neverStop)

	assert.Equal(t, 1, result.Executed)
	assert.Len(t, result.Failed, 2)
	assert.Equal(t, entities.PayoutStatusFailed, eth1.Status)
	assert.Equal(t, entities.PayoutStatusFailed, eth2.Status)
	assert.Equal(t, entities.PayoutStatusExecuted, tron.Status)

	assert.Contains(t, f.auditRepo.eventTypes(), entities.AuditEventBatchFailure)
	require.NotEmpty(t, f.notificationRepo.Notifications)
	assert.Equal(t, entities.NotificationBatchFailure, f.notificationRepo.Notifications[0].Type)
}

func TestProcessQueue_SplitsBatchesByConfiguredSize(t *testing.T) {
	config := DefaultBatchProcessorConfig()
	config.OptimalBatchSize = 2
	f := newBatchFixture(config)

	requests := make([]*entities.AutomatedPayoutRequest, 0, 5)
	for i := 1; i <= 5; i++ {
		requests = append(requests, approvedRequest(i, "ethereum"))
	}

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(requests...), neverStop)

	assert.Equal(t, 5, result.Executed)
	assert.Equal(t, 3, result.BatchesStarted)
}

func TestProcessQueue_StopReturnsRemaining(t *testing.T) {
	config := DefaultBatchProcessorConfig()
	config.OptimalBatchSize = 2
	f := newBatchFixture(config)

	requests := make([]*entities.AutomatedPayoutRequest, 0, 5)
	for i := 1; i <= 5; i++ {
		requests = append(requests, approvedRequest(i, "ethereum"))
	}

	calls := 0
	stopAfterFirstBatch := func() bool {
		calls++
		return calls > 1
	}

	result, remaining := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(requests...), stopAfterFirstBatch)

	assert.Equal(t, 2, result.Executed)
	assert.Equal(t, 3, result.Deferred)
	require.Len(t, remaining, 3)
	for _, req := range remaining {
		assert.Equal(t, entities.PayoutStatusPending, req.Status, "deferred requests keep their state")
		assert.Equal(t, 0, req.ProcessingAttempts)
	}
}

func TestProcessQueue_AttemptLimitFailsRequest(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	req := approvedRequest(1, "ethereum")
	req.ProcessingAttempts = entities.MaxProcessingAttempts

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	assert.Equal(t, 0, result.Executed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "attempt limit", result.Failed[0].Reason)
	assert.Equal(t, entities.PayoutStatusFailed, req.Status)
	assert.Equal(t, 0, f.treasury.CreateCalls)
}

func TestProcessQueue_BelowSignatureThresholdStaysProcessing(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	req := approvedRequest(1, "ethereum")

	f.treasury.SignFunc = func(tx *treasury.Transaction) (*treasury.Transaction, error) {
		signed := *tx
		signed.CurrentSignatures = 1
		signed.RequiredSignatures = 2
		return &signed, nil
	}

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	assert.Equal(t, 0, result.Executed)
	assert.Empty(t, result.Failed)
	assert.Equal(t, entities.PayoutStatusProcessing, req.Status, "waits for co-signers under its treasury id")
	assert.NotEmpty(t, req.TreasuryTransactionID)
	assert.Equal(t, 0, f.treasury.ExecuteCalls)
}

func TestProcessQueue_ExecutionFailureMarksFailed(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	req := approvedRequest(1, "ethereum")
	f.treasury.ExecuteFunc = func(transactionID string) (*treasury.ExecutionResult, error) {
		return nil, errMockTreasury
	}

	result, _ := f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "execution", result.Failed[0].Reason)
	assert.Equal(t, entities.PayoutStatusFailed, req.Status)
	assert.Empty(t, f.ledgerRepo.Entries)
}

func TestProcessQueue_SuccessMirrorsMerchantRecord(t *testing.T) {
	f := newBatchFixture(DefaultBatchProcessorConfig())
	req := approvedRequest(1, "ethereum")
	original := 77
	req.OriginalRequestID = &original

	f.processor.ProcessQueue(context.Background(), testQueueID, testBatch(req), neverStop)

	hash, ok := f.merchantPayoutRepo.Completed[77]
	require.True(t, ok)
	assert.Equal(t, req.TransactionHash, hash)
}

func TestPayoutStatusStateMachine(t *testing.T) {
	pending := &entities.AutomatedPayoutRequest{Status: entities.PayoutStatusPending}
	assert.True(t, pending.CanTransitionTo(entities.PayoutStatusProcessing))
	assert.True(t, pending.CanTransitionTo(entities.PayoutStatusCancelled))
	assert.False(t, pending.CanTransitionTo(entities.PayoutStatusExecuted))
	assert.False(t, pending.CanTransitionTo(entities.PayoutStatusFailed))

	processing := &entities.AutomatedPayoutRequest{Status: entities.PayoutStatusProcessing}
	assert.True(t, processing.CanTransitionTo(entities.PayoutStatusExecuted))
	assert.True(t, processing.CanTransitionTo(entities.PayoutStatusFailed))
	assert.False(t, processing.CanTransitionTo(entities.PayoutStatusCancelled))

	for _, terminal := range []entities.PayoutStatus{entities.PayoutStatusExecuted, entities.PayoutStatusFailed, entities.PayoutStatusCancelled} {
		req := &entities.AutomatedPayoutRequest{Status: terminal}
		for _, next := range []entities.PayoutStatus{entities.PayoutStatusPending, entities.PayoutStatusProcessing, entities.PayoutStatusExecuted, entities.PayoutStatusFailed, entities.PayoutStatusCancelled} {
			assert.False(t, req.CanTransitionTo(next), "%s -> %s must be forbidden", terminal, next)
		}
	}
}
