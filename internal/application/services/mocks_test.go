package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/acecasino/payout_automation/internal/domain/entities"
	"github.com/acecasino/payout_automation/internal/domain/treasury"
)

// Common test errors
var (
	errMockStorage  = errors.New("mock storage error")
	errMockTreasury = errors.New("mock treasury error")
)

// mockPayoutRequestRepo implements PayoutRequestRepository for testing
type mockPayoutRequestRepo struct {
	mu       sync.Mutex
	requests map[int]*entities.AutomatedPayoutRequest
	nextID   int

	CreateErr         error
	UpdateErr         error
	CompletedToWallet int64
	RecentPayouts     int64
	CreatedSince      []entities.AutomatedPayoutRequest
	CreatedSinceErr   error
	UpdateCalls       int
}

func newMockPayoutRequestRepo() *mockPayoutRequestRepo {
	return &mockPayoutRequestRepo{
		requests: make(map[int]*entities.AutomatedPayoutRequest),
		nextID:   1,
	}
}

func (m *mockPayoutRequestRepo) Create(ctx context.Context, request *entities.AutomatedPayoutRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	request.ID = m.nextID
	m.nextID++
	copied := *request
	m.requests[request.ID] = &copied
	return nil
}

func (m *mockPayoutRequestRepo) GetByID(ctx context.Context, id int) (*entities.AutomatedPayoutRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *req
	return &copied, nil
}

func (m *mockPayoutRequestRepo) GetByMerchantID(ctx context.Context, merchantID int, limit, offset int) ([]entities.AutomatedPayoutRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.AutomatedPayoutRequest, 0)
	for _, req := range m.requests {
		if req.MerchantID == merchantID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *mockPayoutRequestRepo) GetCreatedSince(ctx context.Context, since time.Time) ([]entities.AutomatedPayoutRequest, error) {
	if m.CreatedSinceErr != nil {
		return nil, m.CreatedSinceErr
	}
	return m.CreatedSince, nil
}

func (m *mockPayoutRequestRepo) Update(ctx context.Context, request *entities.AutomatedPayoutRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	copied := *request
	m.requests[request.ID] = &copied
	return nil
}

func (m *mockPayoutRequestRepo) CountCompletedToWallet(ctx context.Context, merchantID int, wallet string) (int64, error) {
	return m.CompletedToWallet, nil
}

func (m *mockPayoutRequestRepo) CountByMerchantSince(ctx context.Context, merchantID int, since time.Time) (int64, error) {
	return m.RecentPayouts, nil
}

// mockMerchantRepo implements MerchantRepository for testing
type mockMerchantRepo struct {
	Merchant   *entities.Merchant
	Stats      *entities.MerchantOrderStats
	GetByIDErr error
	StatsErr   error
}

func (m *mockMerchantRepo) GetByID(ctx context.Context, id int) (*entities.Merchant, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	return m.Merchant, nil
}

func (m *mockMerchantRepo) GetOrderStats(ctx context.Context, merchantID int) (*entities.MerchantOrderStats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	if m.Stats == nil {
		return &entities.MerchantOrderStats{}, nil
	}
	return m.Stats, nil
}

// mockRiskScoreRepo implements RiskScoreRepository for testing
type mockRiskScoreRepo struct {
	mu     sync.Mutex
	scores map[int]*entities.MerchantRiskScore

	UpsertErr   error
	UpsertCalls int
}

func newMockRiskScoreRepo() *mockRiskScoreRepo {
	return &mockRiskScoreRepo{scores: make(map[int]*entities.MerchantRiskScore)}
}

func (m *mockRiskScoreRepo) Upsert(ctx context.Context, score *entities.MerchantRiskScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	copied := *score
	m.scores[score.MerchantID] = &copied
	return nil
}

func (m *mockRiskScoreRepo) GetByMerchantID(ctx context.Context, merchantID int) (*entities.MerchantRiskScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score, ok := m.scores[merchantID]
	if !ok {
		return nil, nil
	}
	copied := *score
	return &copied, nil
}

// mockMerchantPayoutRepo implements MerchantPayoutRequestRepository for testing
type mockMerchantPayoutRepo struct {
	mu        sync.Mutex
	Completed map[int]string
	Rejected  map[int]string
}

func newMockMerchantPayoutRepo() *mockMerchantPayoutRepo {
	return &mockMerchantPayoutRepo{
		Completed: make(map[int]string),
		Rejected:  make(map[int]string),
	}
}

func (m *mockMerchantPayoutRepo) GetByID(ctx context.Context, id int) (*entities.MerchantPayoutRequest, error) {
	return nil, nil
}

func (m *mockMerchantPayoutRepo) MarkCompleted(ctx context.Context, id int, transactionHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed[id] = transactionHash
	return nil
}

func (m *mockMerchantPayoutRepo) MarkRejected(ctx context.Context, id int, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected[id] = reason
	return nil
}

// mockLedgerRepo implements LedgerRepository for testing
type mockLedgerRepo struct {
	mu      sync.Mutex
	Entries []entities.LedgerEntry
}

func (m *mockLedgerRepo) Create(ctx context.Context, entry *entities.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *entry)
	return nil
}

func (m *mockLedgerRepo) GetByMerchantID(ctx context.Context, merchantID int, limit, offset int) ([]entities.LedgerEntry, error) {
	return m.Entries, nil
}

// mockAdminNotificationRepo implements AdminNotificationRepository for testing
type mockAdminNotificationRepo struct {
	mu            sync.Mutex
	Notifications []entities.AdminNotification
}

func (m *mockAdminNotificationRepo) Create(ctx context.Context, notification *entities.AdminNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, *notification)
	return nil
}

func (m *mockAdminNotificationRepo) GetRecent(ctx context.Context, limit int) ([]entities.AdminNotification, error) {
	return m.Notifications, nil
}

// mockAuditLogRepo implements AuditLogRepository for testing
type mockAuditLogRepo struct {
	mu   sync.Mutex
	Logs []entities.AuditLog
}

func (m *mockAuditLogRepo) Create(ctx context.Context, log *entities.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, *log)
	return nil
}

func (m *mockAuditLogRepo) GetByEventType(ctx context.Context, eventType string, limit, offset int) ([]entities.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.AuditLog, 0)
	for _, log := range m.Logs {
		if log.EventType == eventType {
			out = append(out, log)
		}
	}
	return out, nil
}

func (m *mockAuditLogRepo) GetRecent(ctx context.Context, limit int) ([]entities.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.AuditLog(nil), m.Logs...), nil
}

func (m *mockAuditLogRepo) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Logs))
	for _, log := range m.Logs {
		types = append(types, log.EventType)
	}
	return types
}

// mockTreasury implements treasury.Service for testing
type mockTreasury struct {
	mu sync.Mutex

	WalletFunc  func(network string) (*treasury.WalletHandle, error)
	CreateFunc  func(input treasury.CreateTransactionInput) (*treasury.Transaction, error)
	SignFunc    func(tx *treasury.Transaction) (*treasury.Transaction, error)
	ExecuteFunc func(transactionID string) (*treasury.ExecutionResult, error)

	CreateCalls  int
	ExecuteCalls int
	nextTxID     int
}

func newMockTreasury() *mockTreasury {
	return &mockTreasury{nextTxID: 1}
}

func (m *mockTreasury) GetTreasuryWalletForNetwork(ctx context.Context, network string) (*treasury.WalletHandle, error) {
	if m.WalletFunc != nil {
		return m.WalletFunc(network)
	}
	return &treasury.WalletHandle{ID: "wallet-" + network, Network: network, Status: treasury.WalletStatusActive}, nil
}

func (m *mockTreasury) CreateMultiSigTransaction(ctx context.Context, input treasury.CreateTransactionInput) (*treasury.Transaction, error) {
	m.mu.Lock()
	m.CreateCalls++
	id := m.nextTxID
	m.nextTxID++
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(input)
	}
	return &treasury.Transaction{
		ID:                 txID(id),
		Status:             treasury.TransactionStatusPendingSignatures,
		RequiredSignatures: 2,
		CurrentSignatures:  0,
	}, nil
}

func (m *mockTreasury) AutoSign(ctx context.Context, tx *treasury.Transaction) (*treasury.Transaction, error) {
	if m.SignFunc != nil {
		return m.SignFunc(tx)
	}
	signed := *tx
	signed.CurrentSignatures = signed.RequiredSignatures
	signed.Status = treasury.TransactionStatusReadyToExecute
	return &signed, nil
}

func (m *mockTreasury) ExecuteMultiSigTransaction(ctx context.Context, transactionID, executorID string) (*treasury.ExecutionResult, error) {
	m.mu.Lock()
	m.ExecuteCalls++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(transactionID)
	}
	return &treasury.ExecutionResult{TransactionHash: "0xhash-" + transactionID}, nil
}

func txID(n int) string {
	return fmt.Sprintf("tx-%d", n)
}

// mockNotifier implements notification.Sender for testing
type mockNotifier struct {
	mu       sync.Mutex
	Messages []string
	SendErr  error
}

func (m *mockNotifier) Send(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Messages = append(m.Messages, message)
	return nil
}
