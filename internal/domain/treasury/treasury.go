// Package treasury defines the contract the payout engine consumes from the
// multi-signature treasury custody service. Key custody, signature collection
// and on-chain broadcast live behind this boundary and are not modeled here.
package treasury

import "context"

// Wallet statuses reported by the custody service
const (
	WalletStatusActive = "ACTIVE"
	WalletStatusFrozen = "FROZEN"
)

// WalletHandle identifies a custodial treasury wallet for one network
type WalletHandle struct {
	ID      string `json:"id"`
	Network string `json:"network"`
	Status  string `json:"status"`
}

// Transaction statuses reported by the custody service
const (
	TransactionStatusPendingSignatures = "PENDING_SIGNATURES"
	TransactionStatusReadyToExecute    = "READY_TO_EXECUTE"
	TransactionStatusExecuted          = "EXECUTED"
)

// Transaction is a multi-signature transaction managed by the custody service
type Transaction struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	RequiredSignatures int    `json:"required_signatures"`
	CurrentSignatures  int    `json:"current_signatures"`
}

// CreateTransactionInput carries the fields for a new multi-sig transaction
type CreateTransactionInput struct {
	WalletID    string            `json:"wallet_id"`
	Type        string            `json:"type"`
	ToAddress   string            `json:"to_address"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Memo        string            `json:"memo"`
	RequestedBy string            `json:"requested_by"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ExecutionResult is returned when a fully signed transaction is broadcast
type ExecutionResult struct {
	TransactionHash string `json:"transaction_hash"`
}

// Service is the narrow treasury contract the batch processor depends on
type Service interface {
	GetTreasuryWalletForNetwork(ctx context.Context, network string) (*WalletHandle, error)
	CreateMultiSigTransaction(ctx context.Context, input CreateTransactionInput) (*Transaction, error)
	AutoSign(ctx context.Context, tx *Transaction) (*Transaction, error)
	ExecuteMultiSigTransaction(ctx context.Context, transactionID, executorID string) (*ExecutionResult, error)
}
