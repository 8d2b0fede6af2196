package treasury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/acecasino/payout_automation/internal/domain/treasury"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ClientConfig holds connection settings for the treasury custody service
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the HTTP implementation of the treasury service contract
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new treasury HTTP client
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetTreasuryWalletForNetwork resolves the custodial wallet for a network
func (c *Client) GetTreasuryWalletForNetwork(ctx context.Context, network string) (*domain.WalletHandle, error) {
	var wallet domain.WalletHandle
	path := fmt.Sprintf("/api/v1/wallets/network/%s", network)
	if err := c.do(ctx, http.MethodGet, path, nil, &wallet); err != nil {
		return nil, errors.Wrapf(err, "treasury: resolve wallet for network %s", network)
	}
	if wallet.Status != domain.WalletStatusActive {
		return nil, errors.Errorf("treasury: wallet %s for network %s is %s", wallet.ID, network, wallet.Status)
	}
	return &wallet, nil
}

// CreateMultiSigTransaction creates a pending multi-sig transaction
func (c *Client) CreateMultiSigTransaction(ctx context.Context, input domain.CreateTransactionInput) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/v1/transactions", input, &tx); err != nil {
		return nil, errors.Wrap(err, "treasury: create multi-sig transaction")
	}
	return &tx, nil
}

// AutoSign contributes the automation identity's signature
func (c *Client) AutoSign(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	var signed domain.Transaction
	path := fmt.Sprintf("/api/v1/transactions/%s/auto-sign", tx.ID)
	if err := c.do(ctx, http.MethodPost, path, nil, &signed); err != nil {
		return nil, errors.Wrapf(err, "treasury: auto-sign transaction %s", tx.ID)
	}
	return &signed, nil
}

// ExecuteMultiSigTransaction broadcasts a fully signed transaction
func (c *Client) ExecuteMultiSigTransaction(ctx context.Context, transactionID, executorID string) (*domain.ExecutionResult, error) {
	var result domain.ExecutionResult
	path := fmt.Sprintf("/api/v1/transactions/%s/execute", transactionID)
	body := map[string]string{"executor_id": executorID}
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, errors.Wrapf(err, "treasury: execute transaction %s", transactionID)
	}
	return &result, nil
}

// do performs one JSON request against the custody service
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("Treasury request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return errors.Errorf("treasury responded %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}
