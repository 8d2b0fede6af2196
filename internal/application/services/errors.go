package services

import "errors"

// Validation errors surfaced synchronously to callers
var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrInvalidAmount    = errors.New("payout amount must be positive")
	ErrInvalidTimeframe = errors.New("unknown metrics timeframe")
	ErrProcessingHalted = errors.New("payout processing is halted")
)
