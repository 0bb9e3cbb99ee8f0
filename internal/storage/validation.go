package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"spendgate/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidHistory     = errors.New("invalid history record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAmount ensures a monetary amount is a finite, non-negative number.
func validateAmount(amount float64, paramName string) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidAmount, paramName)
	}
	if amount < 0 {
		return fmt.Errorf("%w: %s cannot be negative", ErrInvalidAmount, paramName)
	}
	return nil
}

// validateHistoryRecord validates an audit trail record before insertion.
func validateHistoryRecord(record *model.HistoryRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if strings.TrimSpace(record.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidHistory)
	}
	switch record.Decision {
	case model.DecisionAllow, model.DecisionBlock:
	default:
		return fmt.Errorf("%w: decision %q", ErrInvalidHistory, record.Decision)
	}
	return nil
}

// validateTransaction validates a transaction record.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := txn.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}
