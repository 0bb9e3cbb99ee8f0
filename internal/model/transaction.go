package model

import (
	"fmt"
	"strings"
	"time"
)

// TransactionStatus indicates where a transaction sits in its lifecycle.
type TransactionStatus string

// Transaction status constants.
const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
)

// Transaction represents a single agent purchase request as it moves through
// evaluation. It is created pending and transitions to approved or rejected
// exactly once.
type Transaction struct {
	CreatedAt time.Time
	DecidedAt time.Time
	ID        string
	Task      string
	Category  string
	Status    TransactionStatus
	Amount    float64
}

// Validate checks transaction invariants before persistence.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction missing ID")
	}
	if strings.TrimSpace(t.Task) == "" {
		return fmt.Errorf("transaction missing task")
	}
	if t.Amount < 0 {
		return fmt.Errorf("transaction amount cannot be negative")
	}
	switch t.Status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return fmt.Errorf("invalid transaction status: %s", t.Status)
	}
	return nil
}

// Decided reports whether the transaction has reached a terminal status.
func (t *Transaction) Decided() bool {
	return t.Status == StatusApproved || t.Status == StatusRejected
}
