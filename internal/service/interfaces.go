// Package service defines the interfaces shared across application services.
package service

import (
	"context"
	"time"

	"spendgate/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, limit float64, domains []string) (*model.Category, error)
	RenameCategory(ctx context.Context, name, newName string) error
	UpdateCategoryLimit(ctx context.Context, name string, newLimit, newRemaining float64) error
	ReplaceCategoryDomains(ctx context.Context, name string, domains []string) error
	DeleteCategory(ctx context.Context, name string) error

	// Budget operations
	DeductBudget(ctx context.Context, name string, amount float64) (float64, error)

	// Audit trail
	AppendHistory(ctx context.Context, record *model.HistoryRecord) error
	GetHistory(ctx context.Context, limit int) ([]model.HistoryRecord, error)

	// Transaction records
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus, decidedAt time.Time) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ContextDecision is a classifier's judgment of one proposed purchase. It is
// purely advisory; classifiers never return errors, they fail closed.
type ContextDecision struct {
	Reasoning string
	Valid     bool
}

// Classifier decides whether a proposed purchase is compatible with its
// account category. Implementations must be side-effect free and must fold
// any internal failure into a negative decision.
type Classifier interface {
	Classify(ctx context.Context, category model.Category, task, domain string) ContextDecision
}

// RetryOptions configures retry behavior for operations against external
// collaborators.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
