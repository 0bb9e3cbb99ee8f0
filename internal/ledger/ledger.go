// Package ledger implements the budget ledger: per-category balances with
// atomic deduct-if-sufficient semantics and proportional limit rescaling.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"spendgate/internal/common"
	"spendgate/internal/model"
)

// BudgetStore is the slice of the storage layer the ledger needs.
type BudgetStore interface {
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	DeductBudget(ctx context.Context, name string, amount float64) (float64, error)
	UpdateCategoryLimit(ctx context.Context, name string, newLimit, newRemaining float64) error
}

// Ledger mediates all budget mutations. Deductions within one category are
// serialized by a keyed mutex so a sufficiency check and the following
// deduction observe the same balance; requests against different categories
// proceed independently.
type Ledger struct {
	store BudgetStore
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

// New creates a ledger over the given store.
func New(store BudgetStore) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) lockFor(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[name] = lock
	}
	return lock
}

// WithCategoryLock runs fn while holding the category's mutex. Callers must
// not perform blocking external calls inside fn; classification happens
// before the lock is taken.
func (l *Ledger) WithCategoryLock(name string, fn func() error) error {
	lock := l.lockFor(model.NormalizeCategoryName(name))
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// Sufficient reports whether the category's remaining budget covers the
// amount. It is a pure read; the balance it returns is the one observed.
func (l *Ledger) Sufficient(ctx context.Context, name string, amount float64) (bool, float64, error) {
	cat, err := l.store.GetCategoryByName(ctx, name)
	if err != nil {
		return false, 0, err
	}
	if cat == nil {
		return false, 0, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	return cat.RemainingBudget-amount >= 0, cat.RemainingBudget, nil
}

// Deduct removes amount from the category's remaining budget. A non-positive
// amount succeeds without mutation. The store refuses any deduction that
// would drive the balance negative, so the ledger can never overdraw even if
// a caller skips the sufficiency check.
func (l *Ledger) Deduct(ctx context.Context, name string, amount float64) (float64, error) {
	balance, err := l.store.DeductBudget(ctx, name, amount)
	if err != nil {
		return balance, err
	}
	if amount > 0 {
		slog.Info("budget deducted",
			"category", model.NormalizeCategoryName(name),
			"amount", amount,
			"remaining", balance)
	}
	return balance, nil
}

// RescaleRemaining computes the remaining budget after a limit change,
// preserving the amount already spent: spent = oldInitial - oldRemaining,
// remaining = max(newLimit - spent, 0). A category that never had a limit
// simply receives the new limit in full.
func RescaleRemaining(oldInitial, oldRemaining, newLimit float64) float64 {
	if oldInitial == 0 {
		return newLimit
	}
	spent := oldInitial - oldRemaining
	remaining := newLimit - spent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetLimit changes a category's spending limit, rescaling the remaining
// budget proportionally rather than resetting it. Runs under the category
// lock so a concurrent deduction cannot interleave with the read-rescale-
// write sequence.
func (l *Ledger) SetLimit(ctx context.Context, name string, newLimit float64) (*model.Category, error) {
	if newLimit < 0 {
		return nil, fmt.Errorf("new limit cannot be negative")
	}

	normalized := model.NormalizeCategoryName(name)
	var updated *model.Category
	err := l.WithCategoryLock(normalized, func() error {
		cat, err := l.store.GetCategoryByName(ctx, normalized)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("%w: category %q", common.ErrNotFound, normalized)
		}

		newRemaining := RescaleRemaining(cat.InitialLimit, cat.RemainingBudget, newLimit)
		if err := l.store.UpdateCategoryLimit(ctx, normalized, newLimit, newRemaining); err != nil {
			return err
		}

		slog.Info("category limit updated",
			"category", normalized,
			"old_limit", cat.InitialLimit,
			"new_limit", newLimit,
			"remaining", newRemaining)

		cat.InitialLimit = newLimit
		cat.RemainingBudget = newRemaining
		updated = cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
