package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"spendgate/internal/common"
	"spendgate/internal/model"
)

// SaveTransaction inserts a new transaction record.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	var decidedAt any
	if !txn.DecidedAt.IsZero() {
		decidedAt = txn.DecidedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_task, category, amount, status, created_at, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Task, txn.Category, txn.Amount, string(txn.Status), txn.CreatedAt, decidedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// UpdateTransactionStatus moves a pending transaction to its terminal
// status. Terminal transactions are never reverted, so an update that finds
// no pending row is an error.
func (s *SQLiteStorage) UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus, decidedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if status != model.StatusApproved && status != model.StatusRejected {
		return fmt.Errorf("%w: status %q is not terminal", ErrInvalidTransaction, status)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET status = ?, decided_at = ? WHERE id = ? AND status = ?`,
		string(status), decidedAt, id, string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: pending transaction %q", common.ErrNotFound, id)
	}
	return nil
}

// GetTransactionByID returns a transaction record, or nil if it does not exist.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var txn model.Transaction
	var status string
	var decidedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_task, category, amount, status, created_at, decided_at
		 FROM transactions WHERE id = ?`, id).Scan(
		&txn.ID, &txn.Task, &txn.Category, &txn.Amount, &status, &txn.CreatedAt, &decidedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	txn.Status = model.TransactionStatus(status)
	if decidedAt.Valid {
		txn.DecidedAt = decidedAt.Time
	}
	return &txn, nil
}
