package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendgate/internal/model"
)

// AppendHistory inserts one audit trail record. History rows are never
// updated or deleted; there is deliberately no corresponding mutation method.
func (s *SQLiteStorage) AppendHistory(ctx context.Context, record *model.HistoryRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateHistoryRecord(record); err != nil {
		return err
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO history (user_task, category, amount, decision, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		record.Task, record.Category, record.Amount, string(record.Decision), record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get history ID: %w", err)
	}
	record.ID = id

	slog.Debug("appended history record",
		"id", id,
		"category", record.Category,
		"decision", record.Decision)
	return nil
}

// GetHistory returns audit trail records, newest first. A non-positive limit
// returns all records.
func (s *SQLiteStorage) GetHistory(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_task, category, amount, decision, timestamp
		FROM history
		ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []model.HistoryRecord
	for rows.Next() {
		var record model.HistoryRecord
		var decision string
		if err := rows.Scan(&record.ID, &record.Task, &record.Category, &record.Amount, &decision, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		record.Decision = model.Decision(decision)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return records, nil
}
