// Package audit maintains the append-only trail of evaluated transactions.
package audit

import (
	"context"
	"log/slog"
	"time"

	"spendgate/internal/model"
)

// Store is the slice of the storage layer the recorder needs.
type Store interface {
	AppendHistory(ctx context.Context, record *model.HistoryRecord) error
	GetHistory(ctx context.Context, limit int) ([]model.HistoryRecord, error)
}

// Recorder captures one record per evaluated request. It is append-only and
// delegates persistence to the storage layer so tests can swap sinks.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends one history record, filling a zero timestamp.
func (r *Recorder) Record(ctx context.Context, record *model.HistoryRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	return r.store.AppendHistory(ctx, record)
}

// List returns records newest first. A non-positive limit returns all.
func (r *Recorder) List(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	return r.store.GetHistory(ctx, limit)
}
