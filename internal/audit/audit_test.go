package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendgate/internal/model"
)

type fakeStore struct {
	records []model.HistoryRecord
	err     error
}

func (f *fakeStore) AppendHistory(_ context.Context, record *model.HistoryRecord) error {
	if f.err != nil {
		return f.err
	}
	record.ID = int64(len(f.records) + 1)
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeStore) GetHistory(_ context.Context, limit int) ([]model.HistoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func TestRecorderFillsTimestamp(t *testing.T) {
	store := &fakeStore{}
	recorder := NewRecorder(store, nil)

	record := &model.HistoryRecord{
		Task:     "task",
		Category: "cloud",
		Decision: model.DecisionAllow,
	}
	require.NoError(t, recorder.Record(context.Background(), record))
	assert.False(t, record.Timestamp.IsZero())
}

func TestRecorderPreservesExplicitTimestamp(t *testing.T) {
	store := &fakeStore{}
	recorder := NewRecorder(store, nil)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &model.HistoryRecord{
		Task:      "task",
		Category:  "cloud",
		Decision:  model.DecisionBlock,
		Timestamp: ts,
	}
	require.NoError(t, recorder.Record(context.Background(), record))
	assert.Equal(t, ts, record.Timestamp)
}

func TestRecorderSurfacesStoreErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	recorder := NewRecorder(store, nil)

	err := recorder.Record(context.Background(), &model.HistoryRecord{
		Task:     "task",
		Category: "cloud",
		Decision: model.DecisionAllow,
	})
	assert.Error(t, err)
}

func TestRecorderList(t *testing.T) {
	store := &fakeStore{}
	recorder := NewRecorder(store, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, recorder.Record(context.Background(), &model.HistoryRecord{
			Task:     "task",
			Category: "cloud",
			Decision: model.DecisionAllow,
		}))
	}

	records, err := recorder.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	all, err := recorder.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
