package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendgate/internal/model"
)

func TestAppendAndGetHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	record := &model.HistoryRecord{
		Task:     "Purchase compute credits from aws.amazon.com",
		Category: "cloud",
		Amount:   40,
		Decision: model.DecisionAllow,
	}
	require.NoError(t, db.AppendHistory(ctx, record))
	assert.NotZero(t, record.ID, "insert assigns the record ID")
	assert.False(t, record.Timestamp.IsZero(), "zero timestamp is filled in")

	records, err := db.GetHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.Task, records[0].Task)
	assert.Equal(t, record.Category, records[0].Category)
	assert.InDelta(t, 40.0, records[0].Amount, 0.001)
	assert.Equal(t, model.DecisionAllow, records[0].Decision)
}

func TestGetHistoryOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		record := &model.HistoryRecord{
			Task:      "task",
			Category:  "cloud",
			Amount:    float64(i + 1),
			Decision:  model.DecisionBlock,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.AppendHistory(ctx, record))
	}

	records, err := db.GetHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 5)
	// Newest first.
	assert.InDelta(t, 5.0, records[0].Amount, 0.001)
	assert.InDelta(t, 1.0, records[4].Amount, 0.001)

	limited, err := db.GetHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.InDelta(t, 5.0, limited[0].Amount, 0.001)
	assert.InDelta(t, 4.0, limited[1].Amount, 0.001)
}

func TestAppendHistoryValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	assert.Error(t, db.AppendHistory(ctx, nil))

	assert.Error(t, db.AppendHistory(ctx, &model.HistoryRecord{
		Task:     "task",
		Decision: model.DecisionAllow,
	}), "missing category should be rejected")

	assert.Error(t, db.AppendHistory(ctx, &model.HistoryRecord{
		Task:     "task",
		Category: "cloud",
		Decision: "MAYBE",
	}), "unknown decision should be rejected")
}
