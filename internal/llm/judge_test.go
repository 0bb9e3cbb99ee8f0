package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendgate/internal/common"
)

type mockClient struct {
	judgment JudgmentResponse
	err      error
	calls    int
	mu       sync.Mutex
}

func (m *mockClient) JudgeRelevance(_ context.Context, _ string) (JudgmentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.judgment, m.err
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestJudgeRelevant(t *testing.T) {
	client := &mockClient{
		judgment: JudgmentResponse{Relevant: true, Reasoning: "Matches the category."},
	}
	judge := NewJudgeWithClient(client, nil)
	defer judge.Close()

	got, err := judge.Relevant(context.Background(), "cloud", "buy compute credits")
	require.NoError(t, err)
	assert.True(t, got.Relevant)
	assert.Equal(t, "Matches the category.", got.Reasoning)
	assert.Equal(t, 1, client.callCount())
}

func TestJudgeRelevantCachesByCategoryAndTask(t *testing.T) {
	client := &mockClient{
		judgment: JudgmentResponse{Relevant: true},
	}
	judge := NewJudgeWithClient(client, nil)
	defer judge.Close()

	ctx := context.Background()
	_, err := judge.Relevant(ctx, "cloud", "buy compute credits")
	require.NoError(t, err)
	_, err = judge.Relevant(ctx, "cloud", "buy compute credits")
	require.NoError(t, err)
	assert.Equal(t, 1, client.callCount(), "identical request should be served from cache")

	// A different task misses the cache.
	_, err = judge.Relevant(ctx, "cloud", "buy sneakers")
	require.NoError(t, err)
	assert.Equal(t, 2, client.callCount())

	// Same task, different category also misses.
	_, err = judge.Relevant(ctx, "office", "buy compute credits")
	require.NoError(t, err)
	assert.Equal(t, 3, client.callCount())
}

func TestJudgeRelevantWrapsClientErrors(t *testing.T) {
	client := &mockClient{err: errors.New("connection refused")}
	judge := NewJudgeWithClient(client, nil)
	defer judge.Close()

	_, err := judge.Relevant(context.Background(), "cloud", "buy compute credits")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrClassificationFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBuildRelevancePrompt(t *testing.T) {
	prompt := buildRelevancePrompt("cloud", "buy compute credits")
	assert.Contains(t, prompt, `"cloud"`)
	assert.Contains(t, prompt, "buy compute credits")
	assert.Contains(t, prompt, `{"relevant": true or false`)
}
