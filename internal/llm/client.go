package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	JudgeRelevance(ctx context.Context, prompt string) (JudgmentResponse, error)
}

// JudgmentResponse contains the LLM's yes/no relevance judgment.
type JudgmentResponse struct {
	Reasoning string
	Relevant  bool
}

// Config holds configuration for the LLM judge.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}
