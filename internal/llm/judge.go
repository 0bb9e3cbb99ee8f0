package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendgate/internal/common"
	"spendgate/internal/service"
)

// Judge asks an LLM whether a proposed purchase is relevant to an account
// category. It layers caching, rate limiting, and retries over a raw Client.
// Errors are returned to the caller; the fail-closed policy lives in the
// classifier, not here.
type Judge struct {
	client      Client
	cache       *judgmentCache
	rateLimiter *rateLimiter
	logger      *slog.Logger
	retryOpts   service.RetryOptions
}

// NewJudge creates a new LLM-backed relevance judge.
func NewJudge(cfg Config, logger *slog.Logger) (*Judge, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Judge{
		client:      client,
		cache:       newJudgmentCache(cfg.CacheTTL),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger:      logger,
		retryOpts:   retryOpts,
	}, nil
}

// NewJudgeWithClient creates a judge over an existing client. Used in tests.
func NewJudgeWithClient(client Client, logger *slog.Logger) *Judge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{
		client:      client,
		cache:       newJudgmentCache(0),
		rateLimiter: newRateLimiter(0),
		logger:      logger,
		retryOpts:   service.RetryOptions{MaxAttempts: 1},
	}
}

// Relevant asks whether the task is a reasonable purchase for the category.
func (j *Judge) Relevant(ctx context.Context, category, task string) (JudgmentResponse, error) {
	cacheKey := category + "|" + task
	if cached, ok := j.cache.get(cacheKey); ok {
		j.logger.Debug("judgment cache hit", "category", category)
		return cached, nil
	}

	if err := j.rateLimiter.wait(ctx); err != nil {
		return JudgmentResponse{}, err
	}

	prompt := buildRelevancePrompt(category, task)

	var judgment JudgmentResponse
	err := common.WithRetry(ctx, func() error {
		var callErr error
		judgment, callErr = j.client.JudgeRelevance(ctx, prompt)
		return callErr
	}, j.retryOpts)
	if err != nil {
		return JudgmentResponse{}, fmt.Errorf("%w: %v", common.ErrClassificationFailed, err)
	}

	j.cache.set(cacheKey, judgment)

	j.logger.Debug("relevance judged",
		"category", category,
		"relevant", judgment.Relevant)
	return judgment, nil
}

// Close releases the judge's background resources.
func (j *Judge) Close() {
	j.cache.Close()
	j.rateLimiter.Close()
}

func buildRelevancePrompt(category, task string) string {
	return fmt.Sprintf(`An AI agent with a spending account in the category %q wants to perform this task:

%s

Is this purchase relevant to the account category?

Respond with JSON in exactly this format:
{"relevant": true or false, "reasoning": "one sentence explaining why"}`, category, task)
}
