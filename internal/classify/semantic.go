package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendgate/internal/llm"
	"spendgate/internal/model"
	"spendgate/internal/service"
)

// RelevanceJudge is the external collaborator the semantic strategy
// delegates to.
type RelevanceJudge interface {
	Relevant(ctx context.Context, category, task string) (llm.JudgmentResponse, error)
}

// SemanticClassifier approves a purchase when an external LLM judges the
// stated purpose relevant to the account category. Any collaborator failure
// (unreachable service, timeout) becomes a negative decision with the error
// text preserved for operator diagnosis; it never surfaces as an error to
// the evaluator.
type SemanticClassifier struct {
	judge   RelevanceJudge
	logger  *slog.Logger
	timeout time.Duration
}

// NewSemanticClassifier creates the semantic strategy. A zero timeout
// defaults to 30 seconds.
func NewSemanticClassifier(judge RelevanceJudge, timeout time.Duration, logger *slog.Logger) *SemanticClassifier {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticClassifier{
		judge:   judge,
		timeout: timeout,
		logger:  logger,
	}
}

// Classify implements service.Classifier.
func (c *SemanticClassifier) Classify(ctx context.Context, category model.Category, task, _ string) service.ContextDecision {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	judgment, err := c.judge.Relevant(ctx, category.Name, task)
	if err != nil {
		c.logger.Warn("relevance judgment failed, blocking",
			"category", category.Name,
			"error", err)
		return service.ContextDecision{
			Valid:     false,
			Reasoning: fmt.Sprintf("Relevance check failed for category '%s': %v", category.Name, err),
		}
	}

	reasoning := judgment.Reasoning
	if reasoning == "" {
		if judgment.Relevant {
			reasoning = fmt.Sprintf("Purchase judged relevant to category '%s'.", category.Name)
		} else {
			reasoning = fmt.Sprintf("Purchase judged not relevant to category '%s'.", category.Name)
		}
	}

	return service.ContextDecision{
		Valid:     judgment.Relevant,
		Reasoning: reasoning,
	}
}
