package classify

import (
	"context"
	"fmt"

	"spendgate/internal/model"
	"spendgate/internal/service"
)

// WhitelistClassifier approves a purchase when the extracted domain is an
// exact member of the category's approved set. It is a pure function of its
// inputs: no I/O, no side effects, same answer every time.
type WhitelistClassifier struct{}

// NewWhitelistClassifier creates the whitelist strategy.
func NewWhitelistClassifier() *WhitelistClassifier {
	return &WhitelistClassifier{}
}

// Classify implements service.Classifier.
func (c *WhitelistClassifier) Classify(_ context.Context, category model.Category, _, domain string) service.ContextDecision {
	if category.IsDomainApproved(domain) {
		return service.ContextDecision{
			Valid:     true,
			Reasoning: fmt.Sprintf("Domain '%s' is approved for category '%s'.", domain, category.Name),
		}
	}
	return service.ContextDecision{
		Valid:     false,
		Reasoning: fmt.Sprintf("Domain '%s' is not approved for category '%s'.", domain, category.Name),
	}
}
