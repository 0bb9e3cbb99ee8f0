package engine

import (
	"context"
	"sync"

	"spendgate/internal/model"
	"spendgate/internal/service"
)

// MockClassifier is a test implementation of the Classifier interface.
// It returns a scripted decision and records every call it receives.
type MockClassifier struct {
	decision service.ContextDecision
	calls    []MockClassifierCall
	mu       sync.Mutex
}

// MockClassifierCall records details of one classification request.
type MockClassifierCall struct {
	Category model.Category
	Task     string
	Domain   string
}

// NewMockClassifier creates a mock that returns the given decision.
func NewMockClassifier(decision service.ContextDecision) *MockClassifier {
	return &MockClassifier{
		decision: decision,
		calls:    make([]MockClassifierCall, 0),
	}
}

// Classify returns the scripted decision.
func (m *MockClassifier) Classify(_ context.Context, category model.Category, task, domain string) service.ContextDecision {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockClassifierCall{Category: category, Task: task, Domain: domain})
	return m.decision
}

// Calls returns a copy of the recorded calls.
func (m *MockClassifier) Calls() []MockClassifierCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockClassifierCall, len(m.calls))
	copy(out, m.calls)
	return out
}
