// Package engine implements the policy decision engine that authorizes
// agent purchases against per-category spending policy.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spendgate/internal/audit"
	"spendgate/internal/classify"
	"spendgate/internal/ledger"
	"spendgate/internal/model"
	"spendgate/internal/service"
)

// Request is one proposed agent purchase.
type Request struct {
	Task     string
	Category string
	Amount   float64
}

// PolicyEngine orchestrates the decision: category existence, context
// classification, budget sufficiency, in that order. Each failing check
// short-circuits to BLOCK without evaluating later stages; budget is only
// ever at risk in the last stage, after identity and intent are both
// confirmed. Every evaluation appends exactly one audit record.
type PolicyEngine struct {
	store      service.Storage
	ledger     *ledger.Ledger
	classifier service.Classifier
	audit      *audit.Recorder
	logger     *slog.Logger
}

// New creates a policy engine with its dependencies.
func New(store service.Storage, ldg *ledger.Ledger, classifier service.Classifier, recorder *audit.Recorder, logger *slog.Logger) *PolicyEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyEngine{
		store:      store,
		ledger:     ldg,
		classifier: classifier,
		audit:      recorder,
		logger:     logger,
	}
}

// Evaluate renders the ALLOW/BLOCK verdict for one request. Policy outcomes
// are always a verdict, never an error; an error here means the evaluation
// itself could not run (storage failure, malformed input).
func (e *PolicyEngine) Evaluate(ctx context.Context, req Request) (*model.Verdict, error) {
	if req.Amount < 0 {
		return nil, fmt.Errorf("transaction amount cannot be negative")
	}

	extractedDomain := classify.ExtractDomain(req.Task)

	verdict := &model.Verdict{
		ExtractedData: model.ExtractedData{
			TargetDomain:   extractedDomain,
			PurchaseNature: classify.PurchaseNature(req.Task),
		},
		ContextVerification: model.ContextVerification{
			AccountCategory:  req.Category,
			IsContextValid:   false,
			ContextReasoning: "Validating category...",
		},
		WhitelistVerification: model.WhitelistVerification{
			IsDomainApproved:   false,
			WhitelistReasoning: "Validating domain...",
		},
	}

	txn := &model.Transaction{
		ID:       uuid.NewString(),
		Task:     req.Task,
		Category: req.Category,
		Amount:   req.Amount,
		Status:   model.StatusPending,
	}
	if err := e.store.SaveTransaction(ctx, txn); err != nil {
		e.logger.Error("failed to record pending transaction", "error", err)
	}

	// CATEGORY_CHECK
	cat, err := e.store.GetCategoryByName(ctx, req.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if cat == nil {
		verdict.Decision = model.DecisionBlock
		verdict.ContextVerification.ContextReasoning = fmt.Sprintf("Category '%s' not found in database.", req.Category)
		verdict.SecuritySummary = fmt.Sprintf("Invalid category: %s", req.Category)
		e.finalize(ctx, req, txn, verdict)
		return verdict, nil
	}

	verdict.ContextVerification.IsContextValid = true
	verdict.ContextVerification.ContextReasoning = fmt.Sprintf("Category '%s' is recognized.", req.Category)
	verdict.LimitVerification = model.LimitVerification{
		InitialLimit:    cat.InitialLimit,
		RemainingBudget: cat.RemainingBudget,
	}

	// CONTEXT_CHECK runs outside the category lock: the semantic strategy
	// may block on an external call, and that latency must not serialize
	// unrelated requests against the same category.
	decision := e.classifier.Classify(ctx, *cat, req.Task, extractedDomain)
	verdict.WhitelistVerification = model.WhitelistVerification{
		IsDomainApproved:   decision.Valid,
		WhitelistReasoning: decision.Reasoning,
	}
	if !decision.Valid {
		verdict.Decision = model.DecisionBlock
		verdict.SecuritySummary = fmt.Sprintf("Domain %s is unapproved for category %s.", extractedDomain, req.Category)
		e.finalize(ctx, req, txn, verdict)
		return verdict, nil
	}

	// BUDGET_CHECK and deduction are one critical section per category so
	// two concurrent requests cannot both observe a sufficient balance.
	err = e.ledger.WithCategoryLock(cat.Name, func() error {
		ok, remaining, suffErr := e.ledger.Sufficient(ctx, cat.Name, req.Amount)
		if suffErr != nil {
			return suffErr
		}
		verdict.LimitVerification.RemainingBudget = remaining

		if !ok {
			verdict.Decision = model.DecisionBlock
			verdict.SecuritySummary = fmt.Sprintf(
				"Transaction blocked: Insufficient budget. Cost is %.2f but only %.2f remaining.",
				req.Amount, remaining)
			return nil
		}

		if req.Amount > 0 {
			balance, deductErr := e.ledger.Deduct(ctx, cat.Name, req.Amount)
			if deductErr != nil {
				return deductErr
			}
			verdict.LimitVerification.RemainingBudget = balance
		}

		verdict.Decision = model.DecisionAllow
		verdict.SecuritySummary = "Transaction authorized. Domain and category are both approved."
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate budget: %w", err)
	}

	e.finalize(ctx, req, txn, verdict)
	return verdict, nil
}

// finalize appends the audit record and settles the transaction record.
// This runs for every terminal verdict; an audit failure is logged but the
// verdict stands, since the decision has already been taken.
func (e *PolicyEngine) finalize(ctx context.Context, req Request, txn *model.Transaction, verdict *model.Verdict) {
	record := &model.HistoryRecord{
		Task:     req.Task,
		Category: req.Category,
		Amount:   req.Amount,
		Decision: verdict.Decision,
	}
	if err := e.audit.Record(ctx, record); err != nil {
		e.logger.Error("failed to append audit record",
			"category", req.Category,
			"decision", verdict.Decision,
			"error", err)
	}

	status := model.StatusRejected
	if verdict.Allowed() {
		status = model.StatusApproved
	}
	if err := e.store.UpdateTransactionStatus(ctx, txn.ID, status, time.Now().UTC()); err != nil {
		e.logger.Error("failed to settle transaction record",
			"transaction_id", txn.ID,
			"status", status,
			"error", err)
	}

	e.logger.Info("transaction evaluated",
		"category", req.Category,
		"amount", req.Amount,
		"decision", verdict.Decision,
		"domain", verdict.ExtractedData.TargetDomain)
}
