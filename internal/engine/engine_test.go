package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendgate/internal/audit"
	"spendgate/internal/classify"
	"spendgate/internal/ledger"
	"spendgate/internal/model"
	"spendgate/internal/service"
	"spendgate/internal/storage"
)

func setupEngine(t *testing.T, classifier service.Classifier) (*PolicyEngine, *storage.SQLiteStorage) {
	t.Helper()

	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = db.Close()
	})

	logger := slog.Default()
	ldg := ledger.New(db)
	recorder := audit.NewRecorder(db, logger)
	return New(db, ldg, classifier, recorder, logger), db
}

func TestPolicyEngine_Evaluate(t *testing.T) {
	tests := []struct {
		name              string
		setupCategories   func(*testing.T, *storage.SQLiteStorage)
		classifier        service.Classifier
		request           Request
		wantDecision      model.Decision
		wantSummary       string
		wantContextValid  bool
		wantDomainApprove bool
		wantInitialLimit  float64
		wantRemaining     float64
	}{
		{
			name: "approved domain with sufficient budget is allowed and deducted",
			setupCategories: func(t *testing.T, db *storage.SQLiteStorage) {
				t.Helper()
				_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
				require.NoError(t, err)
			},
			classifier: classify.NewWhitelistClassifier(),
			request: Request{
				Task:     "Purchase compute credits from aws.amazon.com",
				Category: "cloud",
				Amount:   40,
			},
			wantDecision:      model.DecisionAllow,
			wantSummary:       "Transaction authorized. Domain and category are both approved.",
			wantContextValid:  true,
			wantDomainApprove: true,
			wantInitialLimit:  100,
			wantRemaining:     60,
		},
		{
			name: "cost above remaining budget is blocked",
			setupCategories: func(t *testing.T, db *storage.SQLiteStorage) {
				t.Helper()
				_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
				require.NoError(t, err)
				_, err = db.DeductBudget(context.Background(), "cloud", 40)
				require.NoError(t, err)
			},
			classifier: classify.NewWhitelistClassifier(),
			request: Request{
				Task:     "Purchase compute credits from aws.amazon.com",
				Category: "cloud",
				Amount:   70,
			},
			wantDecision:      model.DecisionBlock,
			wantSummary:       "Transaction blocked: Insufficient budget. Cost is 70.00 but only 60.00 remaining.",
			wantContextValid:  true,
			wantDomainApprove: true,
			wantInitialLimit:  100,
			wantRemaining:     60,
		},
		{
			name:            "unknown category is blocked with zeroed limits",
			setupCategories: func(_ *testing.T, _ *storage.SQLiteStorage) {},
			classifier:      classify.NewWhitelistClassifier(),
			request: Request{
				Task:     "Book a flight on united.com",
				Category: "travel",
				Amount:   200,
			},
			wantDecision:     model.DecisionBlock,
			wantSummary:      "Invalid category: travel",
			wantContextValid: false,
			wantInitialLimit: 0,
			wantRemaining:    0,
		},
		{
			name: "unapproved domain is blocked before any budget change",
			setupCategories: func(t *testing.T, db *storage.SQLiteStorage) {
				t.Helper()
				_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
				require.NoError(t, err)
			},
			classifier: classify.NewWhitelistClassifier(),
			request: Request{
				Task:     "Buy a subscription at evil.biz",
				Category: "cloud",
				Amount:   10,
			},
			wantDecision:      model.DecisionBlock,
			wantSummary:       "Domain evil.biz is unapproved for category cloud.",
			wantContextValid:  true,
			wantDomainApprove: false,
			wantInitialLimit:  100,
			wantRemaining:     100,
		},
		{
			name: "classifier failure blocks without touching the budget",
			setupCategories: func(t *testing.T, db *storage.SQLiteStorage) {
				t.Helper()
				_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
				require.NoError(t, err)
			},
			classifier: NewMockClassifier(service.ContextDecision{
				Valid:     false,
				Reasoning: "Relevance check failed for category 'cloud': request timed out",
			}),
			request: Request{
				Task:     "Purchase compute credits from aws.amazon.com",
				Category: "cloud",
				Amount:   40,
			},
			wantDecision:      model.DecisionBlock,
			wantSummary:       "Domain aws.amazon.com is unapproved for category cloud.",
			wantContextValid:  true,
			wantDomainApprove: false,
			wantInitialLimit:  100,
			wantRemaining:     100,
		},
		{
			name: "zero amount is allowed without mutating the balance",
			setupCategories: func(t *testing.T, db *storage.SQLiteStorage) {
				t.Helper()
				_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
				require.NoError(t, err)
			},
			classifier: classify.NewWhitelistClassifier(),
			request: Request{
				Task:     "Price check on aws.amazon.com",
				Category: "cloud",
				Amount:   0,
			},
			wantDecision:      model.DecisionAllow,
			wantSummary:       "Transaction authorized. Domain and category are both approved.",
			wantContextValid:  true,
			wantDomainApprove: true,
			wantInitialLimit:  100,
			wantRemaining:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, db := setupEngine(t, tt.classifier)
			tt.setupCategories(t, db)

			verdict, err := eng.Evaluate(context.Background(), tt.request)
			require.NoError(t, err)
			require.NotNil(t, verdict)

			assert.Equal(t, tt.wantDecision, verdict.Decision)
			assert.Equal(t, tt.wantSummary, verdict.SecuritySummary)
			assert.Equal(t, tt.wantContextValid, verdict.ContextVerification.IsContextValid)
			assert.Equal(t, tt.wantDomainApprove, verdict.WhitelistVerification.IsDomainApproved)
			assert.InDelta(t, tt.wantInitialLimit, verdict.LimitVerification.InitialLimit, 0.001)
			assert.InDelta(t, tt.wantRemaining, verdict.LimitVerification.RemainingBudget, 0.001)

			// Every evaluation leaves exactly one audit record.
			history, err := db.GetHistory(context.Background(), 0)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, tt.request.Task, history[0].Task)
			assert.Equal(t, tt.request.Category, history[0].Category)
			assert.InDelta(t, tt.request.Amount, history[0].Amount, 0.001)
			assert.Equal(t, tt.wantDecision, history[0].Decision)
		})
	}
}

func TestPolicyEngine_Evaluate_BlockedDomainLeavesBudgetIntact(t *testing.T) {
	eng, db := setupEngine(t, classify.NewWhitelistClassifier())
	_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
	require.NoError(t, err)

	verdict, err := eng.Evaluate(context.Background(), Request{
		Task:     "Buy a subscription at evil.biz",
		Category: "cloud",
		Amount:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DecisionBlock, verdict.Decision)

	cat, err := db.GetCategoryByName(context.Background(), "cloud")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.InDelta(t, 100.0, cat.RemainingBudget, 0.001)
}

func TestPolicyEngine_Evaluate_RejectsNegativeAmount(t *testing.T) {
	eng, _ := setupEngine(t, classify.NewWhitelistClassifier())

	verdict, err := eng.Evaluate(context.Background(), Request{
		Task:     "Purchase compute credits from aws.amazon.com",
		Category: "cloud",
		Amount:   -5,
	})
	require.Error(t, err)
	assert.Nil(t, verdict)
}

func TestPolicyEngine_Evaluate_AppliesFallbackDomain(t *testing.T) {
	eng, db := setupEngine(t, classify.NewWhitelistClassifier())
	_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
	require.NoError(t, err)

	verdict, err := eng.Evaluate(context.Background(), Request{
		Task:     "Buy something somewhere with no address",
		Category: "cloud",
		Amount:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DecisionBlock, verdict.Decision)
	assert.Equal(t, classify.FallbackDomain, verdict.ExtractedData.TargetDomain)
}

func TestPolicyEngine_Evaluate_SequentialDeductions(t *testing.T) {
	eng, db := setupEngine(t, classify.NewWhitelistClassifier())
	_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
	require.NoError(t, err)

	first, err := eng.Evaluate(context.Background(), Request{
		Task:     "Purchase compute credits from aws.amazon.com",
		Category: "cloud",
		Amount:   60,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DecisionAllow, first.Decision)
	assert.InDelta(t, 40.0, first.LimitVerification.RemainingBudget, 0.001)

	second, err := eng.Evaluate(context.Background(), Request{
		Task:     "Purchase compute credits from aws.amazon.com",
		Category: "cloud",
		Amount:   60,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DecisionBlock, second.Decision)
	assert.InDelta(t, 40.0, second.LimitVerification.RemainingBudget, 0.001)

	third, err := eng.Evaluate(context.Background(), Request{
		Task:     "Purchase compute credits from aws.amazon.com",
		Category: "cloud",
		Amount:   40,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DecisionAllow, third.Decision)
	assert.InDelta(t, 0.0, third.LimitVerification.RemainingBudget, 0.001)
}
