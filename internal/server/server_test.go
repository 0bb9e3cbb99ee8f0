package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendgate/internal/audit"
	"spendgate/internal/classify"
	"spendgate/internal/engine"
	"spendgate/internal/ledger"
	"spendgate/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.SQLiteStorage) {
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
	eng := engine.New(db, ldg, classify.NewWhitelistClassifier(), recorder, logger)
	return New(DefaultConfig(), eng, db, ldg, logger), db
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Intercept(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()

	_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/intercept", InterceptRequest{
		UserTask:              "Purchase compute credits from aws.amazon.com",
		ActiveAccountCategory: "cloud",
		TransactionAmount:     40,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InterceptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ALLOW", resp.Decision)
	assert.Equal(t, "aws.amazon.com", resp.ExtractedData.TargetDomain)
	assert.True(t, resp.ContextVerification.IsContextValid)
	assert.True(t, resp.WhitelistVerification.IsDomainApproved)
	assert.InDelta(t, 100.0, resp.LimitVerification.InitialLimit, 0.001)
	assert.InDelta(t, 60.0, resp.LimitVerification.RemainingBudget, 0.001)
	assert.Equal(t, "Transaction authorized. Domain and category are both approved.", resp.SecuritySummary)
}

func TestServer_Intercept_BlockIsStillHTTP200(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/intercept", InterceptRequest{
		UserTask:              "Book a flight on united.com",
		ActiveAccountCategory: "travel",
		TransactionAmount:     200,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InterceptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "BLOCK", resp.Decision)
	assert.Equal(t, "Invalid category: travel", resp.SecuritySummary)
	assert.False(t, resp.ContextVerification.IsContextValid)
}

func TestServer_Intercept_Validation(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	tests := []struct {
		name string
		body InterceptRequest
	}{
		{name: "missing task", body: InterceptRequest{ActiveAccountCategory: "cloud", TransactionAmount: 10}},
		{name: "missing category", body: InterceptRequest{UserTask: "Buy from aws.amazon.com", TransactionAmount: 10}},
		{name: "negative amount", body: InterceptRequest{UserTask: "Buy from aws.amazon.com", ActiveAccountCategory: "cloud", TransactionAmount: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/intercept", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_Categories_CRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	// Create
	rec := doJSON(t, router, http.MethodPost, "/api/v1/categories", CreateCategoryRequest{
		Name:         "Cloud",
		InitialLimit: 100,
		Domains:      []string{"aws.amazon.com"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "cloud", created.Name)
	assert.InDelta(t, 100.0, created.RemainingBudget, 0.001)

	// Duplicate create conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/v1/categories", CreateCategoryRequest{
		Name:         "cloud",
		InitialLimit: 50,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// List
	rec = doJSON(t, router, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed, 1)

	// Get
	rec = doJSON(t, router, http.MethodGet, "/api/v1/categories/cloud", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Replace domains wholesale
	rec = doJSON(t, router, http.MethodPut, "/api/v1/categories/cloud", ReplaceDomainsRequest{
		Domains: []string{"cloud.google.com"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var replaced CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&replaced))
	assert.Equal(t, []string{"cloud.google.com"}, replaced.Domains)

	// Delete
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/categories/cloud", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/categories/cloud", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UpdateCategory_RescalesRemaining(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()

	_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
	require.NoError(t, err)
	_, err = db.DeductBudget(context.Background(), "cloud", 40)
	require.NoError(t, err)

	newLimit := 50.0
	rec := doJSON(t, router, http.MethodPatch, "/api/v1/categories/cloud", UpdateCategoryRequest{
		InitialLimit: &newLimit,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.InDelta(t, 50.0, updated.InitialLimit, 0.001)
	// 40 already spent, so the new cap leaves 10.
	assert.InDelta(t, 10.0, updated.RemainingBudget, 0.001)
}

func TestServer_UpdateCategory_Rename(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()

	_, err := db.CreateCategory(context.Background(), "cloud", 100, nil)
	require.NoError(t, err)

	newName := "infrastructure"
	rec := doJSON(t, router, http.MethodPatch, "/api/v1/categories/cloud", UpdateCategoryRequest{
		Name: &newName,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "infrastructure", updated.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/categories/cloud", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_History(t *testing.T) {
	srv, db := newTestServer(t)
	router := srv.Router()

	_, err := db.CreateCategory(context.Background(), "cloud", 100, []string{"aws.amazon.com"})
	require.NoError(t, err)

	for _, amount := range []float64{10, 20, 30} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/intercept", InterceptRequest{
			UserTask:              "Purchase compute credits from aws.amazon.com",
			ActiveAccountCategory: "cloud",
			TransactionAmount:     amount,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	require.Len(t, all, 3)
	// Newest first.
	assert.InDelta(t, 30.0, all[0].Amount, 0.001)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/history?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var limited []HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&limited))
	assert.Len(t, limited, 2)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/history?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
