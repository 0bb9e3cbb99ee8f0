package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spendgate/internal/engine"
)

func (s *Server) handleIntercept(w http.ResponseWriter, r *http.Request) {
	var req InterceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.UserTask == "" {
		writeBadRequest(w, "user_task is required")
		return
	}
	if req.ActiveAccountCategory == "" {
		writeBadRequest(w, "active_account_category is required")
		return
	}
	if req.TransactionAmount < 0 {
		writeBadRequest(w, "transaction_amount cannot be negative")
		return
	}

	verdict, err := s.engine.Evaluate(r.Context(), engine.Request{
		Task:     req.UserTask,
		Category: req.ActiveAccountCategory,
		Amount:   req.TransactionAmount,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	// A BLOCK is a successful evaluation, not a transport failure.
	writeJSON(w, http.StatusOK, fromVerdict(verdict))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.GetCategories(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, fromCategory(&categories[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cat, err := s.store.GetCategoryByName(r.Context(), name)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if cat == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "category not found"})
		return
	}
	writeJSON(w, http.StatusOK, fromCategory(cat))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.InitialLimit < 0 {
		writeBadRequest(w, "initial_limit cannot be negative")
		return
	}

	cat, err := s.store.CreateCategory(r.Context(), req.Name, req.InitialLimit, req.Domains)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromCategory(cat))
}

// handleUpdateCategory applies a partial update. The spending limit goes
// through the ledger so the remaining balance is rescaled under the
// category lock; a rename is applied last because it changes the key the
// other updates address.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Name == nil && req.InitialLimit == nil && req.Domains == nil {
		writeBadRequest(w, "no fields to update")
		return
	}
	if req.InitialLimit != nil && *req.InitialLimit < 0 {
		writeBadRequest(w, "initial_limit cannot be negative")
		return
	}
	if req.Name != nil && *req.Name == "" {
		writeBadRequest(w, "name cannot be empty")
		return
	}

	if req.InitialLimit != nil {
		if _, err := s.ledger.SetLimit(r.Context(), name, *req.InitialLimit); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	if req.Domains != nil {
		if err := s.store.ReplaceCategoryDomains(r.Context(), name, *req.Domains); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}

	finalName := name
	if req.Name != nil {
		if err := s.store.RenameCategory(r.Context(), name, *req.Name); err != nil {
			writeError(w, s.logger, err)
			return
		}
		finalName = *req.Name
	}

	cat, err := s.store.GetCategoryByName(r.Context(), finalName)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if cat == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "category not found"})
		return
	}
	writeJSON(w, http.StatusOK, fromCategory(cat))
}

func (s *Server) handleReplaceDomains(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ReplaceDomainsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.store.ReplaceCategoryDomains(r.Context(), name, req.Domains); err != nil {
		writeError(w, s.logger, err)
		return
	}

	cat, err := s.store.GetCategoryByName(r.Context(), name)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if cat == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "category not found"})
		return
	}
	writeJSON(w, http.StatusOK, fromCategory(cat))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.DeleteCategory(r.Context(), name); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	records, err := s.store.GetHistory(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, fromHistory(records))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
