package server

import (
	"time"

	"spendgate/internal/model"
)

// InterceptRequest is the wire form of one proposed agent purchase.
type InterceptRequest struct {
	UserTask              string  `json:"user_task"`
	ActiveAccountCategory string  `json:"active_account_category"`
	TransactionAmount     float64 `json:"transaction_amount"`
}

// InterceptResponse is the wire form of a policy verdict.
type InterceptResponse struct {
	Decision              string                   `json:"decision"`
	ExtractedData         ExtractedDataDTO         `json:"extracted_data"`
	ContextVerification   ContextVerificationDTO   `json:"context_verification"`
	WhitelistVerification WhitelistVerificationDTO `json:"whitelist_verification"`
	LimitVerification     LimitVerificationDTO     `json:"limit_verification"`
	SecuritySummary       string                   `json:"security_summary"`
}

// ExtractedDataDTO carries what was parsed out of the task description.
type ExtractedDataDTO struct {
	TargetDomain   string `json:"target_domain"`
	PurchaseNature string `json:"purchase_nature"`
}

// ContextVerificationDTO reports the category stage of the evaluation.
type ContextVerificationDTO struct {
	AccountCategory  string `json:"account_category"`
	IsContextValid   bool   `json:"is_context_valid"`
	ContextReasoning string `json:"context_reasoning"`
}

// WhitelistVerificationDTO reports the domain stage of the evaluation.
type WhitelistVerificationDTO struct {
	IsDomainApproved   bool   `json:"is_domain_approved"`
	WhitelistReasoning string `json:"whitelist_reasoning"`
}

// LimitVerificationDTO reports the budget stage of the evaluation.
type LimitVerificationDTO struct {
	InitialLimit    float64 `json:"initial_limit"`
	RemainingBudget float64 `json:"remaining_budget"`
}

func fromVerdict(v *model.Verdict) InterceptResponse {
	return InterceptResponse{
		Decision: string(v.Decision),
		ExtractedData: ExtractedDataDTO{
			TargetDomain:   v.ExtractedData.TargetDomain,
			PurchaseNature: v.ExtractedData.PurchaseNature,
		},
		ContextVerification: ContextVerificationDTO{
			AccountCategory:  v.ContextVerification.AccountCategory,
			IsContextValid:   v.ContextVerification.IsContextValid,
			ContextReasoning: v.ContextVerification.ContextReasoning,
		},
		WhitelistVerification: WhitelistVerificationDTO{
			IsDomainApproved:   v.WhitelistVerification.IsDomainApproved,
			WhitelistReasoning: v.WhitelistVerification.WhitelistReasoning,
		},
		LimitVerification: LimitVerificationDTO{
			InitialLimit:    v.LimitVerification.InitialLimit,
			RemainingBudget: v.LimitVerification.RemainingBudget,
		},
		SecuritySummary: v.SecuritySummary,
	}
}

// CategoryResponse is the wire form of a spending category.
type CategoryResponse struct {
	Name            string   `json:"name"`
	InitialLimit    float64  `json:"initial_limit"`
	RemainingBudget float64  `json:"remaining_budget"`
	Domains         []string `json:"domains"`
}

func fromCategory(c *model.Category) CategoryResponse {
	domains := c.Domains
	if domains == nil {
		domains = []string{}
	}
	return CategoryResponse{
		Name:            c.Name,
		InitialLimit:    c.InitialLimit,
		RemainingBudget: c.RemainingBudget,
		Domains:         domains,
	}
}

// CreateCategoryRequest creates a new category with its full policy.
type CreateCategoryRequest struct {
	Name         string   `json:"name"`
	InitialLimit float64  `json:"initial_limit"`
	Domains      []string `json:"domains"`
}

// UpdateCategoryRequest is a partial update; nil fields are left alone.
type UpdateCategoryRequest struct {
	Name         *string   `json:"name,omitempty"`
	InitialLimit *float64  `json:"initial_limit,omitempty"`
	Domains      *[]string `json:"domains,omitempty"`
}

// ReplaceDomainsRequest replaces a category's domain whitelist wholesale.
type ReplaceDomainsRequest struct {
	Domains []string `json:"domains"`
}

// HistoryResponse is the wire form of one audit record.
type HistoryResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Task      string    `json:"task"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Decision  string    `json:"decision"`
}

func fromHistory(records []model.HistoryRecord) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, HistoryResponse{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Task:      r.Task,
			Category:  r.Category,
			Amount:    r.Amount,
			Decision:  string(r.Decision),
		})
	}
	return out
}
