package model

// Decision is the terminal outcome of a policy evaluation.
type Decision string

// Decision constants.
const (
	DecisionAllow Decision = "ALLOW"
	DecisionBlock Decision = "BLOCK"
)

// ExtractedData holds what the interceptor pulled out of the agent's task
// text before any check ran.
type ExtractedData struct {
	TargetDomain   string
	PurchaseNature string
}

// ContextVerification reports whether the requested account category is
// recognized at all.
type ContextVerification struct {
	AccountCategory  string
	ContextReasoning string
	IsContextValid   bool
}

// WhitelistVerification reports whether the purchase context was approved,
// either by exact whitelist membership or by the semantic strategy.
type WhitelistVerification struct {
	WhitelistReasoning string
	IsDomainApproved   bool
}

// LimitVerification reports the category's budget state as observed during
// the evaluation. Both fields are zero when the category does not exist.
type LimitVerification struct {
	InitialLimit    float64
	RemainingBudget float64
}

// Verdict is the full result of one policy evaluation. It is produced fresh
// per request and never persisted as an entity; the audit trail keeps its
// own record of the decision.
type Verdict struct {
	Decision              Decision
	SecuritySummary       string
	ExtractedData         ExtractedData
	ContextVerification   ContextVerification
	WhitelistVerification WhitelistVerification
	LimitVerification     LimitVerification
}

// Allowed reports whether the verdict authorizes the purchase.
func (v *Verdict) Allowed() bool {
	return v.Decision == DecisionAllow
}
