// Package classify decides whether a proposed purchase is compatible with
// its account category. Two interchangeable strategies exist: exact
// whitelist membership of the extracted merchant domain, and a semantic
// relevance judgment delegated to an external LLM.
package classify

import "regexp"

// FallbackDomain is substituted when no domain-like token appears in the
// task text. The pipeline always works with a target domain string, never
// an absent value.
const FallbackDomain = "https://www.google.com/search?q=unknown-domain.com"

// purchaseNatureLen is how much of the task text is surfaced as the
// purchase nature summary.
const purchaseNatureLen = 30

// domainPattern matches the first domain-like token in free text: dot
// separated labels with an alphabetic final label of length two or more.
var domainPattern = regexp.MustCompile(`(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}`)

// ExtractDomain scans the task text for the first domain-like substring.
// Absent a match it returns FallbackDomain rather than failing.
func ExtractDomain(task string) string {
	if match := domainPattern.FindString(task); match != "" {
		return match
	}
	return FallbackDomain
}

// PurchaseNature returns a short summary of the purchase: the leading
// portion of the task text.
func PurchaseNature(task string) string {
	runes := []rune(task)
	if len(runes) <= purchaseNatureLen {
		return task
	}
	return string(runes[:purchaseNatureLen])
}
