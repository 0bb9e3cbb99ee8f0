package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategoryName(t *testing.T) {
	assert.Equal(t, "cloud", NormalizeCategoryName("Cloud"))
	assert.Equal(t, "cloud", NormalizeCategoryName("  CLOUD  "))
	assert.Equal(t, "office supplies", NormalizeCategoryName("Office Supplies"))
	assert.Equal(t, "", NormalizeCategoryName("   "))
}

func TestIsDomainApproved(t *testing.T) {
	cat := Category{
		Name:    "cloud",
		Domains: []string{"aws.amazon.com", "cloud.google.com"},
	}

	assert.True(t, cat.IsDomainApproved("aws.amazon.com"))
	assert.False(t, cat.IsDomainApproved("evil.biz"))
	// Comparison is verbatim: no case folding, no suffix matching.
	assert.False(t, cat.IsDomainApproved("AWS.AMAZON.COM"))
	assert.False(t, cat.IsDomainApproved("fake.aws.amazon.com"))
	assert.False(t, cat.IsDomainApproved(""))
}

func TestCategorySpent(t *testing.T) {
	cat := Category{InitialLimit: 100, RemainingBudget: 60}
	assert.InDelta(t, 40.0, cat.Spent(), 0.001)
}

func TestCategoryValidate(t *testing.T) {
	valid := Category{Name: "cloud", InitialLimit: 100, RemainingBudget: 100}
	assert.NoError(t, valid.Validate())

	noName := Category{InitialLimit: 100}
	assert.Error(t, noName.Validate())

	negativeLimit := Category{Name: "cloud", InitialLimit: -1}
	assert.Error(t, negativeLimit.Validate())

	negativeRemaining := Category{Name: "cloud", InitialLimit: 100, RemainingBudget: -1}
	assert.Error(t, negativeRemaining.Validate())
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{ID: "abc", Task: "buy", Status: StatusPending, Amount: 10}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&Transaction{Task: "buy", Status: StatusPending}).Validate())
	assert.Error(t, (&Transaction{ID: "abc", Status: StatusPending}).Validate())
	assert.Error(t, (&Transaction{ID: "abc", Task: "buy", Status: "unknown"}).Validate())
	assert.Error(t, (&Transaction{ID: "abc", Task: "buy", Status: StatusPending, Amount: -1}).Validate())
}

func TestVerdictAllowed(t *testing.T) {
	allow := Verdict{Decision: DecisionAllow}
	assert.True(t, allow.Allowed())

	block := Verdict{Decision: DecisionBlock}
	assert.False(t, block.Allowed())
}
