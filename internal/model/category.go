// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category represents a spending account category with its budget and the
// set of merchant domains approved for it. Names are stored lowercase and
// looked up case-insensitively.
type Category struct {
	CreatedAt       time.Time
	Name            string
	Domains         []string
	ID              int64
	InitialLimit    float64
	RemainingBudget float64
}

// NormalizeCategoryName canonicalizes a category name for storage and lookup.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Spent returns the amount already deducted from the category's budget.
func (c *Category) Spent() float64 {
	return c.InitialLimit - c.RemainingBudget
}

// IsDomainApproved reports whether the given domain is in the category's
// approved set. Domains are compared verbatim.
func (c *Category) IsDomainApproved(domain string) bool {
	for _, d := range c.Domains {
		if d == domain {
			return true
		}
	}
	return false
}

// Validate checks category invariants before persistence.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if c.InitialLimit < 0 {
		return fmt.Errorf("category limit cannot be negative")
	}
	if c.RemainingBudget < 0 {
		return fmt.Errorf("category remaining budget cannot be negative")
	}
	return nil
}
