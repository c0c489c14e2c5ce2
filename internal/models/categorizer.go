// Package models provides the data structures used throughout the application.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is a named spending bucket of a profile with an optional budget ceiling.
type Category struct {
	Name   string          `json:"name" yaml:"name"`
	Budget decimal.Decimal `json:"budget" yaml:"budget"`
}

// Rule maps a keyword found in a transaction description to a category name.
type Rule struct {
	Keyword  string `json:"keyword" yaml:"keyword"`
	Category string `json:"category" yaml:"category"`
}

// NormalizeKeyword returns the stored form of a rule keyword.
func NormalizeKeyword(keyword string) string {
	return strings.ToUpper(strings.TrimSpace(keyword))
}

// IsGap reports whether the rule is a placeholder waiting for a human decision.
func (r Rule) IsGap() bool {
	return r.Category == CategoryNeedsCategory
}

// CategoryNames returns the names of the given categories, in order.
func CategoryNames(categories []Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}
