// Package report summarizes a categorized statement against the profile budgets.
package report

import (
	"fjacquet/rabbit/internal/models"

	"github.com/shopspring/decimal"
)

// Line is the spend of one category.
type Line struct {
	Category string          `json:"category" yaml:"category"`
	Count    int             `json:"count" yaml:"count"`
	Spent    decimal.Decimal `json:"spent" yaml:"spent"`
	// Budget is zero when the category has no ceiling.
	Budget     decimal.Decimal `json:"budget" yaml:"budget"`
	Remaining  decimal.Decimal `json:"remaining" yaml:"remaining"`
	OverBudget bool            `json:"over_budget" yaml:"over_budget"`
}

// HasBudget reports whether the category has a ceiling.
func (l Line) HasBudget() bool {
	return l.Budget.IsPositive()
}

// Summary is the spend per category of one run.
type Summary struct {
	Profile       string          `json:"profile" yaml:"profile"`
	Lines         []Line          `json:"lines" yaml:"lines"`
	Transactions  int             `json:"transactions" yaml:"transactions"`
	Total         decimal.Decimal `json:"total" yaml:"total"`
	Uncategorized int             `json:"uncategorized" yaml:"uncategorized"`
}

// Summarize adds up spend per category. Profile categories come first, in their
// order and even when nothing was spent; other categories follow as first seen.
func Summarize(profile string, categories []models.Category, transactions []models.CategorizedTransaction) Summary {
	s := Summary{Profile: profile, Total: decimal.Zero, Transactions: len(transactions)}
	index := make(map[string]int, len(categories))

	for _, c := range categories {
		index[c.Name] = len(s.Lines)
		s.Lines = append(s.Lines, Line{Category: c.Name, Spent: decimal.Zero, Budget: c.Budget})
	}

	for _, tx := range transactions {
		i, ok := index[tx.Category]
		if !ok {
			i = len(s.Lines)
			index[tx.Category] = i
			s.Lines = append(s.Lines, Line{Category: tx.Category, Spent: decimal.Zero, Budget: decimal.Zero})
		}
		s.Lines[i].Count++
		s.Lines[i].Spent = s.Lines[i].Spent.Add(tx.Amount)
		s.Total = s.Total.Add(tx.Amount)
		if !tx.IsCategorized() {
			s.Uncategorized++
		}
	}

	for i := range s.Lines {
		line := &s.Lines[i]
		if line.HasBudget() {
			line.Remaining = line.Budget.Sub(line.Spent)
			line.OverBudget = line.Remaining.IsNegative()
		} else {
			line.Remaining = decimal.Zero
		}
	}
	return s
}
