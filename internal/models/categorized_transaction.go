package models

import "github.com/shopspring/decimal"

// RawTransaction is one statement row keyed by its header name.
// A missing key means the cell was absent from the row.
type RawTransaction map[string]string

// Get returns the cell for column and whether it was present.
func (r RawTransaction) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// CleanedTransaction is a statement row reduced to a denoised description
// and a non-negative outflow amount.
type CleanedTransaction struct {
	// Index is a dense 0-based ordinal, only used for progress reporting.
	Index       int
	Description string
	Amount      decimal.Decimal
}

// CategorizedTransaction is a cleaned row with its assigned category.
type CategorizedTransaction struct {
	CleanedTransaction
	Category string
}

// IsCategorized returns true if the transaction has been categorized (not "Uncategorized")
func (ct CategorizedTransaction) IsCategorized() bool {
	return ct.Category != "" && ct.Category != CategoryUncategorized
}
