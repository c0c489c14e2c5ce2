// Package cleaner turns a raw bank-statement export into the ordered sequence of
// outflow rows the categorizer works on.
package cleaner

import (
	"regexp"
	"strings"

	"fjacquet/rabbit/internal/models"
	"fjacquet/rabbit/internal/processerror"

	"github.com/shopspring/decimal"
)

var (
	// masked card or account numbers, with the asterisk some banks put in front
	maskedNumberPattern = regexp.MustCompile(`\*?X{4,}`)
	nullTokenPattern    = regexp.MustCompile(`(?i)null`)
	digitPattern        = regexp.MustCompile(`\p{Nd}+`)
	whitespacePattern   = regexp.MustCompile(`[\s\p{Z}\v]+`)
)

const nbsp = "\u00a0"

// Options selects the statement columns and how outflows are signed.
type Options struct {
	DescriptionColumn string
	AmountColumn      string
	SignConvention    models.SignConvention
}

// DefaultOptions returns the column layout of the reference bank export.
func DefaultOptions() Options {
	return Options{
		DescriptionColumn: models.DefaultDescriptionColumn,
		AmountColumn:      models.DefaultAmountColumn,
		SignConvention:    models.SignAuto,
	}
}

// CleanDescription denoises a transaction description.
// It is idempotent: CleanDescription(CleanDescription(s)) == CleanDescription(s).
func CleanDescription(desc string) string {
	for {
		next := cleanOnce(desc)
		if next == desc {
			return next
		}
		desc = next
	}
}

func cleanOnce(desc string) string {
	desc = maskedNumberPattern.ReplaceAllString(desc, "")
	desc = nullTokenPattern.ReplaceAllString(desc, "")
	desc = digitPattern.ReplaceAllString(desc, "")
	desc = whitespacePattern.ReplaceAllString(desc, " ")
	desc = strings.TrimSpace(desc)
	return strings.ReplaceAll(desc, nbsp, " ")
}

// ValidateSchema checks that both configured columns are present in the statement header.
func ValidateSchema(stmt *Statement, opts Options) error {
	var missing []string
	for _, column := range []string{opts.DescriptionColumn, opts.AmountColumn} {
		if !stmt.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return &processerror.SchemaError{
			FilePath: stmt.Source,
			Missing:  missing,
			Header:   stmt.Header,
		}
	}
	return nil
}

type parsedRow struct {
	description string
	amount      decimal.Decimal
}

// Clean keeps the genuine outflows of a statement, in their original order.
//
// Rows whose amount does not parse are dropped. Under SignAuto, the presence of any
// negative amount means negatives are expenses: only those are kept, as absolute values.
// Otherwise every numeric row is kept as-is. Amounts in the result are never negative.
func Clean(stmt *Statement, opts Options) ([]models.CleanedTransaction, error) {
	if err := ValidateSchema(stmt, opts); err != nil {
		return nil, err
	}

	parsed := make([]parsedRow, 0, len(stmt.Rows))
	anyNegative := false
	for _, row := range stmt.Rows {
		raw, ok := row.Get(opts.AmountColumn)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		if amount.IsNegative() {
			anyNegative = true
		}
		desc, _ := row.Get(opts.DescriptionColumn)
		parsed = append(parsed, parsedRow{description: desc, amount: amount})
	}

	negativeOnly := anyNegative
	switch opts.SignConvention {
	case models.SignNegative:
		negativeOnly = true
	case models.SignPositive:
		negativeOnly = false
	}

	cleaned := make([]models.CleanedTransaction, 0, len(parsed))
	for _, p := range parsed {
		amount := p.amount
		switch {
		case negativeOnly && !amount.IsNegative():
			continue
		case negativeOnly:
			amount = amount.Abs()
		case amount.IsNegative():
			// credits in a positive-debit statement
			continue
		}
		cleaned = append(cleaned, models.CleanedTransaction{
			Index:       len(cleaned),
			Description: CleanDescription(p.description),
			Amount:      amount,
		})
	}
	return cleaned, nil
}
