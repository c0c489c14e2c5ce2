// Package common provides the categorized CSV format shared by the processor,
// the mailer attachment and the summary command.
package common

import (
	"encoding/csv"
	"fmt"
	"io"

	"fjacquet/rabbit/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// CategorizedRow is one line of the output file.
// The column order is fixed: Description, Amount, Category.
type CategorizedRow struct {
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
}

// ToRows formats transactions for output, amounts with two decimals.
func ToRows(transactions []models.CategorizedTransaction) []*CategorizedRow {
	rows := make([]*CategorizedRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, &CategorizedRow{
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Category:    tx.Category,
		})
	}
	return rows
}

// WriteCategorizedCSV writes a header row and one row per transaction, UTF-8, comma separated.
func WriteCategorizedCSV(w io.Writer, transactions []models.CategorizedTransaction) error {
	if transactions == nil {
		transactions = []models.CategorizedTransaction{}
	}
	if err := gocsv.MarshalCSV(ToRows(transactions), gocsv.NewSafeCSVWriter(csv.NewWriter(w))); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// ReadCategorizedCSV parses a file written by WriteCategorizedCSV.
func ReadCategorizedCSV(r io.Reader) ([]models.CategorizedTransaction, error) {
	var rows []*CategorizedRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error parsing categorized CSV: %w", err)
	}

	transactions := make([]models.CategorizedTransaction, 0, len(rows))
	for i, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q: %w", i+1, row.Amount, err)
		}
		transactions = append(transactions, models.CategorizedTransaction{
			CleanedTransaction: models.CleanedTransaction{Index: i, Description: row.Description, Amount: amount},
			Category:           row.Category,
		})
	}
	return transactions, nil
}
