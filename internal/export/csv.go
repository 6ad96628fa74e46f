// Package export renders a user's expenses as flat CSV.
package export

import (
	"encoding/csv"
	"io"

	"tally/internal/core"
)

var csvHeader = []string{"Title", "Category", "Amount", "Date", "Status"}

// WriteCSV writes the expenses as CSV, header first. Uncategorized rows get
// "-" in the category column. Amounts are plain decimals without a currency
// symbol.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		category := e.CategoryName
		if category == "" {
			category = "-"
		}
		record := []string{
			e.Title,
			category,
			core.FormatCents(e.Amount.Cents),
			e.Date.ISO(),
			string(e.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
