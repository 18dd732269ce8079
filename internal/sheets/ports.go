// Package sheets defines the outbound port for exporting expenses to an
// external spreadsheet backup.
package sheets

import "context"

// ExpenseRow is the flattened form of an expense as it appears in the sheet.
type ExpenseRow struct {
	Date        string // YYYY-MM-DD
	Description string
	Category    string
	Amount      float64
	UserEmail   string
}

// ExpenseWriter appends expense rows to the backup sheet.
type ExpenseWriter interface {
	Append(ctx context.Context, row ExpenseRow) (rowRef string, err error)
}
