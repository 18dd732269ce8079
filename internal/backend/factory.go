// Package backend selects the export target for the worker.
package backend

import (
	"context"
	"fmt"

	"expensex/internal/config"
	"expensex/internal/sheets"
	gsheet "expensex/internal/sheets/google"
	"expensex/internal/sheets/memory"
)

// NewExpenseWriter builds the writer named by cfg.SheetsBackend. The memory
// writer keeps rows in process and exists for local runs without Google
// credentials.
func NewExpenseWriter(ctx context.Context, cfg *config.Config) (sheets.ExpenseWriter, error) {
	switch cfg.SheetsBackend {
	case "google":
		if cfg.GoogleSpreadsheetID == "" {
			return nil, fmt.Errorf("GOOGLE_SPREADSHEET_ID is required for the google sheets backend")
		}
		return gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported sheets backend: %s", cfg.SheetsBackend)
	}
}
