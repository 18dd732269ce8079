// Package worker exports saved expenses to the external sheet backup.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"expensex/internal/amqp"
	"expensex/internal/sheets"
	"expensex/internal/storage"
)

// ExportWorker pushes expenses from the database to the sheet backup. It is
// driven by AMQP messages, with a periodic pending scan as a safety net for
// lost messages.
type ExportWorker struct {
	store     storage.Store
	writer    sheets.ExpenseWriter
	batchSize int
}

func NewExportWorker(store storage.Store, writer sheets.ExpenseWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage exports the expense named by one AMQP message.
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "expense_id", msg.ExpenseID)
	return w.exportExpense(ctx, msg.ExpenseID)
}

// ProcessPendingExpenses exports a batch of expenses still marked pending.
// Per-expense failures are logged and marked, they do not stop the batch.
func (w *ExportWorker) ProcessPendingExpenses(ctx context.Context) error {
	_, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck drains a larger pending backlog once at worker start, to
// recover from downtime while the API kept accepting expenses.
func (w *ExportWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *ExportWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.GetPendingSyncExpenses(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	synced := 0
	for _, e := range pending {
		if err := w.exportExpense(ctx, e.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending expense",
				"expense_id", e.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// exportExpense flattens one expense into a sheet row, appends it and records
// the outcome in the sync status.
func (w *ExportWorker) exportExpense(ctx context.Context, expenseID string) error {
	e, err := w.store.GetExpense(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("get expense %s: %w", expenseID, err)
	}

	row := sheets.ExpenseRow{
		Date:        e.Date.String(),
		Description: e.Description,
		Amount:      e.Amount,
	}
	if c, err := w.store.GetCategory(ctx, e.CategoryID); err == nil {
		row.Category = c.Name
	} else {
		slog.WarnContext(ctx, "Category lookup failed, exporting without name",
			"expense_id", expenseID, "category_id", e.CategoryID, "error", err)
	}
	if u, err := w.store.GetUser(ctx, e.UserID); err == nil {
		row.UserEmail = u.Email
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, expenseID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"expense_id", expenseID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkSynced(ctx, expenseID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Expense exported", "expense_id", expenseID, "row_ref", ref)
	return nil
}
