package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expensex/internal/core"
)

const expenseColumns = "id, user_id, category_id, description, amount, date, created_at, updated_at"

// CreateExpense inserts a new expense, generating an ID and timestamps when
// unset. New expenses start with a pending sync status.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *core.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (id, user_id, category_id, description, amount, date, sync_status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, 'pending', ?, ?)",
		e.ID, e.UserID, e.CategoryID, e.Description, e.Amount, e.Date.String(), e.CreatedAt.Unix(), e.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns all expenses for a user, newest date first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY date DESC, created_at DESC",
		userID)
}

// ListExpensesInRange returns a user's expenses with date between from and to
// inclusive, both in YYYY-MM-DD form.
func (s *SQLiteStore) ListExpensesInRange(ctx context.Context, userID, from, to string) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date DESC, created_at DESC",
		userID, from, to)
}

func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*core.Expense, error) {
	e := &core.Expense{}
	var date string
	var createdAt, updatedAt int64
	if err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Description, &e.Amount, &date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	e.Date = d
	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)
	return e, nil
}

// UpdateExpense rewrites the mutable fields of an expense. An updated expense
// goes back to pending so the export worker picks it up again.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, e *core.Expense) error {
	e.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET category_id = ?, description = ?, amount = ?, date = ?, sync_status = 'pending', updated_at = ? WHERE id = ?",
		e.CategoryID, e.Description, e.Amount, e.Date.String(), e.UpdatedAt.Unix(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MonthTotal returns the sum of a user's expenses in the given month.
func (s *SQLiteStore) MonthTotal(ctx context.Context, userID string, year, month int) (float64, error) {
	prefix := fmt.Sprintf("%04d-%02d", year, month)
	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ? AND date LIKE ? || '%'",
		userID, prefix,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("month total: %w", err)
	}
	return total, nil
}

// CategoryTotals sums a user's expenses per category over the inclusive date
// range, largest total first.
func (s *SQLiteStore) CategoryTotals(ctx context.Context, userID, from, to string) ([]core.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(SUM(e.amount), 0) AS total
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date <= ?
		GROUP BY c.id, c.name
		ORDER BY total DESC`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var t core.CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.Name, &t.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}

// ExpenseMonths returns the distinct YYYY-MM months in which a user has
// expenses, newest first.
func (s *SQLiteStore) ExpenseMonths(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT substr(date, 1, 7) AS month FROM expenses WHERE user_id = ? ORDER BY month DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("expense months: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan expense month: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense months: %w", err)
	}
	return months, nil
}

// GetPendingSyncExpenses returns up to limit expenses waiting to be exported,
// oldest first.
func (s *SQLiteStore) GetPendingSyncExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE sync_status = 'pending' ORDER BY created_at ASC LIMIT ?",
		limit)
}

// MarkSynced records that an expense was exported successfully.
func (s *SQLiteStore) MarkSynced(ctx context.Context, id string) error {
	return s.setSyncStatus(ctx, id, "synced")
}

// MarkSyncError records that exporting an expense failed.
func (s *SQLiteStore) MarkSyncError(ctx context.Context, id string) error {
	return s.setSyncStatus(ctx, id, "error")
}

func (s *SQLiteStore) setSyncStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET sync_status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("set sync status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set sync status rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
