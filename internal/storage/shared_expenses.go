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

// CreateSharedExpense inserts a group expense and its splits in one
// transaction.
func (s *SQLiteStore) CreateSharedExpense(ctx context.Context, e *core.SharedExpense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO shared_expenses (id, group_id, description, amount, paid_by, date, settled, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.GroupID, e.Description, e.Amount, e.PaidBy, e.Date.String(), boolToInt(e.Settled), e.CreatedAt.Unix(), e.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert shared expense: %w", err)
	}

	for _, sp := range e.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO splits (shared_expense_id, user_id, amount, settled) VALUES (?, ?, ?, ?)",
			e.ID, sp.UserID, sp.Amount, boolToInt(sp.Settled),
		)
		if err != nil {
			return fmt.Errorf("insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetSharedExpense retrieves a shared expense with its splits.
func (s *SQLiteStore) GetSharedExpense(ctx context.Context, id string) (*core.SharedExpense, error) {
	e := &core.SharedExpense{}
	var date string
	var settled int
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, description, amount, paid_by, date, settled, created_at, updated_at FROM shared_expenses WHERE id = ?", id,
	).Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PaidBy, &date, &settled, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shared expense: %w", err)
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse shared expense date %q: %w", date, err)
	}
	e.Date = d
	e.Settled = settled != 0
	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)

	splits, err := s.expenseSplits(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Splits = splits
	return e, nil
}

func (s *SQLiteStore) expenseSplits(ctx context.Context, expenseID string) ([]core.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount, settled FROM splits WHERE shared_expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get splits: %w", err)
	}
	defer rows.Close()

	var splits []core.Split
	for rows.Next() {
		var sp core.Split
		var settled int
		if err := rows.Scan(&sp.UserID, &sp.Amount, &settled); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		sp.Settled = settled != 0
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate splits: %w", err)
	}
	return splits, nil
}

// ListSharedExpenses returns all shared expenses of a group, with splits
// loaded, newest date first.
func (s *SQLiteStore) ListSharedExpenses(ctx context.Context, groupID string) ([]core.SharedExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, description, amount, paid_by, date, settled, created_at, updated_at FROM shared_expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shared expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.SharedExpense
	for rows.Next() {
		var e core.SharedExpense
		var date string
		var settled int
		var createdAt, updatedAt int64
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PaidBy, &date, &settled, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan shared expense: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse shared expense date %q: %w", date, err)
		}
		e.Date = d
		e.Settled = settled != 0
		e.CreatedAt = time.Unix(createdAt, 0)
		e.UpdatedAt = time.Unix(updatedAt, 0)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shared expenses: %w", err)
	}

	for i := range expenses {
		splits, err := s.expenseSplits(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Splits = splits
	}
	return expenses, nil
}

// DeleteSharedExpense removes a shared expense and its splits.
func (s *SQLiteStore) DeleteSharedExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shared_expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete shared expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shared expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SettleSharedExpense marks an expense and all of its splits settled.
// Settling an already settled expense is a no-op.
func (s *SQLiteStore) SettleSharedExpense(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE shared_expenses SET settled = 1, updated_at = ? WHERE id = ?",
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("settle shared expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settle shared expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE splits SET settled = 1 WHERE shared_expense_id = ?", id)
	if err != nil {
		return fmt.Errorf("settle splits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
