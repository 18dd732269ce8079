package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"expensex/internal/core"
)

// CreateCategory inserts a new category, generating an ID when unset.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *core.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name, color, icon) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.Name, c.Color, c.Icon,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("create category %q: %w", c.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	return s.getCategory(ctx,
		"SELECT id, user_id, name, color, icon FROM categories WHERE id = ?", id)
}

// GetCategoryByName retrieves a user's category by its name, ignoring case.
func (s *SQLiteStore) GetCategoryByName(ctx context.Context, userID, name string) (*core.Category, error) {
	return s.getCategory(ctx,
		"SELECT id, user_id, name, color, icon FROM categories WHERE user_id = ? AND name = ? COLLATE NOCASE", userID, name)
}

func (s *SQLiteStore) getCategory(ctx context.Context, query string, args ...any) (*core.Category, error) {
	c := &core.Category{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories for a user, ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, color, icon FROM categories WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// CountCategories returns the number of categories a user has.
func (s *SQLiteStore) CountCategories(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE user_id = ?", userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// DeleteCategory removes a category by ID. Expenses must be reassigned first.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReassignExpenses moves every expense from one category to another.
func (s *SQLiteStore) ReassignExpenses(ctx context.Context, fromCategoryID, toCategoryID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET category_id = ? WHERE category_id = ?",
		toCategoryID, fromCategoryID,
	)
	if err != nil {
		return fmt.Errorf("reassign expenses: %w", err)
	}
	return nil
}
