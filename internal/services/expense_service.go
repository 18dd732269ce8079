package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"expensex/internal/amqp"
	"expensex/internal/core"
	"expensex/internal/storage"
)

// ErrLastCategory is returned when deleting a user's only category.
var ErrLastCategory = errors.New("cannot delete the last category")

// ErrCategoryExists is returned when a category name is already taken,
// ignoring case.
var ErrCategoryExists = errors.New("category already exists")

// Granularity selects the bucket size for period totals.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

// ExpenseService manages personal expenses, their categories and spending
// summaries. Mutations publish a sync message so the export worker backs the
// expense up to the external sheet; a broker outage only degrades the backup.
type ExpenseService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewExpenseService(store storage.Store, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{store: store, amqpClient: amqpClient}
}

// AddExpense validates and saves a new expense, then queues it for export.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, e.UserID, e.CategoryID); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, &e); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	s.publishSync(ctx, e.ID, e.UserID)
	return &e, nil
}

// GetExpense returns a single expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, id string) (*core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ListExpenses returns all of a user's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

// UpdateExpense rewrites an existing expense and re-queues it for export.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, e.UserID, e.CategoryID); err != nil {
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, &e); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}

	s.publishSync(ctx, e.ID, e.UserID)
	return &e, nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	return s.store.DeleteExpense(ctx, id)
}

// checkCategory verifies the category exists and belongs to the user.
func (s *ExpenseService) checkCategory(ctx context.Context, userID, categoryID string) error {
	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("category %s: %w", categoryID, err)
	}
	if c.UserID != userID {
		return fmt.Errorf("category %s: %w", categoryID, storage.ErrNotFound)
	}
	return nil
}

func (s *ExpenseService) publishSync(ctx context.Context, expenseID, userID string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	if err := s.amqpClient.PublishExpenseSync(ctx, expenseID, userID); err != nil {
		// backup export is best effort, the expense is already saved
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"expense_id", expenseID, "error", err)
	}
}

// ListCategories returns a user's categories, seeding the defaults when the
// user has none yet.
func (s *ExpenseService) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}

	if err := seedDefaultCategories(ctx, s.store, userID); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return s.store.ListCategories(ctx, userID)
}

// AddCategory creates a category. Names are unique per user, ignoring case.
func (s *ExpenseService) AddCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch _, err := s.store.GetCategoryByName(ctx, c.UserID, c.Name); {
	case err == nil:
		return nil, fmt.Errorf("category %q: %w", c.Name, ErrCategoryExists)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// DeleteCategory removes a category, moving its expenses to the user's
// "Other" category (or the first remaining one). The last category cannot be
// deleted.
func (s *ExpenseService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	count, err := s.store.CountCategories(ctx, userID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastCategory
	}

	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return err
	}

	var target *core.Category
	var fallback *core.Category
	for i := range categories {
		c := &categories[i]
		if c.ID == categoryID {
			target = c
			continue
		}
		if fallback == nil || c.Name == "Other" {
			fallback = c
		}
	}
	if target == nil {
		return fmt.Errorf("category %s: %w", categoryID, storage.ErrNotFound)
	}

	if err := s.store.ReassignExpenses(ctx, categoryID, fallback.ID); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted",
		"category", target.Name,
		"expenses_moved_to", fallback.Name)
	return nil
}

// MonthOverview summarizes a user's spending in one month.
func (s *ExpenseService) MonthOverview(ctx context.Context, userID string, year, month int) (core.MonthOverview, error) {
	overview := core.MonthOverview{Year: year, Month: month}
	if month < 1 || month > 12 {
		return overview, fmt.Errorf("invalid month: %d", month)
	}

	total, err := s.store.MonthTotal(ctx, userID, year, month)
	if err != nil {
		return overview, err
	}
	overview.Total = total

	from := fmt.Sprintf("%04d-%02d-01", year, month)
	to := fmt.Sprintf("%04d-%02d-31", year, month)
	byCategory, err := s.store.CategoryTotals(ctx, userID, from, to)
	if err != nil {
		return overview, err
	}
	overview.ByCategory = byCategory
	return overview, nil
}

// CategoryTotals sums spending per category over an inclusive date range.
func (s *ExpenseService) CategoryTotals(ctx context.Context, userID, from, to string) ([]core.CategoryTotal, error) {
	return s.store.CategoryTotals(ctx, userID, from, to)
}

// ExpenseMonths lists the months a user has expenses in, newest first.
func (s *ExpenseService) ExpenseMonths(ctx context.Context, userID string) ([]string, error) {
	return s.store.ExpenseMonths(ctx, userID)
}

// PeriodTotals buckets a user's spending in the range by day, month or year,
// in ascending period order.
func (s *ExpenseService) PeriodTotals(ctx context.Context, userID, from, to string, granularity Granularity) ([]core.PeriodTotal, error) {
	expenses, err := s.store.ListExpensesInRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]float64)
	for _, e := range expenses {
		key, err := periodKey(e.Date, granularity)
		if err != nil {
			return nil, err
		}
		buckets[key] += e.Amount
	}

	totals := make([]core.PeriodTotal, 0, len(buckets))
	for period, total := range buckets {
		totals = append(totals, core.PeriodTotal{Period: period, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Period < totals[j].Period })
	return totals, nil
}

func periodKey(d core.Date, granularity Granularity) (string, error) {
	switch granularity {
	case ByDay:
		return d.Format("2006-01-02"), nil
	case ByMonth:
		return d.Format("2006-01"), nil
	case ByYear:
		return d.Format("2006"), nil
	default:
		return "", fmt.Errorf("unknown granularity: %s", granularity)
	}
}
