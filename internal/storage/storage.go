// Package storage provides SQLite-backed persistence for users, categories,
// expenses, groups and shared expenses.
package storage

import (
	"context"
	"errors"

	"expensex/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("record already exists")

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u *core.User) error
	GetUser(ctx context.Context, id string) (*core.User, error)
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	UpdateUser(ctx context.Context, u *core.User) error
}

// CategoryStore persists per-user expense categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *core.Category) error
	GetCategory(ctx context.Context, id string) (*core.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (*core.Category, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	CountCategories(ctx context.Context, userID string) (int, error)
	DeleteCategory(ctx context.Context, id string) error
	ReassignExpenses(ctx context.Context, fromCategoryID, toCategoryID string) error
}

// ExpenseStore persists personal expenses and their export sync state.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *core.Expense) error
	GetExpense(ctx context.Context, id string) (*core.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	ListExpensesInRange(ctx context.Context, userID, from, to string) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e *core.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	MonthTotal(ctx context.Context, userID string, year, month int) (float64, error)
	CategoryTotals(ctx context.Context, userID, from, to string) ([]core.CategoryTotal, error)
	ExpenseMonths(ctx context.Context, userID string) ([]string, error)

	GetPendingSyncExpenses(ctx context.Context, limit int) ([]core.Expense, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	CreateGroup(ctx context.Context, g *core.Group) error
	GetGroup(ctx context.Context, id string) (*core.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]core.Group, error)
	UpdateGroup(ctx context.Context, g *core.Group) error
	DeleteGroup(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID string, m core.Member) error
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// SharedExpenseStore persists group expenses and their splits.
type SharedExpenseStore interface {
	CreateSharedExpense(ctx context.Context, e *core.SharedExpense) error
	GetSharedExpense(ctx context.Context, id string) (*core.SharedExpense, error)
	ListSharedExpenses(ctx context.Context, groupID string) ([]core.SharedExpense, error)
	DeleteSharedExpense(ctx context.Context, id string) error
	SettleSharedExpense(ctx context.Context, id string) error
}

// Store is the full persistence surface used by the service layer.
type Store interface {
	UserStore
	CategoryStore
	ExpenseStore
	GroupStore
	SharedExpenseStore
	Close() error
}
