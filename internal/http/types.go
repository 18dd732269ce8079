package http

import (
	"time"

	"expensex/internal/core"
)

// Wire representations of the domain types. The domain stays free of json
// tags; these structs are the only place field names are pinned down.

type userJSON struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserJSON(u core.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type categoryJSON struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, UserID: c.UserID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}

type expenseJSON struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CategoryID  string    `json:"category_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.String(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseListJSON(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseJSON(e)
	}
	return out
}

type memberJSON struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

type groupJSON struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	CreatedBy   string       `json:"created_by"`
	Members     []memberJSON `json:"members"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func toGroupJSON(g core.Group) groupJSON {
	members := make([]memberJSON, len(g.Members))
	for i, m := range g.Members {
		members[i] = memberJSON{UserID: m.UserID, DisplayName: m.DisplayName, JoinedAt: m.JoinedAt}
	}
	return groupJSON{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     members,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

type splitJSON struct {
	UserID  string  `json:"user_id"`
	Amount  float64 `json:"amount"`
	Settled bool    `json:"settled"`
}

type sharedExpenseJSON struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"group_id"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	PaidBy      string      `json:"paid_by"`
	Date        string      `json:"date"`
	Settled     bool        `json:"settled"`
	Splits      []splitJSON `json:"splits"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toSharedExpenseJSON(se core.SharedExpense) sharedExpenseJSON {
	splits := make([]splitJSON, len(se.Splits))
	for i, sp := range se.Splits {
		splits[i] = splitJSON{UserID: sp.UserID, Amount: sp.Amount, Settled: sp.Settled}
	}
	return sharedExpenseJSON{
		ID:          se.ID,
		GroupID:     se.GroupID,
		Description: se.Description,
		Amount:      se.Amount,
		PaidBy:      se.PaidBy,
		Date:        se.Date.String(),
		Settled:     se.Settled,
		Splits:      splits,
		CreatedAt:   se.CreatedAt,
		UpdatedAt:   se.UpdatedAt,
	}
}

type balanceJSON struct {
	UserID      string  `json:"user_id"`
	OtherUserID string  `json:"other_user_id"`
	Amount      float64 `json:"amount"`
}

func toBalanceListJSON(balances []core.Balance) []balanceJSON {
	out := make([]balanceJSON, len(balances))
	for i, b := range balances {
		out[i] = balanceJSON{UserID: b.UserID, OtherUserID: b.OtherUserID, Amount: b.Amount}
	}
	return out
}

type categoryTotalJSON struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
}

type monthOverviewJSON struct {
	Year       int                 `json:"year"`
	Month      int                 `json:"month"`
	Total      float64             `json:"total"`
	ByCategory []categoryTotalJSON `json:"by_category"`
}

func toMonthOverviewJSON(o core.MonthOverview) monthOverviewJSON {
	byCategory := make([]categoryTotalJSON, len(o.ByCategory))
	for i, ct := range o.ByCategory {
		byCategory[i] = categoryTotalJSON{CategoryID: ct.CategoryID, Name: ct.Name, Total: ct.Total}
	}
	return monthOverviewJSON{Year: o.Year, Month: o.Month, Total: o.Total, ByCategory: byCategory}
}

type periodTotalJSON struct {
	Period string  `json:"period"`
	Total  float64 `json:"total"`
}
