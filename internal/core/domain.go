package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar day; the time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// User is a registered account. There is no credential handling here:
	// callers identify themselves by user id.
	User struct {
		ID        string
		Email     string
		Name      string
		Avatar    string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Category classifies a user's personal expenses.
	Category struct {
		ID     string
		UserID string
		Name   string
		Color  string
		Icon   string
	}

	// Expense is a personal expense owned by a single user.
	Expense struct {
		ID          string
		UserID      string
		CategoryID  string
		Description string
		Amount      float64
		Date        Date
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Member is one participant of a group.
	Member struct {
		UserID      string
		DisplayName string
		JoinedAt    time.Time
	}

	// Group is a set of members who share expenses. Members are embedded:
	// the group owns them. Member user ids are unique within a group, and a
	// group with zero members is deleted rather than kept empty.
	Group struct {
		ID          string
		Name        string
		Description string
		CreatedBy   string
		Members     []Member
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Split is one member's share of a shared expense. Settled mirrors the
	// parent expense flag; it is only ever set in bulk.
	Split struct {
		UserID  string
		Amount  float64
		Settled bool
	}

	// SharedExpense is a group expense paid by one member and divided among
	// the members captured in Splits at creation time.
	SharedExpense struct {
		ID          string
		GroupID     string
		Description string
		Amount      float64
		PaidBy      string
		Date        Date
		Settled     bool
		Splits      []Split
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Balance is a derived, never-persisted net debt: UserID owes
	// OtherUserID Amount. Amount is always positive and at most one Balance
	// exists per unordered pair of members.
	Balance struct {
		UserID      string
		OtherUserID string
		Amount      float64
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNoMembers        = errors.New("group has no members")
	ErrMemberExists     = errors.New("user is already a member of the group")
	ErrPayerNotInSplits = errors.New("payer is not part of the splits")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, the form it is persisted in.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(u.Email) == "" || !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return errors.New("empty category")
	}
	return nil
}

func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Members) == 0 {
		return ErrNoMembers
	}
	seen := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		if m.UserID == "" {
			return errors.New("member without user id")
		}
		if seen[m.UserID] {
			return ErrMemberExists
		}
		seen[m.UserID] = true
	}
	return nil
}

// MemberIDs returns the user ids of all members, in membership order.
func (g Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// HasMember reports whether userID is a current member of the group.
func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (se SharedExpense) Validate() error {
	if err := se.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(se.Description)) == 0 {
		return ErrEmptyDescription
	}
	if se.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(se.Splits) == 0 {
		return errors.New("shared expense without splits")
	}
	payerInSplits := false
	for _, sp := range se.Splits {
		if sp.UserID == se.PaidBy {
			payerInSplits = true
			break
		}
	}
	if !payerInSplits {
		return ErrPayerNotInSplits
	}
	return nil
}
