package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"expensex/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, email, name string) *core.User {
	t.Helper()

	u := &core.User{Email: email, Name: name}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func mustParseDate(t *testing.T, s string) core.Date {
	t.Helper()

	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

func TestReopenExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	mustCreateUser(t, store, "alice@example.com", "Alice")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The second open finds the schema already current and the data intact.
	store, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	u, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if u.Name != "Alice" {
		t.Errorf("Name = %q; want Alice", u.Name)
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create generates ID and timestamps", func(t *testing.T) {
		u := mustCreateUser(t, store, "alice@example.com", "Alice")
		if u.ID == "" {
			t.Error("expected ID to be generated")
		}
		if u.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("get by ID and email", func(t *testing.T) {
		u := mustCreateUser(t, store, "bob@example.com", "Bob")

		got, err := store.GetUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Email != "bob@example.com" {
			t.Errorf("Email = %q; want bob@example.com", got.Email)
		}

		got, err = store.GetUserByEmail(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != u.ID {
			t.Errorf("ID = %q; want %q", got.ID, u.ID)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		mustCreateUser(t, store, "carol@example.com", "Carol")
		err := store.CreateUser(ctx, &core.User{Email: "carol@example.com", Name: "Carol Again"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("CreateUser error = %v; want ErrDuplicate", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetUser error = %v; want ErrNotFound", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		u := mustCreateUser(t, store, "dave@example.com", "Dave")
		u.Name = "David"
		if err := store.UpdateUser(ctx, u); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		got, err := store.GetUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Name != "David" {
			t.Errorf("Name = %q; want David", got.Name)
		}
	})

	t.Run("list ordered by name", func(t *testing.T) {
		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) < 4 {
			t.Fatalf("len(users) = %d; want at least 4", len(users))
		}
		for i := 1; i < len(users); i++ {
			if users[i-1].Name > users[i].Name {
				t.Errorf("users out of order: %q before %q", users[i-1].Name, users[i].Name)
			}
		}
	})
}

func TestCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "alice@example.com", "Alice")

	t.Run("create and list", func(t *testing.T) {
		for _, name := range []string{"Food", "Transport", "Other"} {
			err := store.CreateCategory(ctx, &core.Category{UserID: user.ID, Name: name})
			if err != nil {
				t.Fatalf("CreateCategory(%s) failed: %v", name, err)
			}
		}

		categories, err := store.ListCategories(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if len(categories) != 3 {
			t.Fatalf("len(categories) = %d; want 3", len(categories))
		}
		// ordered by name
		if categories[0].Name != "Food" {
			t.Errorf("first category = %q; want Food", categories[0].Name)
		}

		n, err := store.CountCategories(ctx, user.ID)
		if err != nil {
			t.Fatalf("CountCategories failed: %v", err)
		}
		if n != 3 {
			t.Errorf("CountCategories = %d; want 3", n)
		}
	})

	t.Run("duplicate name per user rejected", func(t *testing.T) {
		err := store.CreateCategory(ctx, &core.Category{UserID: user.ID, Name: "Food"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("CreateCategory error = %v; want ErrDuplicate", err)
		}
	})

	t.Run("same name allowed for another user", func(t *testing.T) {
		other := mustCreateUser(t, store, "bob@example.com", "Bob")
		err := store.CreateCategory(ctx, &core.Category{UserID: other.ID, Name: "Food"})
		if err != nil {
			t.Errorf("CreateCategory for other user failed: %v", err)
		}
	})

	t.Run("get by name", func(t *testing.T) {
		c, err := store.GetCategoryByName(ctx, user.ID, "Transport")
		if err != nil {
			t.Fatalf("GetCategoryByName failed: %v", err)
		}
		if c.Name != "Transport" {
			t.Errorf("Name = %q; want Transport", c.Name)
		}
	})

	t.Run("get by name ignores case", func(t *testing.T) {
		c, err := store.GetCategoryByName(ctx, user.ID, "tRANSPORT")
		if err != nil {
			t.Fatalf("GetCategoryByName failed: %v", err)
		}
		if c.Name != "Transport" {
			t.Errorf("Name = %q; want Transport", c.Name)
		}
	})

	t.Run("reassign and delete", func(t *testing.T) {
		food, err := store.GetCategoryByName(ctx, user.ID, "Food")
		if err != nil {
			t.Fatalf("GetCategoryByName failed: %v", err)
		}
		other, err := store.GetCategoryByName(ctx, user.ID, "Other")
		if err != nil {
			t.Fatalf("GetCategoryByName failed: %v", err)
		}

		e := &core.Expense{
			UserID:      user.ID,
			CategoryID:  food.ID,
			Description: "Lunch",
			Amount:      12.50,
			Date:        mustParseDate(t, "2024-06-03"),
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		if err := store.ReassignExpenses(ctx, food.ID, other.ID); err != nil {
			t.Fatalf("ReassignExpenses failed: %v", err)
		}
		if err := store.DeleteCategory(ctx, food.ID); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}

		got, err := store.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.CategoryID != other.ID {
			t.Errorf("CategoryID = %q; want %q", got.CategoryID, other.ID)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, store, "alice@example.com", "Alice")

	food := &core.Category{UserID: user.ID, Name: "Food"}
	travel := &core.Category{UserID: user.ID, Name: "Travel"}
	for _, c := range []*core.Category{food, travel} {
		if err := store.CreateCategory(ctx, c); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}
	}

	expenses := []struct {
		categoryID  string
		description string
		amount      float64
		date        string
	}{
		{food.ID, "Groceries", 40.00, "2024-06-03"},
		{food.ID, "Lunch", 12.50, "2024-06-10"},
		{travel.ID, "Train", 25.00, "2024-06-15"},
		{travel.ID, "Hotel", 120.00, "2024-07-01"},
	}
	for _, in := range expenses {
		e := &core.Expense{
			UserID:      user.ID,
			CategoryID:  in.categoryID,
			Description: in.description,
			Amount:      in.amount,
			Date:        mustParseDate(t, in.date),
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense(%s) failed: %v", in.description, err)
		}
	}

	t.Run("list ordered newest first", func(t *testing.T) {
		list, err := store.ListExpenses(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(list) != 4 {
			t.Fatalf("len(list) = %d; want 4", len(list))
		}
		if list[0].Description != "Hotel" {
			t.Errorf("first expense = %q; want Hotel", list[0].Description)
		}
	})

	t.Run("range query", func(t *testing.T) {
		list, err := store.ListExpensesInRange(ctx, user.ID, "2024-06-01", "2024-06-30")
		if err != nil {
			t.Fatalf("ListExpensesInRange failed: %v", err)
		}
		if len(list) != 3 {
			t.Errorf("len(list) = %d; want 3", len(list))
		}
	})

	t.Run("month total", func(t *testing.T) {
		total, err := store.MonthTotal(ctx, user.ID, 2024, 6)
		if err != nil {
			t.Fatalf("MonthTotal failed: %v", err)
		}
		if total != 77.50 {
			t.Errorf("MonthTotal = %v; want 77.50", total)
		}
	})

	t.Run("category totals", func(t *testing.T) {
		totals, err := store.CategoryTotals(ctx, user.ID, "2024-06-01", "2024-07-31")
		if err != nil {
			t.Fatalf("CategoryTotals failed: %v", err)
		}
		if len(totals) != 2 {
			t.Fatalf("len(totals) = %d; want 2", len(totals))
		}
		if totals[0].Name != "Travel" || totals[0].Total != 145.00 {
			t.Errorf("top category = %q %v; want Travel 145.00", totals[0].Name, totals[0].Total)
		}
	})

	t.Run("expense months", func(t *testing.T) {
		months, err := store.ExpenseMonths(ctx, user.ID)
		if err != nil {
			t.Fatalf("ExpenseMonths failed: %v", err)
		}
		want := []string{"2024-07", "2024-06"}
		if len(months) != len(want) {
			t.Fatalf("months = %v; want %v", months, want)
		}
		for i := range want {
			if months[i] != want[i] {
				t.Errorf("months[%d] = %q; want %q", i, months[i], want[i])
			}
		}
	})

	t.Run("sync lifecycle", func(t *testing.T) {
		pending, err := store.GetPendingSyncExpenses(ctx, 10)
		if err != nil {
			t.Fatalf("GetPendingSyncExpenses failed: %v", err)
		}
		if len(pending) != 4 {
			t.Fatalf("len(pending) = %d; want 4", len(pending))
		}

		if err := store.MarkSynced(ctx, pending[0].ID); err != nil {
			t.Fatalf("MarkSynced failed: %v", err)
		}
		if err := store.MarkSyncError(ctx, pending[1].ID); err != nil {
			t.Fatalf("MarkSyncError failed: %v", err)
		}

		pending, err = store.GetPendingSyncExpenses(ctx, 10)
		if err != nil {
			t.Fatalf("GetPendingSyncExpenses failed: %v", err)
		}
		if len(pending) != 2 {
			t.Errorf("len(pending) = %d; want 2", len(pending))
		}

		// updating a synced expense re-queues it
		synced, err := store.GetExpense(ctx, pending[0].ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		synced.Amount = 13.00
		if err := store.UpdateExpense(ctx, synced); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		list, err := store.ListExpenses(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, list[0].ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, list[0].ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete error = %v; want ErrNotFound", err)
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	newGroup := func(t *testing.T, name string, memberIDs ...string) *core.Group {
		t.Helper()
		g := &core.Group{Name: name, CreatedBy: memberIDs[0]}
		for _, id := range memberIDs {
			g.Members = append(g.Members, core.Member{UserID: id, DisplayName: id})
		}
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		return g
	}

	t.Run("create and get with members", func(t *testing.T) {
		g := newGroup(t, "Trip", "alice", "bob")

		got, err := store.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Errorf("len(Members) = %d; want 2", len(got.Members))
		}
	})

	t.Run("list for user", func(t *testing.T) {
		newGroup(t, "Flat", "bob", "carol")

		groups, err := store.ListGroupsForUser(ctx, "bob")
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 2 {
			t.Errorf("len(groups) = %d; want 2", len(groups))
		}

		groups, err = store.ListGroupsForUser(ctx, "carol")
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 {
			t.Errorf("len(groups) = %d; want 1", len(groups))
		}
	})

	t.Run("add and remove member", func(t *testing.T) {
		g := newGroup(t, "Dinner", "alice")

		if err := store.AddMember(ctx, g.ID, core.Member{UserID: "dave"}); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if err := store.AddMember(ctx, g.ID, core.Member{UserID: "dave"}); !errors.Is(err, ErrDuplicate) {
			t.Errorf("duplicate AddMember error = %v; want ErrDuplicate", err)
		}
		if err := store.RemoveMember(ctx, g.ID, "dave"); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if err := store.RemoveMember(ctx, g.ID, "dave"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second RemoveMember error = %v; want ErrNotFound", err)
		}
	})

	t.Run("delete cascades shared expenses", func(t *testing.T) {
		g := newGroup(t, "Weekend", "alice", "bob")
		e := &core.SharedExpense{
			GroupID:     g.ID,
			Description: "Cabin",
			Amount:      200,
			PaidBy:      "alice",
			Date:        mustParseDate(t, "2024-06-08"),
			Splits: []core.Split{
				{UserID: "alice", Amount: 100},
				{UserID: "bob", Amount: 100},
			},
		}
		if err := store.CreateSharedExpense(ctx, e); err != nil {
			t.Fatalf("CreateSharedExpense failed: %v", err)
		}

		if err := store.DeleteGroup(ctx, g.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetGroup(ctx, g.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetGroup after delete error = %v; want ErrNotFound", err)
		}
		if _, err := store.GetSharedExpense(ctx, e.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetSharedExpense after group delete error = %v; want ErrNotFound", err)
		}
	})
}

func TestSharedExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := &core.Group{
		Name:      "Trip",
		CreatedBy: "alice",
		Members: []core.Member{
			{UserID: "alice"},
			{UserID: "bob"},
		},
	}
	if err := store.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	e := &core.SharedExpense{
		GroupID:     g.ID,
		Description: "Dinner",
		Amount:      60,
		PaidBy:      "alice",
		Date:        mustParseDate(t, "2024-06-08"),
		Splits: []core.Split{
			{UserID: "alice", Amount: 30},
			{UserID: "bob", Amount: 30},
		},
	}
	if err := store.CreateSharedExpense(ctx, e); err != nil {
		t.Fatalf("CreateSharedExpense failed: %v", err)
	}

	t.Run("round trip with splits", func(t *testing.T) {
		got, err := store.GetSharedExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetSharedExpense failed: %v", err)
		}
		if got.Amount != 60 || got.PaidBy != "alice" || got.Settled {
			t.Errorf("unexpected expense: %+v", got)
		}
		if len(got.Splits) != 2 {
			t.Fatalf("len(Splits) = %d; want 2", len(got.Splits))
		}
		if got.Splits[0].Settled || got.Splits[1].Settled {
			t.Error("new splits should be unsettled")
		}
	})

	t.Run("list by group", func(t *testing.T) {
		list, err := store.ListSharedExpenses(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListSharedExpenses failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("len(list) = %d; want 1", len(list))
		}
		if len(list[0].Splits) != 2 {
			t.Errorf("len(Splits) = %d; want 2", len(list[0].Splits))
		}
	})

	t.Run("settle is idempotent", func(t *testing.T) {
		if err := store.SettleSharedExpense(ctx, e.ID); err != nil {
			t.Fatalf("SettleSharedExpense failed: %v", err)
		}
		if err := store.SettleSharedExpense(ctx, e.ID); err != nil {
			t.Fatalf("second SettleSharedExpense failed: %v", err)
		}

		got, err := store.GetSharedExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetSharedExpense failed: %v", err)
		}
		if !got.Settled {
			t.Error("expected expense to be settled")
		}
		for _, sp := range got.Splits {
			if !sp.Settled {
				t.Errorf("expected split for %s to be settled", sp.UserID)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.DeleteSharedExpense(ctx, e.ID); err != nil {
			t.Fatalf("DeleteSharedExpense failed: %v", err)
		}
		if _, err := store.GetSharedExpense(ctx, e.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetSharedExpense after delete error = %v; want ErrNotFound", err)
		}
	})
}
