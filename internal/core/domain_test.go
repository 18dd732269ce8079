package core

import (
	"testing"
)

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		UserID:      "u1",
		CategoryID:  "c1",
		Description: "Groceries",
		Amount:      23.50,
		Date:        NewDate(2024, 6, 3),
	}

	tests := []struct {
		name    string
		mutate  func(e Expense) Expense
		wantErr bool
	}{
		{"valid", func(e Expense) Expense { return e }, false},
		{"zero date", func(e Expense) Expense { e.Date = Date{}; return e }, true},
		{"empty description", func(e Expense) Expense { e.Description = "  "; return e }, true},
		{"zero amount", func(e Expense) Expense { e.Amount = 0; return e }, true},
		{"negative amount", func(e Expense) Expense { e.Amount = -1; return e }, true},
		{"empty category", func(e Expense) Expense { e.CategoryID = ""; return e }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGroupValidate(t *testing.T) {
	valid := Group{
		Name: "Trip",
		Members: []Member{
			{UserID: "u1", DisplayName: "Alice"},
			{UserID: "u2", DisplayName: "Bob"},
		},
	}

	t.Run("valid", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		g := valid
		g.Name = ""
		if err := g.Validate(); err != ErrEmptyName {
			t.Errorf("Validate() error = %v, want %v", err, ErrEmptyName)
		}
	})

	t.Run("no members", func(t *testing.T) {
		g := valid
		g.Members = nil
		if err := g.Validate(); err != ErrNoMembers {
			t.Errorf("Validate() error = %v, want %v", err, ErrNoMembers)
		}
	})

	t.Run("duplicate member", func(t *testing.T) {
		g := valid
		g.Members = append([]Member{}, g.Members...)
		g.Members = append(g.Members, Member{UserID: "u1", DisplayName: "Alice again"})
		if err := g.Validate(); err != ErrMemberExists {
			t.Errorf("Validate() error = %v, want %v", err, ErrMemberExists)
		}
	})
}

func TestSharedExpenseValidate(t *testing.T) {
	valid := SharedExpense{
		GroupID:     "g1",
		Description: "Dinner",
		Amount:      60,
		PaidBy:      "u1",
		Date:        NewDate(2024, 6, 3),
		Splits: []Split{
			{UserID: "u1", Amount: 30},
			{UserID: "u2", Amount: 30},
		},
	}

	t.Run("valid", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("payer outside splits", func(t *testing.T) {
		se := valid
		se.PaidBy = "u3"
		if err := se.Validate(); err != ErrPayerNotInSplits {
			t.Errorf("Validate() error = %v, want %v", err, ErrPayerNotInSplits)
		}
	})

	t.Run("no splits", func(t *testing.T) {
		se := valid
		se.Splits = nil
		if err := se.Validate(); err == nil {
			t.Error("Validate() expected error for missing splits")
		}
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.34", 12.34, false},
		{"12,34", 12.34, false},
		{"12", 12.00, false},
		{"0.5", 0.50, false},
		{"12.345", 12.34, false},
		{"12.346", 12.35, false},
		{"", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-03")
	if err != nil {
		t.Fatalf("ParseDate error = %v", err)
	}
	if d.Year() != 2024 || int(d.Month()) != 6 || d.Day() != 3 {
		t.Errorf("ParseDate = %v", d)
	}
	if d.String() != "2024-06-03" {
		t.Errorf("String() = %q", d.String())
	}

	if _, err := ParseDate("03/06/2024"); err == nil {
		t.Error("expected error for wrong format")
	}
}
