package memory

import (
	"context"
	"testing"

	"expensex/internal/sheets"
)

func TestAppendAndRows(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, sheets.ExpenseRow{
		Date:        "2024-06-03",
		Description: "Groceries",
		Category:    "Food",
		Amount:      40,
		UserEmail:   "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q; want mem:1", ref)
	}

	ref, err = s.Append(ctx, sheets.ExpenseRow{Date: "2024-06-04", Description: "Lunch", Amount: 12})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if ref != "mem:2" {
		t.Errorf("ref = %q; want mem:2", ref)
	}

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d; want 2", len(rows))
	}
	if rows[0].Description != "Groceries" {
		t.Errorf("rows[0].Description = %q; want Groceries", rows[0].Description)
	}
}
