// Package memory is an in-memory sheets.ExpenseWriter for tests and local
// development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expensex/internal/sheets"
)

var _ sheets.ExpenseWriter = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows []sheets.ExpenseRow
}

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row sheets.ExpenseRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.ExpenseRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.ExpenseRow(nil), s.rows...)
}
