package http

import (
	"encoding/json"
	"net/http"

	"expensex/internal/core"
	"expensex/internal/storage"
)

type expenseRequest struct {
	CategoryID  string      `json:"category_id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
}

// parseExpense turns the wire form into a domain expense. Amounts arrive as
// JSON numbers but go through ParseAmount so they are rounded to cents the
// same way everywhere.
func parseExpense(req expenseRequest, userID string) (core.Expense, error) {
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	}, nil
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	e, err := parseExpense(req, r.PathValue("id"))
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if err := e.Validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	created, err := s.expenses.AddExpense(r.Context(), e)
	if err != nil {
		respondError(w, err)
		return
	}
	s.invalidateOverview(created.UserID, created.Date)
	respondJSON(w, http.StatusCreated, toExpenseJSON(*created))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toExpenseListJSON(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.getOwnedExpense(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toExpenseJSON(*e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	existing, err := s.getOwnedExpense(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	e, err := parseExpense(req, existing.UserID)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	e.ID = existing.ID
	if err := e.Validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	updated, err := s.expenses.UpdateExpense(r.Context(), e)
	if err != nil {
		respondError(w, err)
		return
	}
	// The expense may have moved months, so both overviews are stale.
	s.invalidateOverview(existing.UserID, existing.Date)
	s.invalidateOverview(updated.UserID, updated.Date)
	respondJSON(w, http.StatusOK, toExpenseJSON(*updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	existing, err := s.getOwnedExpense(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), existing.ID); err != nil {
		respondError(w, err)
		return
	}
	s.invalidateOverview(existing.UserID, existing.Date)
	respondJSON(w, http.StatusNoContent, nil)
}

// getOwnedExpense loads the expense from the path and checks it belongs to
// the user in the path. A mismatch reads as not found so expense ids cannot
// be probed across users.
func (s *Server) getOwnedExpense(r *http.Request) (*core.Expense, error) {
	e, err := s.expenses.GetExpense(r.Context(), r.PathValue("expenseID"))
	if err != nil {
		return nil, err
	}
	if e.UserID != r.PathValue("id") {
		return nil, storage.ErrNotFound
	}
	return e, nil
}
