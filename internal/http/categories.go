package http

import (
	"net/http"

	"expensex/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.expenses.ListCategories(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]categoryJSON, len(categories))
	for i, c := range categories {
		out[i] = toCategoryJSON(c)
	}
	respondJSON(w, http.StatusOK, out)
}

type addCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req addCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	c := core.Category{
		UserID: r.PathValue("id"),
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
	}
	if err := c.Validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	created, err := s.expenses.AddCategory(r.Context(), c)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryJSON(*created))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if err := s.expenses.DeleteCategory(r.Context(), userID, r.PathValue("categoryID")); err != nil {
		respondError(w, err)
		return
	}
	// Deleting a category reassigns its expenses, which shifts the
	// per-category numbers in any cached month overview.
	s.invalidateOverviews(userID)
	respondJSON(w, http.StatusNoContent, nil)
}
