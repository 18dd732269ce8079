package http

import (
	"encoding/json"
	"net/http"

	"expensex/internal/core"
	"expensex/internal/storage"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.CreatorID == "" {
		respondBadRequest(w, "creator_id is required")
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Description, req.CreatorID, req.CreatorName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGroupJSON(*group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]groupJSON, len(groups))
	for i, g := range groups {
		out[i] = toGroupJSON(g)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupJSON(*group))
}

type updateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	group, err := s.groups.UpdateGroup(r.Context(), r.PathValue("id"), req.Name, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupJSON(*group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if err := s.groups.DeleteGroup(r.Context(), groupID); err != nil {
		respondError(w, err)
		return
	}
	s.balancesCache.Delete(groupID)
	respondJSON(w, http.StatusNoContent, nil)
}

type addMemberRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondBadRequest(w, "user_id is required")
		return
	}

	m := core.Member{UserID: req.UserID, DisplayName: req.DisplayName}
	if err := s.groups.AddMember(r.Context(), r.PathValue("id"), m); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type removeMemberResponse struct {
	GroupDeleted bool `json:"group_deleted"`
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	groupDeleted, err := s.groups.RemoveMember(r.Context(), groupID, r.PathValue("userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	if groupDeleted {
		s.balancesCache.Delete(groupID)
	}
	respondJSON(w, http.StatusOK, removeMemberResponse{GroupDeleted: groupDeleted})
}

type sharedExpenseRequest struct {
	Description    string      `json:"description"`
	Amount         json.Number `json:"amount"`
	PaidBy         string      `json:"paid_by"`
	Date           string      `json:"date"`
	ParticipantIDs []string    `json:"participant_ids"`
}

func (s *Server) handleAddSharedExpense(w http.ResponseWriter, r *http.Request) {
	var req sharedExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	groupID := r.PathValue("id")
	created, err := s.groups.AddSharedExpense(r.Context(), groupID, req.Description, amount, req.PaidBy, date, req.ParticipantIDs)
	if err != nil {
		respondError(w, err)
		return
	}
	s.balancesCache.Delete(groupID)
	respondJSON(w, http.StatusCreated, toSharedExpenseJSON(*created))
}

func (s *Server) handleListSharedExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.groups.ListSharedExpenses(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]sharedExpenseJSON, len(expenses))
	for i, se := range expenses {
		out[i] = toSharedExpenseJSON(se)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSettleExpense(w http.ResponseWriter, r *http.Request) {
	se, err := s.getGroupExpense(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.groups.SettleExpense(r.Context(), se.ID); err != nil {
		respondError(w, err)
		return
	}
	s.balancesCache.Delete(se.GroupID)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteSharedExpense(w http.ResponseWriter, r *http.Request) {
	se, err := s.getGroupExpense(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.groups.DeleteSharedExpense(r.Context(), se.ID); err != nil {
		respondError(w, err)
		return
	}
	s.balancesCache.Delete(se.GroupID)
	respondJSON(w, http.StatusNoContent, nil)
}

// getGroupExpense loads the shared expense from the path and checks it
// belongs to the group in the path. A mismatch reads as not found so an
// expense cannot be settled or deleted through another group's URL.
func (s *Server) getGroupExpense(r *http.Request) (*core.SharedExpense, error) {
	se, err := s.groups.GetSharedExpense(r.Context(), r.PathValue("expenseID"))
	if err != nil {
		return nil, err
	}
	if se.GroupID != r.PathValue("id") {
		return nil, storage.ErrNotFound
	}
	return se, nil
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if cached, ok := s.balancesCache.Get(groupID); ok {
		respondJSON(w, http.StatusOK, toBalanceListJSON(cached))
		return
	}

	balances, err := s.groups.Balances(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	s.balancesCache.Set(groupID, balances)
	respondJSON(w, http.StatusOK, toBalanceListJSON(balances))
}
