package http

import (
	"net/http"

	"expensex/internal/core"
)

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := (core.User{Email: req.Email, Name: req.Name}).Validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserJSON(*user))
}

// handleListUsers lists everyone, or looks a single user up when an email
// query parameter is present.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		user, err := s.users.GetUserByEmail(r.Context(), email)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, []userJSON{toUserJSON(*user)})
		return
	}

	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]userJSON, len(users))
	for i, u := range users {
		out[i] = toUserJSON(u)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserJSON(*user))
}

type updateUserRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), r.PathValue("id"), req.Name, req.Avatar)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserJSON(*user))
}
