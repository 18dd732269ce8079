package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"expensex/internal/core"
	"expensex/internal/services"
	"expensex/internal/split"
	"expensex/internal/storage"
)

// respondJSON writes v as a JSON body with the given status. A nil v writes
// no body, which is what 204 responses want.
func respondJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps a service error onto an HTTP status and a JSON error
// body. Unknown errors become opaque 500s so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		msg = "internal server error"
	}
	respondJSON(w, status, errorBody{Error: msg})
}

// respondBadRequest is for errors the handler already knows are the
// caller's fault, like unparseable bodies or query parameters.
func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, core.ErrMemberExists),
		errors.Is(err, services.ErrCategoryExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrNoMembers),
		errors.Is(err, core.ErrPayerNotInSplits),
		errors.Is(err, split.ErrNoParticipants),
		errors.Is(err, split.ErrInvalidAmount),
		errors.Is(err, services.ErrLastCategory),
		errors.Is(err, services.ErrNotMember):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseYearMonth reads year and month query parameters.
func parseYearMonth(r *http.Request) (year, month int, err error) {
	year, err = strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, errors.New("invalid year")
	}
	month, err = strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, errors.New("invalid month")
	}
	return year, month, nil
}
