package http

import (
	"fmt"
	"net/http"

	"expensex/internal/core"
	"expensex/internal/services"
)

func overviewKey(userID string, year, month int) string {
	return fmt.Sprintf("%s/%04d-%02d", userID, year, month)
}

func (s *Server) invalidateOverview(userID string, d core.Date) {
	s.overviewCache.Delete(overviewKey(userID, d.Year(), int(d.Month())))
}

func (s *Server) invalidateOverviews(userID string) {
	s.overviewCache.DeletePrefix(userID + "/")
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	year, month, err := parseYearMonth(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if month < 1 || month > 12 {
		respondBadRequest(w, "month must be between 1 and 12")
		return
	}

	key := overviewKey(userID, year, month)
	if cached, ok := s.overviewCache.Get(key); ok {
		respondJSON(w, http.StatusOK, toMonthOverviewJSON(cached))
		return
	}

	overview, err := s.expenses.MonthOverview(r.Context(), userID, year, month)
	if err != nil {
		respondError(w, err)
		return
	}
	s.overviewCache.Set(key, overview)
	respondJSON(w, http.StatusOK, toMonthOverviewJSON(overview))
}

// parseDateRange reads the from and to query parameters as YYYY-MM-DD.
func parseDateRange(r *http.Request) (from, to string, err error) {
	from = r.URL.Query().Get("from")
	to = r.URL.Query().Get("to")
	if _, err := core.ParseDate(from); err != nil {
		return "", "", fmt.Errorf("invalid from date: %q", from)
	}
	if _, err := core.ParseDate(to); err != nil {
		return "", "", fmt.Errorf("invalid to date: %q", to)
	}
	if from > to {
		return "", "", fmt.Errorf("from %s is after to %s", from, to)
	}
	return from, to, nil
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	totals, err := s.expenses.CategoryTotals(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]categoryTotalJSON, len(totals))
	for i, ct := range totals {
		out[i] = categoryTotalJSON{CategoryID: ct.CategoryID, Name: ct.Name, Total: ct.Total}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePeriodTotals(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	granularity := services.Granularity(r.URL.Query().Get("granularity"))
	switch granularity {
	case services.ByDay, services.ByMonth, services.ByYear:
	case "":
		granularity = services.ByMonth
	default:
		respondBadRequest(w, "granularity must be day, month or year")
		return
	}

	totals, err := s.expenses.PeriodTotals(r.Context(), r.PathValue("id"), from, to, granularity)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]periodTotalJSON, len(totals))
	for i, pt := range totals {
		out[i] = periodTotalJSON{Period: pt.Period, Total: pt.Total}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleExpenseMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.expenses.ExpenseMonths(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if months == nil {
		months = []string{}
	}
	respondJSON(w, http.StatusOK, months)
}
