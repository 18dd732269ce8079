package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"expensex/internal/cache"
	"expensex/internal/core"
	"expensex/internal/middleware/ratelimit"
	"expensex/internal/middleware/security"
	"expensex/internal/middleware/trace"
	"expensex/internal/services"
)

// Server is the JSON API. It owns the response caches and the rate limiter
// and tears both down on Shutdown.
type Server struct {
	httpServer *http.Server

	users    *services.UserService
	expenses *services.ExpenseService
	groups   *services.GroupService

	limiter     *ratelimit.Limiter
	ipExtractor *security.IPExtractor
	caches      *cache.Manager

	// balancesCache is keyed by group id, overviewCache by "userID/YYYY-MM".
	// Both are invalidated on the mutations that change their answers; the
	// TTL only covers writes that bypass this process.
	balancesCache *cache.LRUCache[[]core.Balance]
	overviewCache *cache.LRUCache[core.MonthOverview]

	shutdownOnce sync.Once
}

func NewServer(addr string, users *services.UserService, expenses *services.ExpenseService, groups *services.GroupService, requestsPerMinute int) *Server {
	limiterCfg := ratelimit.DefaultConfig()
	if requestsPerMinute > 0 {
		limiterCfg.RequestsPerMinute = requestsPerMinute
	}

	s := &Server{
		users:         users,
		expenses:      expenses,
		groups:        groups,
		limiter:       ratelimit.NewLimiter(limiterCfg),
		ipExtractor:   security.NewIPExtractor(),
		caches:        cache.NewManager(),
		balancesCache: cache.NewLRU[[]core.Balance](100, 5*time.Minute),
		overviewCache: cache.NewLRU[core.MonthOverview](200, 5*time.Minute),
	}
	s.caches.Register(s.balancesCache)
	s.caches.Register(s.overviewCache)
	s.caches.StartCleanup(time.Minute)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// handler assembles the routes and wraps them in the middleware chain.
// Tracing sits outermost so rate-limited requests are still logged.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /users", s.handleRegister)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)

	mux.HandleFunc("GET /users/{id}/categories", s.handleListCategories)
	mux.HandleFunc("POST /users/{id}/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /users/{id}/categories/{categoryID}", s.handleDeleteCategory)

	mux.HandleFunc("GET /users/{id}/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /users/{id}/expenses", s.handleAddExpense)
	mux.HandleFunc("GET /users/{id}/expenses/{expenseID}", s.handleGetExpense)
	mux.HandleFunc("PUT /users/{id}/expenses/{expenseID}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /users/{id}/expenses/{expenseID}", s.handleDeleteExpense)

	mux.HandleFunc("GET /users/{id}/summary/month", s.handleMonthOverview)
	mux.HandleFunc("GET /users/{id}/summary/categories", s.handleCategoryTotals)
	mux.HandleFunc("GET /users/{id}/summary/periods", s.handlePeriodTotals)
	mux.HandleFunc("GET /users/{id}/summary/months", s.handleExpenseMonths)

	mux.HandleFunc("POST /groups", s.handleCreateGroup)
	mux.HandleFunc("GET /users/{id}/groups", s.handleListGroups)
	mux.HandleFunc("GET /groups/{id}", s.handleGetGroup)
	mux.HandleFunc("PUT /groups/{id}", s.handleUpdateGroup)
	mux.HandleFunc("DELETE /groups/{id}", s.handleDeleteGroup)

	mux.HandleFunc("POST /groups/{id}/members", s.handleAddMember)
	mux.HandleFunc("DELETE /groups/{id}/members/{userID}", s.handleRemoveMember)

	mux.HandleFunc("POST /groups/{id}/expenses", s.handleAddSharedExpense)
	mux.HandleFunc("GET /groups/{id}/expenses", s.handleListSharedExpenses)
	mux.HandleFunc("POST /groups/{id}/expenses/{expenseID}/settle", s.handleSettleExpense)
	mux.HandleFunc("DELETE /groups/{id}/expenses/{expenseID}", s.handleDeleteSharedExpense)

	mux.HandleFunc("GET /groups/{id}/balances", s.handleBalances)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.ipExtractor.ClientIP)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = trace.Middleware(s.ipExtractor.ClientIP)(h)
	return h
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	slog.Info("HTTP server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the background loops. Safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	// Ready means the database answers; a cheap read is enough.
	if _, err := s.expenses.ExpenseMonths(r.Context(), "readyz-probe"); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
