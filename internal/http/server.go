// Package http exposes the wallet as a JSON REST API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/middleware/ratelimit"
	"github.com/Zigorr/Wallet-Fullstack/internal/middleware/security"
	"github.com/Zigorr/Wallet-Fullstack/internal/middleware/trace"
	"github.com/Zigorr/Wallet-Fullstack/internal/rates"
	"github.com/Zigorr/Wallet-Fullstack/internal/services"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

// Deps bundles everything the handlers call into.
type Deps struct {
	Storage      *storage.SQLiteRepository
	Auth         *auth.Service
	Transactions *services.TransactionService
	Transfers    *services.TransferService
	Recurring    *services.RecurringService
	Dashboard    *services.DashboardService
	Rates        rates.Provider
}

type Server struct {
	http.Server

	storage      *storage.SQLiteRepository
	auth         *auth.Service
	transactions *services.TransactionService
	transfers    *services.TransferService
	recurring    *services.RecurringService
	dashboard    *services.DashboardService
	rates        rates.Provider

	limiter  *ratelimit.Limiter
	detector *security.Detector
}

func NewServer(addr string, rlConfig ratelimit.Config, deps Deps) *Server {
	s := &Server{
		storage:      deps.Storage,
		auth:         deps.Auth,
		transactions: deps.Transactions,
		transfers:    deps.Transfers,
		recurring:    deps.Recurring,
		dashboard:    deps.Dashboard,
		rates:        deps.Rates,
		limiter:      ratelimit.NewLimiter(rlConfig),
		detector:     security.NewDetector(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/token", s.handleToken)

	protected := map[string]http.HandlerFunc{
		"GET /auth/me": s.handleMe,

		"GET /accounts":         s.handleListAccounts,
		"POST /accounts":        s.handleCreateAccount,
		"GET /accounts/{id}":    s.handleGetAccount,
		"PUT /accounts/{id}":    s.handleUpdateAccount,
		"DELETE /accounts/{id}": s.handleDeleteAccount,

		"GET /categories":         s.handleListCategories,
		"POST /categories":        s.handleCreateCategory,
		"GET /categories/{id}":    s.handleGetCategory,
		"PUT /categories/{id}":    s.handleUpdateCategory,
		"DELETE /categories/{id}": s.handleDeleteCategory,

		"GET /transactions":                s.handleListTransactions,
		"POST /transactions":               s.handleCreateTransaction,
		"GET /transactions/{id}":           s.handleGetTransaction,
		"PUT /transactions/{id}":           s.handleUpdateTransaction,
		"DELETE /transactions/{id}":        s.handleDeleteTransaction,
		"POST /transactions/transfers":     s.handleTransfer,
		"GET /transactions/exchange-rates": s.handleExchangeRates,

		"GET /recurring-transactions":                s.handleListRecurring,
		"POST /recurring-transactions":               s.handleCreateRecurring,
		"GET /recurring-transactions/{id}":           s.handleGetRecurring,
		"PUT /recurring-transactions/{id}":           s.handleUpdateRecurring,
		"DELETE /recurring-transactions/{id}":        s.handleDeleteRecurring,
		"POST /recurring-transactions/{id}/process":  s.handleProcessRecurring,
		"POST /recurring-transactions/process-due":   s.handleProcessDue,

		"GET /dashboard/summary":    s.handleDashboardSummary,
		"GET /dashboard/monthly":    s.handleDashboardMonthly,
		"GET /dashboard/categories": s.handleDashboardCategories,
	}
	for pattern, h := range protected {
		mux.Handle(pattern, s.requireAuth(h))
	}

	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)
	limited := s.limiter.Middleware(s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           security.Headers(tracer.Middleware(limited(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown drains in-flight requests and stops the limiter's housekeeping.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// requireAuth validates the bearer token and stashes the user ID in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
			return
		}
		userID, err := s.auth.VerifyToken(token)
		if err != nil {
			slog.DebugContext(r.Context(), "Token rejected",
				"request_id", trace.GetRequestID(r.Context()), "error", err)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid or expired token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the {id} segment. A non-numeric ID is a 404: the resource
// space is numeric, so nothing can live there.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
