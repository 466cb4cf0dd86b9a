// Package api exposes the services as a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"fjacquet/spendwise/internal/importer"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/ratelimit"
	"fjacquet/spendwise/internal/service"
)

// CSVImporter runs CSV imports.
type CSVImporter interface {
	Import(ctx context.Context, req importer.Request) (*importer.Result, error)
}

// Services are the operations the API exposes.
type Services struct {
	Accounts     *service.AccountService
	Categories   *service.CategoryService
	Rules        *service.RuleService
	Transactions *service.TransactionService
	Search       *service.SearchService
	Importer     CSVImporter
}

// Options tune the middleware stack.
type Options struct {
	DefaultUserID  string
	AllowedOrigins []string
	MaxBodyBytes   int64
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *ratelimit.Store
}

// Server routes requests to the services.
type Server struct {
	svc    Services
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// NewServer creates a Server.
func NewServer(svc Services, opts Options, logger logging.Logger) *Server {
	return &Server{svc: svc, opts: opts, logger: logger, now: time.Now}
}

// Handler returns the routed handler wrapped in the middleware stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)

	mux.HandleFunc("POST /api/accounts", s.createAccount)
	mux.HandleFunc("GET /api/accounts", s.listAccounts)
	mux.HandleFunc("GET /api/accounts/{id}", s.getAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.updateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.deleteAccount)

	mux.HandleFunc("POST /api/categories", s.createCategory)
	mux.HandleFunc("GET /api/categories", s.listCategories)
	mux.HandleFunc("GET /api/categories/{id}", s.getCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.updateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.deleteCategory)

	mux.HandleFunc("POST /api/categories/rules", s.createRule)
	mux.HandleFunc("GET /api/categories/rules", s.listRules)
	mux.HandleFunc("POST /api/categories/rules/preview", s.previewRules)
	mux.HandleFunc("GET /api/categories/rules/{id}", s.getRule)
	mux.HandleFunc("PUT /api/categories/rules/{id}", s.updateRule)
	mux.HandleFunc("DELETE /api/categories/rules/{id}", s.deleteRule)

	mux.HandleFunc("POST /api/transactions", s.createTransaction)
	mux.HandleFunc("GET /api/transactions", s.listTransactions)
	mux.HandleFunc("POST /api/transactions/import", s.importTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.getTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.updateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.deleteTransaction)

	mux.HandleFunc("GET /api/search", s.search)

	mws := []Middleware{
		RequestID,
		Recovery(s.logger),
		Logger(s.logger),
		CORS(s.opts.AllowedOrigins),
	}
	if s.opts.RateLimiter != nil {
		limiter := s.opts.RateLimiter
		mws = append(mws, func(next http.Handler) http.Handler { return ratelimit.Middleware(limiter, next) })
	}
	mws = append(mws, MaxBody(s.opts.MaxBodyBytes), Auth(s.opts.DefaultUserID))
	return Chain(mux, mws...)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}
