package api

import (
	"net/http"

	"fjacquet/spendwise/internal/service"

	"github.com/shopspring/decimal"
)

type accountRequest struct {
	Name        *string          `json:"name"`
	Type        *string          `json:"type"`
	Currency    *string          `json:"currency"`
	Balance     *decimal.Decimal `json:"balance"`
	Description *string          `json:"description"`
}

// createAccount handles POST /api/accounts
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.svc.Accounts.Create(r.Context(), UserIDFrom(r.Context()), service.AccountInput{
		Name:        deref(req.Name),
		Type:        deref(req.Type),
		Currency:    deref(req.Currency),
		Balance:     req.Balance,
		Description: deref(req.Description),
	})
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to create account")
		return
	}
	WriteJSON(w, http.StatusCreated, account)
}

// listAccounts handles GET /api/accounts
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Accounts.List(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch accounts")
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(accounts))
}

// getAccount handles GET /api/accounts/{id}
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.svc.Accounts.Get(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch account")
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

// updateAccount handles PUT /api/accounts/{id}
func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.svc.Accounts.Update(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"), service.AccountPatch{
		Name:        req.Name,
		Type:        req.Type,
		Currency:    req.Currency,
		Balance:     req.Balance,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to update account")
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

// deleteAccount handles DELETE /api/accounts/{id}
func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Accounts.Delete(r.Context(), UserIDFrom(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to delete account")
		return
	}
	WriteJSON(w, http.StatusOK, message{Message: "Account deleted successfully"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
