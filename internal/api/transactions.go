package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/service"

	"github.com/shopspring/decimal"
)

type transactionRequest struct {
	BankAccountID      *string          `json:"bankAccountId"`
	Amount             *decimal.Decimal `json:"amount"`
	Type               *string          `json:"type"`
	Date               *string          `json:"date"`
	Description        *string          `json:"description"`
	CategoryID         *string          `json:"categoryId"`
	Latitude           *float64         `json:"latitude"`
	Longitude          *float64         `json:"longitude"`
	LocationName       *string          `json:"locationName"`
	IsRecurring        *bool            `json:"isRecurring"`
	RecurringFrequency *string          `json:"recurringFrequency"`
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type transactionList struct {
	Transactions interface{} `json:"transactions"`
	Pagination   pagination  `json:"pagination"`
}

// parseOptionalDate returns nil for an absent or blank value.
func parseOptionalDate(s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	t, _, err := dateutils.ParseDate(*s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// createTransaction handles POST /api/transactions
func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := parseOptionalDate(req.Date)
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	in := service.TransactionInput{
		AccountID:          deref(req.BankAccountID),
		Direction:          deref(req.Type),
		Date:               date,
		Description:        deref(req.Description),
		CategoryID:         req.CategoryID,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		LocationName:       req.LocationName,
		RecurringFrequency: req.RecurringFrequency,
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	if req.IsRecurring != nil {
		in.IsRecurring = *req.IsRecurring
	}

	tx, err := s.svc.Transactions.Create(r.Context(), UserIDFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to create transaction")
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}

// listTransactions handles GET /api/transactions
//
// Query parameters: accountId, type, categoryId, startDate, endDate (both
// inclusive, whole days), page, limit.
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.TransactionQuery{
		AccountID:  q.Get("accountId"),
		Direction:  q.Get("type"),
		CategoryID: q.Get("categoryId"),
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))

	if v := q.Get("startDate"); v != "" {
		start, _, err := dateutils.ParseDate(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid startDate")
			return
		}
		query.From = dateutils.StartOfDay(start)
	}
	if v := q.Get("endDate"); v != "" {
		end, _, err := dateutils.ParseDate(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid endDate")
			return
		}
		query.To = dateutils.StartOfDay(end).AddDate(0, 0, 1)
	}

	page, err := s.svc.Transactions.List(r.Context(), UserIDFrom(r.Context()), query)
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch transactions")
		return
	}
	WriteJSON(w, http.StatusOK, transactionList{
		Transactions: page.Transactions,
		Pagination: pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// getTransaction handles GET /api/transactions/{id}
func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.Transactions.Get(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch transaction")
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

// updateTransaction handles PUT /api/transactions/{id}
func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := parseOptionalDate(req.Date)
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	tx, err := s.svc.Transactions.Update(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"), service.TransactionPatch{
		Amount:             req.Amount,
		Direction:          req.Type,
		Date:               date,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		LocationName:       req.LocationName,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: req.RecurringFrequency,
	})
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to update transaction")
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

// deleteTransaction handles DELETE /api/transactions/{id}
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), UserIDFrom(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to delete transaction")
		return
	}
	WriteJSON(w, http.StatusOK, message{Message: "Transaction deleted successfully"})
}
