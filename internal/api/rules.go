package api

import (
	"net/http"
	"strings"

	"fjacquet/spendwise/internal/categorizer"
	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/service"

	"github.com/shopspring/decimal"
)

type ruleRequest struct {
	CategoryID   *string          `json:"categoryId"`
	Name         *string          `json:"name"`
	MatchField   *string          `json:"matchField"`
	MatchPattern *string          `json:"matchPattern"`
	MinAmount    *decimal.Decimal `json:"minAmount"`
	MaxAmount    *decimal.Decimal `json:"maxAmount"`
	Priority     *int             `json:"priority"`
	IsActive     *bool            `json:"isActive"`
}

type previewRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

// createRule handles POST /api/categories/rules
func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := s.svc.Rules.Create(r.Context(), UserIDFrom(r.Context()), service.RuleInput{
		CategoryID:   deref(req.CategoryID),
		Name:         deref(req.Name),
		MatchField:   deref(req.MatchField),
		MatchPattern: deref(req.MatchPattern),
		MinAmount:    req.MinAmount,
		MaxAmount:    req.MaxAmount,
		Priority:     req.Priority,
		IsActive:     req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to create rule")
		return
	}
	WriteJSON(w, http.StatusCreated, rule)
}

// listRules handles GET /api/categories/rules
func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.svc.Rules.List(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch rules")
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(rules))
}

// getRule handles GET /api/categories/rules/{id}
func (s *Server) getRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.svc.Rules.Get(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch rule")
		return
	}
	WriteJSON(w, http.StatusOK, rule)
}

// updateRule handles PUT /api/categories/rules/{id}
func (s *Server) updateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := s.svc.Rules.Update(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"), service.RulePatch{
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		MatchField:   req.MatchField,
		MatchPattern: req.MatchPattern,
		MinAmount:    req.MinAmount,
		MaxAmount:    req.MaxAmount,
		Priority:     req.Priority,
		IsActive:     req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to update rule")
		return
	}
	WriteJSON(w, http.StatusOK, rule)
}

// deleteRule handles DELETE /api/categories/rules/{id}
func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Rules.Delete(r.Context(), UserIDFrom(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to delete rule")
		return
	}
	WriteJSON(w, http.StatusOK, message{Message: "Rule deleted successfully"})
}

// previewRules handles POST /api/categories/rules/preview
func (s *Server) previewRules(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	subject := categorizer.Subject{Description: req.Description, Amount: req.Amount}
	if strings.TrimSpace(req.Date) != "" {
		date, _, err := dateutils.ParseDate(req.Date)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid date format")
			return
		}
		subject.Date = date
	}

	preview, err := s.svc.Rules.Preview(r.Context(), UserIDFrom(r.Context()), subject)
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to preview rules")
		return
	}
	WriteJSON(w, http.StatusOK, preview)
}
