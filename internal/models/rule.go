package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MatchField selects which transaction field a rule inspects.
type MatchField string

const (
	MatchDescription MatchField = "DESCRIPTION"
	MatchAmount      MatchField = "AMOUNT"
	MatchAmountRange MatchField = "AMOUNT_RANGE"
	MatchDate        MatchField = "DATE"
)

// ParseMatchField accepts the match field names in any case.
func ParseMatchField(s string) (MatchField, error) {
	f := MatchField(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case MatchDescription, MatchAmount, MatchAmountRange, MatchDate:
		return f, nil
	default:
		return "", fmt.Errorf("invalid match field %q: must be one of DESCRIPTION, AMOUNT, AMOUNT_RANGE, DATE", s)
	}
}

// CategorizationRule assigns CategoryID to transactions matching its condition.
// Higher Priority is evaluated first.
type CategorizationRule struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	CategoryID   string           `json:"categoryId"`
	Name         string           `json:"name"`
	MatchField   MatchField       `json:"matchField"`
	MatchPattern string           `json:"matchPattern"`
	MinAmount    *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount    *decimal.Decimal `json:"maxAmount,omitempty"`
	Priority     int              `json:"priority"`
	IsActive     bool             `json:"isActive"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
