package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a persisted money movement on an account. Amount is always
// a non-negative magnitude; the sign comes from Direction.
type Transaction struct {
	ID                 string          `json:"id"`
	AccountID          string          `json:"bankAccountId"`
	Amount             decimal.Decimal `json:"amount"`
	Direction          Direction       `json:"type"`
	Date               time.Time       `json:"date"`
	Description        string          `json:"description"`
	CategoryID         *string         `json:"categoryId,omitempty"`
	Latitude           *float64        `json:"latitude,omitempty"`
	Longitude          *float64        `json:"longitude,omitempty"`
	LocationName       *string         `json:"locationName,omitempty"`
	IsRecurring        bool            `json:"isRecurring"`
	RecurringFrequency *Frequency      `json:"recurringFrequency,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// SignedAmount returns the amount as it affects the account balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	return SignedAmount(t.Amount, t.Direction)
}

// SignedAmount applies the direction sign to a magnitude.
func SignedAmount(magnitude decimal.Decimal, d Direction) decimal.Decimal {
	return magnitude.Abs().Mul(decimal.NewFromInt(d.Sign()))
}

// Candidate is a classified import row that has not been persisted yet.
type Candidate struct {
	Amount       decimal.Decimal
	Direction    Direction
	Date         time.Time
	Description  string
	CategoryID   *string
	Latitude     *float64
	Longitude    *float64
	LocationName *string

	// CategoryHint is the raw value of the category column, if one was mapped.
	CategoryHint string
}

// SignedAmount returns the candidate amount as it affects the account balance.
func (c Candidate) SignedAmount() decimal.Decimal {
	return SignedAmount(c.Amount, c.Direction)
}

// SumSigned returns the total balance delta of a batch of candidates.
func SumSigned(candidates []Candidate) decimal.Decimal {
	total := decimal.Zero
	for _, c := range candidates {
		total = total.Add(c.SignedAmount())
	}
	return total
}
