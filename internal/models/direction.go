package models

import (
	"fmt"
	"strings"
)

// Direction tells whether a transaction increases or decreases a balance.
type Direction string

const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// ParseDirection accepts "credit" or "debit" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case Credit:
		return Credit, nil
	case Debit:
		return Debit, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be CREDIT or DEBIT", s)
	}
}

// IsValid reports whether d is one of the known directions.
func (d Direction) IsValid() bool {
	return d == Credit || d == Debit
}

// Sign returns +1 for credits and -1 for debits.
func (d Direction) Sign() int64 {
	if d == Credit {
		return 1
	}
	return -1
}

func (d Direction) String() string {
	return string(d)
}

// Frequency of a recurring transaction.
type Frequency string

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Biweekly  Frequency = "BIWEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
)

// ParseFrequency accepts any of the frequency names in any case.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return f, nil
	default:
		return "", fmt.Errorf("invalid recurring frequency %q", s)
	}
}
