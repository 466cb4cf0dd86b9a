// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/models"

	"github.com/shopspring/decimal"
)

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// NewTable returns a tab-aligned writer. Callers must Flush it.
func NewTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// ParseMappings turns repeated field=header flags into a column mapping.
func ParseMappings(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		field, header, ok := strings.Cut(p, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" || strings.TrimSpace(header) == "" {
			return nil, fmt.Errorf("invalid mapping %q: expected field=header", p)
		}
		out[field] = header
	}
	return out, nil
}

// OptionalDecimal parses s, returning nil for an empty string.
func OptionalDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return &d, nil
}

// OptionalDate parses s with the import date formats, returning nil for an
// empty string.
func OptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, _, err := dateutils.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return &t, nil
}

// Signed renders a transaction amount with its balance sign, e.g. "-4.50".
func Signed(tx models.Transaction) string {
	return tx.SignedAmount().StringFixed(2)
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
