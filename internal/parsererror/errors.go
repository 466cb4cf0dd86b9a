// Package parsererror defines the typed errors raised while importing and
// validating financial data. Callers inspect them with errors.As.
package parsererror

import (
	"fmt"
	"sort"
	"strings"
)

// ParseError represents a low-level failure converting a raw value.
type ParseError struct {
	Component string
	Field     string
	Value     string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Component, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid input to a service operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// MappingError is returned when the required columns of a CSV cannot be
// resolved. The whole import is rejected.
type MappingError struct {
	// Detected holds the partial logical field -> header mapping.
	Detected map[string]string
	// Available lists the headers present in the file, in file order.
	Available []string
	// Missing lists the required fields that could not be resolved.
	Missing []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("could not detect required columns (%s); available headers: %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// RowError describes why a single CSV row was skipped. Row is 1-indexed.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

// BatchError is returned when not a single row of an import was valid.
type BatchError struct {
	Rows []*RowError
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("no valid transactions found (%d row errors)", len(e.Rows))
}

// Messages returns the user-facing row error strings ordered by row.
func (e *BatchError) Messages() []string {
	return RowMessages(e.Rows)
}

// RowMessages renders row errors ordered by row number.
func RowMessages(rows []*RowError) []string {
	sorted := make([]*RowError, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Row < sorted[j].Row })

	out := make([]string, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, r.Error())
	}
	return out
}
