// Package validation holds the input checks shared by the service layer.
// Every failure is a *parsererror.ValidationError.
package validation

import (
	"regexp"
	"strings"

	"fjacquet/spendwise/internal/parsererror"

	"github.com/shopspring/decimal"
)

// MaxNameLength bounds names and descriptions.
const MaxNameLength = 255

var (
	colorPattern    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// RequireText rejects blank or overly long values.
func RequireText(field, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return &parsererror.ValidationError{Field: field, Reason: "is required"}
	}
	if len(v) > MaxNameLength {
		return &parsererror.ValidationError{Field: field, Reason: "is too long"}
	}
	return nil
}

// IsValidColor accepts #rgb and #rrggbb.
func IsValidColor(color string) error {
	if !colorPattern.MatchString(color) {
		return &parsererror.ValidationError{Field: "color", Reason: "must be a hex color such as #3b82f6"}
	}
	return nil
}

// IsValidCurrency accepts three-letter upper-case ISO 4217 style codes.
func IsValidCurrency(code string) error {
	if !currencyPattern.MatchString(code) {
		return &parsererror.ValidationError{Field: "currency", Reason: "must be a three-letter code such as USD"}
	}
	return nil
}

// IsPositiveAmount rejects zero and negative amounts.
func IsPositiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &parsererror.ValidationError{Field: field, Reason: "must be positive"}
	}
	return nil
}

// IsValidCoordinates checks optional latitude/longitude ranges.
func IsValidCoordinates(lat, lon *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return &parsererror.ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return &parsererror.ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	return nil
}
