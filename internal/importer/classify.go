package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"fjacquet/spendwise/internal/columnmapper"
	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Row error reasons shown to users.
const (
	ReasonMissingFields = "missing required fields"
	ReasonInvalidDate   = "invalid date format"
	ReasonInvalidAmount = "invalid amount"
)

// ClassifyOptions controls direction inference for a row.
type ClassifyOptions struct {
	// DefaultDirection applies when neither the type column nor the amount
	// sign decide. Empty means DEBIT.
	DefaultDirection models.Direction

	// TypeColumnAuthoritative makes a non-empty type column final: values
	// without a known keyword take DefaultDirection instead of the amount sign.
	TypeColumnAuthoritative bool
}

func (o ClassifyOptions) defaultDirection() models.Direction {
	if o.DefaultDirection.IsValid() {
		return o.DefaultDirection
	}
	return models.Debit
}

var (
	amountJunk    = regexp.MustCompile(`[^0-9.\-]`)
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
)

// ClassifyRow turns one CSV row into a candidate transaction. row is 1-based
// and only used in the returned *parsererror.RowError.
func ClassifyRow(rowNum int, row map[string]string, m columnmapper.Mapping, opts ClassifyOptions) (models.Candidate, error) {
	rawDate := strings.TrimSpace(row[m[columnmapper.FieldDate]])
	rawAmount := strings.TrimSpace(row[m[columnmapper.FieldAmount]])
	description := strings.TrimSpace(row[m[columnmapper.FieldDescription]])

	if rawDate == "" || rawAmount == "" || description == "" {
		return models.Candidate{}, &parsererror.RowError{Row: rowNum, Reason: ReasonMissingFields}
	}

	date, _, err := dateutils.ParseDate(rawDate)
	if err != nil {
		return models.Candidate{}, &parsererror.RowError{Row: rowNum, Reason: ReasonInvalidDate}
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return models.Candidate{}, &parsererror.RowError{Row: rowNum, Reason: ReasonInvalidAmount}
	}

	c := models.Candidate{
		Amount:      amount.Abs(),
		Direction:   ResolveDirection(row[m[columnmapper.FieldType]], m.Has(columnmapper.FieldType), rawAmount, opts),
		Date:        date,
		Description: description,
	}

	if m.Has(columnmapper.FieldLatitude) {
		c.Latitude = parseCoordinate(row[m[columnmapper.FieldLatitude]], 90)
	}
	if m.Has(columnmapper.FieldLongitude) {
		c.Longitude = parseCoordinate(row[m[columnmapper.FieldLongitude]], 180)
	}
	if m.Has(columnmapper.FieldLocationName) {
		if name := strings.TrimSpace(row[m[columnmapper.FieldLocationName]]); name != "" {
			c.LocationName = &name
		}
	}
	if m.Has(columnmapper.FieldCategory) {
		c.CategoryHint = strings.TrimSpace(row[m[columnmapper.FieldCategory]])
	}
	return c, nil
}

// ParseAmount strips everything but digits, '.' and '-' and parses the
// longest leading number of the rest, so "45.50-" reads 45.5 and
// "1.234.567,89" reads 1.234. The result keeps its sign.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := amountJunk.ReplaceAllString(raw, "")
	if cleaned == "" {
		return decimal.Zero, &parsererror.ParseError{Component: "importer", Field: "amount", Value: raw, Err: errEmptyAmount}
	}
	num := strings.TrimSuffix(leadingNumber.FindString(cleaned), ".")
	if num == "" {
		return decimal.Zero, &parsererror.ParseError{Component: "importer", Field: "amount", Value: raw, Err: errNoNumber}
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, &parsererror.ParseError{Component: "importer", Field: "amount", Value: raw, Err: err}
	}
	return d, nil
}

// ResolveDirection applies, in order: a type column keyword, the sign of
// the raw amount, then the default direction.
func ResolveDirection(typeValue string, typeMapped bool, rawAmount string, opts ClassifyOptions) models.Direction {
	t := strings.ToLower(strings.TrimSpace(typeValue))
	if typeMapped && t != "" {
		switch {
		case strings.Contains(t, "credit"), strings.Contains(t, "deposit"):
			return models.Credit
		case strings.Contains(t, "debit"), strings.Contains(t, "withdrawal"):
			return models.Debit
		}
		if opts.TypeColumnAuthoritative {
			return opts.defaultDirection()
		}
		if sign, ok := rawSign(rawAmount); ok && sign != 0 {
			if sign < 0 {
				return models.Debit
			}
			return models.Credit
		}
		return opts.defaultDirection()
	}

	if sign, ok := rawSign(rawAmount); ok && sign < 0 {
		return models.Debit
	}
	return opts.defaultDirection()
}

// rawSign reads the leading number of the unstripped amount, so "(5.00)" or
// "$-5" carry no sign while "-120.00 USD" does.
func rawSign(raw string) (int, bool) {
	num := leadingNumber.FindString(strings.TrimSpace(raw))
	if num == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(num, "+"))
	if err != nil {
		return 0, false
	}
	return d.Sign(), true
}

func parseCoordinate(raw string, limit float64) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return nil
	}
	return &v
}
