// Package columnmapper resolves the header row of an arbitrary CSV export
// into the logical fields the importer needs.
//
// Detection is an ordered keyword heuristic: for each field the candidate
// patterns are tried in order, and for each pattern the first header that
// equals or contains it wins. There is no scoring.
package columnmapper

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/spendwise/internal/parsererror"
)

// Field is a logical transaction column.
type Field string

const (
	FieldDate         Field = "date"
	FieldAmount       Field = "amount"
	FieldDescription  Field = "description"
	FieldType         Field = "type"
	FieldLocationName Field = "location_name"
	FieldLatitude     Field = "latitude"
	FieldLongitude    Field = "longitude"
	FieldCategory     Field = "category"
)

// RequiredFields must all be resolved for an import to proceed.
var RequiredFields = []Field{FieldDate, FieldAmount, FieldDescription}

// Mapping associates a logical field with the literal header text of the file.
type Mapping map[Field]string

// Has reports whether f is mapped to a non-empty header.
func (m Mapping) Has(f Field) bool {
	return m[f] != ""
}

// Missing returns the required fields absent from m, in RequiredFields order.
func (m Mapping) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Strings converts the mapping to plain strings for diagnostics and JSON.
func (m Mapping) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// FromStrings builds a Mapping from a plain map. Keys are matched without
// regard to case or underscores, so "locationName", "LocationName" and
// "location_name" are the same field. Empty values are dropped; an unknown
// key is a *parsererror.ValidationError.
func FromStrings(in map[string]string) (Mapping, error) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Mapping, len(in))
	for _, k := range keys {
		f, ok := ParseField(k)
		if !ok {
			return nil, &parsererror.ValidationError{
				Field:  "columnMapping",
				Reason: fmt.Sprintf("unknown field %q", k),
			}
		}
		if v := in[k]; strings.TrimSpace(v) != "" {
			out[f] = v
		}
	}
	return out, nil
}

// ParseField resolves a field name in snake_case or camelCase.
func ParseField(name string) (Field, bool) {
	want := normalizeFieldName(name)
	for _, r := range rules {
		if normalizeFieldName(string(r.Field)) == want {
			return r.Field, true
		}
	}
	return "", false
}

func normalizeFieldName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "")
}

type fieldRule struct {
	Field     Field
	Patterns  []string
	ExactOnly bool
}

// rules is the full detection table. Pattern order matters.
var rules = []fieldRule{
	{
		Field: FieldDate,
		Patterns: []string{
			"date", "transaction_date", "transactiondate", "trans_date", "posted_date",
			"posting_date", "posted", "booking_date", "value_date", "timestamp", "time",
		},
	},
	{
		Field:    FieldAmount,
		Patterns: []string{"amount", "amt", "value", "sum", "total", "price", "cost"},
	},
	{
		Field: FieldDescription,
		Patterns: []string{
			"description", "merchant", "merchantname", "merchant_name", "vendor",
			"payee", "details", "memo", "narrative",
		},
	},
	{
		Field: FieldType,
		Patterns: []string{
			"type", "transaction_type", "direction", "credit/debit", "debit/credit", "dr/cr", "kind",
		},
	},
	{
		Field:    FieldLocationName,
		Patterns: []string{"location_name", "locationname", "location", "place", "address", "city"},
	},
	{
		Field:     FieldLatitude,
		Patterns:  []string{"latitude", "lat"},
		ExactOnly: true,
	},
	{
		Field:     FieldLongitude,
		Patterns:  []string{"longitude", "lon", "lng", "long"},
		ExactOnly: true,
	},
	{
		Field:    FieldCategory,
		Patterns: []string{"category", "category_name", "categoryname", "tag", "label", "classification"},
	},
}

// Patterns returns a copy of the ordered candidate patterns for f.
func Patterns(f Field) []string {
	for _, r := range rules {
		if r.Field == f {
			return append([]string(nil), r.Patterns...)
		}
	}
	return nil
}

// Detect maps every field it can find in headers. Fields without a match are
// omitted. Detect has no hidden state; the same headers yield the same mapping.
func Detect(headers []string) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	m := make(Mapping)
	for _, r := range rules {
		if idx := match(normalized, r); idx >= 0 {
			m[r.Field] = headers[idx]
		}
	}
	return m
}

func match(normalized []string, r fieldRule) int {
	for _, pattern := range r.Patterns {
		for i, h := range normalized {
			if h == "" {
				continue
			}
			if h == pattern || (!r.ExactOnly && strings.Contains(h, pattern)) {
				return i
			}
		}
	}
	return -1
}

// Resolve returns explicit verbatim when it is non-empty, otherwise the
// detected mapping. Either way the required fields must be present or a
// *parsererror.MappingError is returned with the partial mapping.
func Resolve(headers []string, explicit Mapping) (Mapping, error) {
	m := explicit
	if len(m) == 0 {
		m = Detect(headers)
	}

	if missing := m.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return m, &parsererror.MappingError{
			Detected:  m.Strings(),
			Available: append([]string(nil), headers...),
			Missing:   names,
		}
	}
	return m, nil
}
