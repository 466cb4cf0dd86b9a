package categorizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/models"

	"github.com/shopspring/decimal"
)

// Subject carries the transaction fields rules are evaluated against.
type Subject struct {
	UserID      string
	Description string
	Amount      decimal.Decimal
	Date        time.Time

	// CategoryHint is the raw category column value of an imported row.
	CategoryHint string
}

// Evaluate returns the first active rule matching s, after ordering rules by
// priority descending and creation time ascending. The input slice is not
// modified.
func Evaluate(rules []models.CategorizationRule, s Subject) (models.CategorizationRule, bool) {
	for _, r := range SortRules(rules) {
		if !r.IsActive {
			continue
		}
		if Matches(r, s) {
			return r, true
		}
	}
	return models.CategorizationRule{}, false
}

// SortRules returns a copy of rules in evaluation order. Rules with equal
// priority and creation time keep their input order.
func SortRules(rules []models.CategorizationRule) []models.CategorizationRule {
	sorted := make([]models.CategorizationRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// Matches reports whether a single rule's condition holds for s, ignoring
// the active flag.
func Matches(r models.CategorizationRule, s Subject) bool {
	switch r.MatchField {
	case models.MatchDescription:
		return matchDescription(r.MatchPattern, s.Description)
	case models.MatchAmount, models.MatchAmountRange:
		b, ok := ruleBounds(r)
		if !ok {
			return false
		}
		return b.contains(s.Amount.Abs())
	case models.MatchDate:
		return matchDate(r.MatchPattern, s.Date)
	default:
		return false
	}
}

// SplitPattern splits a comma-separated pattern into trimmed, lower-cased,
// non-empty parts.
func SplitPattern(pattern string) []string {
	var parts []string
	for _, p := range strings.Split(pattern, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func matchDescription(pattern, description string) bool {
	desc := strings.ToLower(description)
	for _, part := range SplitPattern(pattern) {
		if strings.Contains(desc, part) {
			return true
		}
	}
	return false
}

type bounds struct {
	min, max                   *decimal.Decimal
	minExclusive, maxExclusive bool
}

func (b bounds) contains(v decimal.Decimal) bool {
	if b.min != nil {
		if b.minExclusive && !v.GreaterThan(*b.min) {
			return false
		}
		if v.LessThan(*b.min) {
			return false
		}
	}
	if b.max != nil {
		if b.maxExclusive && !v.LessThan(*b.max) {
			return false
		}
		if v.GreaterThan(*b.max) {
			return false
		}
	}
	return true
}

// ruleBounds prefers the explicit MinAmount/MaxAmount and falls back to
// bounds parsed from the pattern. ok is false when the pattern is present
// but unreadable.
func ruleBounds(r models.CategorizationRule) (bounds, bool) {
	if r.MinAmount != nil || r.MaxAmount != nil {
		return bounds{min: r.MinAmount, max: r.MaxAmount}, true
	}
	return parseAmountPattern(r.MatchPattern)
}

var (
	rangePattern      = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:-|\.\.|to)(\d+(?:\.\d+)?)$`)
	comparatorPattern = regexp.MustCompile(`^(>=|<=|>|<|=)?(\d+(?:\.\d+)?)$`)
	amountNoise       = strings.NewReplacer(" ", "", "$", "", "€", "", "£", "", ",", "")
)

// parseAmountPattern reads "10-20", "10..20", ">=10", "<=20", ">10", "<20"
// or an exact "15". An empty pattern is unbounded on both sides.
func parseAmountPattern(pattern string) (bounds, bool) {
	p := amountNoise.Replace(strings.ToLower(strings.TrimSpace(pattern)))
	if p == "" {
		return bounds{}, true
	}

	if m := rangePattern.FindStringSubmatch(p); m != nil {
		lo := decimal.RequireFromString(m[1])
		hi := decimal.RequireFromString(m[2])
		return bounds{min: &lo, max: &hi}, true
	}

	m := comparatorPattern.FindStringSubmatch(p)
	if m == nil {
		return bounds{}, false
	}
	v := decimal.RequireFromString(m[2])
	switch m[1] {
	case ">=":
		return bounds{min: &v}, true
	case ">":
		return bounds{min: &v, minExclusive: true}, true
	case "<=":
		return bounds{max: &v}, true
	case "<":
		return bounds{max: &v, maxExclusive: true}, true
	default:
		return bounds{min: &v, max: &v}, true
	}
}

var dayRangePattern = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})$`)

// matchDate evaluates comma-separated date terms; any matching term wins.
// Unknown terms never match.
func matchDate(pattern string, date time.Time) bool {
	if date.IsZero() {
		return false
	}
	for _, term := range SplitPattern(pattern) {
		if matchDateTerm(term, date) {
			return true
		}
	}
	return false
}

func matchDateTerm(term string, date time.Time) bool {
	switch term {
	case "weekday", "weekdays":
		return !dateutils.IsWeekend(date)
	case "weekend", "weekends":
		return dateutils.IsWeekend(date)
	case "last", "last day", "eom":
		return dateutils.IsLastDayOfMonth(date)
	}

	if d, ok := dateutils.ParseWeekday(term); ok {
		return date.Weekday() == d
	}
	if m, ok := dateutils.ParseMonth(term); ok {
		return date.Month() == m
	}
	if day, err := strconv.Atoi(term); err == nil {
		return date.Day() == day
	}
	if m := dayRangePattern.FindStringSubmatch(term); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return date.Day() >= lo && date.Day() <= hi
	}
	if t, err := time.Parse(dateutils.DateLayoutISO, term); err == nil {
		return dateutils.SameDay(t, date)
	}
	return false
}

// ValidateRule checks that a rule's pattern can be evaluated for its match
// field. It does not look at ownership or the category.
func ValidateRule(r models.CategorizationRule) error {
	switch r.MatchField {
	case models.MatchDescription:
		if len(SplitPattern(r.MatchPattern)) == 0 {
			return fmt.Errorf("description rules need at least one pattern")
		}
	case models.MatchAmount, models.MatchAmountRange:
		if r.MinAmount != nil && r.MaxAmount != nil && r.MinAmount.GreaterThan(*r.MaxAmount) {
			return fmt.Errorf("minimum amount %s is greater than maximum %s", r.MinAmount, r.MaxAmount)
		}
		if r.MinAmount == nil && r.MaxAmount == nil {
			b, ok := parseAmountPattern(r.MatchPattern)
			if !ok {
				return fmt.Errorf("unrecognised amount pattern %q", r.MatchPattern)
			}
			if b.min != nil && b.max != nil && b.min.GreaterThan(*b.max) {
				return fmt.Errorf("amount range %q has its lower bound above the upper bound", r.MatchPattern)
			}
		}
	case models.MatchDate:
		if len(SplitPattern(r.MatchPattern)) == 0 {
			return fmt.Errorf("date rules need at least one pattern")
		}
	default:
		return fmt.Errorf("unknown match field %q", r.MatchField)
	}
	return nil
}
