package categorizer

import (
	"testing"
	"time"

	"fjacquet/spendwise/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestEvaluate_PriorityWinsOverSpecificity(t *testing.T) {
	rules := []models.CategorizationRule{
		{
			ID: "small", CategoryID: "misc", MatchField: models.MatchAmountRange,
			MinAmount: decPtr("0"), MaxAmount: decPtr("20"), Priority: 5, IsActive: true,
			CreatedAt: baseTime,
		},
		{
			ID: "coffee", CategoryID: "coffee", MatchField: models.MatchDescription,
			MatchPattern: "starbucks", Priority: 10, IsActive: true,
			CreatedAt: baseTime.Add(time.Hour),
		},
	}

	rule, ok := Evaluate(rules, Subject{Description: "Starbucks Coffee", Amount: dec("5.00")})
	require.True(t, ok)
	assert.Equal(t, "coffee", rule.CategoryID)

	// input untouched
	assert.Equal(t, "small", rules[0].ID)
}

func TestEvaluate_Ordering(t *testing.T) {
	tests := []struct {
		name   string
		rules  []models.CategorizationRule
		wantID string
		wantOK bool
	}{
		{
			name: "equal priority oldest first",
			rules: []models.CategorizationRule{
				{ID: "newer", MatchField: models.MatchDescription, MatchPattern: "shop", IsActive: true, CreatedAt: baseTime.Add(time.Minute)},
				{ID: "older", MatchField: models.MatchDescription, MatchPattern: "shop", IsActive: true, CreatedAt: baseTime},
			},
			wantID: "older",
			wantOK: true,
		},
		{
			name: "equal priority and time keeps input order",
			rules: []models.CategorizationRule{
				{ID: "first", MatchField: models.MatchDescription, MatchPattern: "shop", IsActive: true, CreatedAt: baseTime},
				{ID: "second", MatchField: models.MatchDescription, MatchPattern: "shop", IsActive: true, CreatedAt: baseTime},
			},
			wantID: "first",
			wantOK: true,
		},
		{
			name: "inactive rules skipped",
			rules: []models.CategorizationRule{
				{ID: "off", MatchField: models.MatchDescription, MatchPattern: "shop", Priority: 100, IsActive: false},
				{ID: "on", MatchField: models.MatchDescription, MatchPattern: "shop", IsActive: true},
			},
			wantID: "on",
			wantOK: true,
		},
		{
			name: "no match",
			rules: []models.CategorizationRule{
				{ID: "rent", MatchField: models.MatchDescription, MatchPattern: "landlord", IsActive: true},
			},
			wantOK: false,
		},
		{
			name:   "empty rule set",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := Evaluate(tt.rules, Subject{Description: "Coffee Shop", Amount: dec("1")})
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, rule.ID)
			}
		})
	}
}

func TestMatches_Description(t *testing.T) {
	tests := []struct {
		pattern     string
		description string
		want        bool
	}{
		{pattern: "starbucks", description: "STARBUCKS #123", want: true},
		{pattern: "uber, lyft", description: "Lyft ride", want: true},
		{pattern: " , ,uber", description: "UBER EATS", want: true},
		{pattern: "", description: "anything", want: false},
		{pattern: ",,", description: "anything", want: false},
		{pattern: "netflix", description: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.description, func(t *testing.T) {
			r := models.CategorizationRule{MatchField: models.MatchDescription, MatchPattern: tt.pattern}
			assert.Equal(t, tt.want, Matches(r, Subject{Description: tt.description}))
		})
	}
}

func TestMatches_Amount(t *testing.T) {
	tests := []struct {
		name   string
		rule   models.CategorizationRule
		amount string
		want   bool
	}{
		{name: "explicit bounds inclusive low", rule: models.CategorizationRule{MinAmount: decPtr("10"), MaxAmount: decPtr("20")}, amount: "10", want: true},
		{name: "explicit bounds inclusive high", rule: models.CategorizationRule{MinAmount: decPtr("10"), MaxAmount: decPtr("20")}, amount: "20", want: true},
		{name: "explicit bounds outside", rule: models.CategorizationRule{MinAmount: decPtr("10"), MaxAmount: decPtr("20")}, amount: "20.01", want: false},
		{name: "open max", rule: models.CategorizationRule{MinAmount: decPtr("100")}, amount: "5000", want: true},
		{name: "open min", rule: models.CategorizationRule{MaxAmount: decPtr("5")}, amount: "0.5", want: true},
		{name: "explicit wins over pattern", rule: models.CategorizationRule{MatchPattern: "500-600", MaxAmount: decPtr("5")}, amount: "3", want: true},
		{name: "pattern dash range", rule: models.CategorizationRule{MatchPattern: "10-20"}, amount: "15", want: true},
		{name: "pattern dotted range", rule: models.CategorizationRule{MatchPattern: "10..20"}, amount: "25", want: false},
		{name: "pattern gte", rule: models.CategorizationRule{MatchPattern: ">=100"}, amount: "100", want: true},
		{name: "pattern gt excludes bound", rule: models.CategorizationRule{MatchPattern: ">100"}, amount: "100", want: false},
		{name: "pattern lt", rule: models.CategorizationRule{MatchPattern: "< 20"}, amount: "19.99", want: true},
		{name: "pattern lte", rule: models.CategorizationRule{MatchPattern: "<=20"}, amount: "20.01", want: false},
		{name: "pattern exact", rule: models.CategorizationRule{MatchPattern: "$15.00"}, amount: "15", want: true},
		{name: "pattern with thousands separator", rule: models.CategorizationRule{MatchPattern: ">1,000"}, amount: "1500", want: true},
		{name: "unreadable pattern never matches", rule: models.CategorizationRule{MatchPattern: "lots"}, amount: "15", want: false},
		{name: "no bounds matches everything", rule: models.CategorizationRule{}, amount: "999", want: true},
		{name: "negative amount uses magnitude", rule: models.CategorizationRule{MatchPattern: "10-20"}, amount: "-15", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, field := range []models.MatchField{models.MatchAmount, models.MatchAmountRange} {
				r := tt.rule
				r.MatchField = field
				assert.Equal(t, tt.want, Matches(r, Subject{Amount: dec(tt.amount)}), "field %s", field)
			}
		})
	}
}

func TestMatches_Date(t *testing.T) {
	wed := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) // Wednesday
	sat := time.Date(2025, 1, 18, 9, 0, 0, 0, time.UTC)
	endOfJan := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		pattern string
		date    time.Time
		want    bool
	}{
		{pattern: "wed", date: wed, want: true},
		{pattern: "Wednesday", date: wed, want: true},
		{pattern: "mon,tue", date: wed, want: false},
		{pattern: "weekday", date: wed, want: true},
		{pattern: "weekend", date: sat, want: true},
		{pattern: "weekend", date: wed, want: false},
		{pattern: "15", date: wed, want: true},
		{pattern: "1-5", date: wed, want: false},
		{pattern: "10-20", date: wed, want: true},
		{pattern: "last", date: endOfJan, want: true},
		{pattern: "last", date: wed, want: false},
		{pattern: "january", date: wed, want: true},
		{pattern: "feb", date: wed, want: false},
		{pattern: "2025-01-15", date: wed, want: true},
		{pattern: "2025-01-16", date: wed, want: false},
		{pattern: "someday, 15", date: wed, want: true},
		{pattern: "someday", date: wed, want: false},
		{pattern: "15", date: time.Time{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			r := models.CategorizationRule{MatchField: models.MatchDate, MatchPattern: tt.pattern}
			assert.Equal(t, tt.want, Matches(r, Subject{Date: tt.date}))
		})
	}
}

func TestMatches_UnknownField(t *testing.T) {
	r := models.CategorizationRule{MatchField: "PAYEE", MatchPattern: "x"}
	assert.False(t, Matches(r, Subject{Description: "x"}))
}

func TestSplitPattern(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitPattern(" A , ,B C,"))
	assert.Nil(t, SplitPattern(""))
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    models.CategorizationRule
		wantErr bool
	}{
		{name: "description ok", rule: models.CategorizationRule{MatchField: models.MatchDescription, MatchPattern: "uber,lyft"}},
		{name: "description empty", rule: models.CategorizationRule{MatchField: models.MatchDescription, MatchPattern: " , "}, wantErr: true},
		{name: "amount bounds ok", rule: models.CategorizationRule{MatchField: models.MatchAmount, MinAmount: decPtr("1"), MaxAmount: decPtr("2")}},
		{name: "amount bounds inverted", rule: models.CategorizationRule{MatchField: models.MatchAmountRange, MinAmount: decPtr("5"), MaxAmount: decPtr("2")}, wantErr: true},
		{name: "amount pattern ok", rule: models.CategorizationRule{MatchField: models.MatchAmountRange, MatchPattern: ">=50"}},
		{name: "amount range pattern ok", rule: models.CategorizationRule{MatchField: models.MatchAmountRange, MatchPattern: "10-20"}},
		{name: "amount range degenerate", rule: models.CategorizationRule{MatchField: models.MatchAmountRange, MatchPattern: "15..15"}},
		{name: "amount range pattern inverted", rule: models.CategorizationRule{MatchField: models.MatchAmountRange, MatchPattern: "20-10"}, wantErr: true},
		{name: "amount range inverted with to", rule: models.CategorizationRule{MatchField: models.MatchAmount, MatchPattern: "100 to 5.5"}, wantErr: true},
		{name: "amount pattern bad", rule: models.CategorizationRule{MatchField: models.MatchAmount, MatchPattern: "big"}, wantErr: true},
		{name: "date ok", rule: models.CategorizationRule{MatchField: models.MatchDate, MatchPattern: "weekend"}},
		{name: "date empty", rule: models.CategorizationRule{MatchField: models.MatchDate}, wantErr: true},
		{name: "unknown field", rule: models.CategorizationRule{MatchField: "PAYEE"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
