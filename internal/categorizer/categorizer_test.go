package categorizer

import (
	"context"
	"errors"
	"testing"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rules      []models.CategorizationRule
	categories []models.Category
	rulesErr   error
}

func (f *fakeSource) ListActiveRules(_ context.Context, _ string) ([]models.CategorizationRule, error) {
	return f.rules, f.rulesErr
}

func (f *fakeSource) ListCategories(_ context.Context, _ string) ([]models.Category, error) {
	return f.categories, nil
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "Failing" }

func (failingStrategy) Categorize(context.Context, Subject) (StrategyResult, error) {
	return StrategyResult{}, errors.New("backend down")
}

func TestCategorizer_StrategyOrchestration(t *testing.T) {
	src := &fakeSource{
		categories: []models.Category{
			{ID: "cat-groceries", Name: "Groceries"},
			{ID: "cat-coffee", Name: "Coffee"},
		},
		rules: []models.CategorizationRule{
			{ID: "r1", CategoryID: "cat-coffee", MatchField: models.MatchDescription, MatchPattern: "starbucks", IsActive: true},
		},
	}

	tests := []struct {
		name         string
		opts         Options
		subject      Subject
		wantFound    bool
		wantCategory string
		wantStrategy string
		wantRule     string
	}{
		{
			name:         "category column wins over rules",
			opts:         Options{UseCategoryColumn: true, UseRules: true},
			subject:      Subject{Description: "Starbucks", CategoryHint: " groceries "},
			wantFound:    true,
			wantCategory: "cat-groceries",
			wantStrategy: "CategoryColumn",
		},
		{
			name:         "unknown column value falls through to rules",
			opts:         Options{UseCategoryColumn: true, UseRules: true},
			subject:      Subject{Description: "Starbucks", CategoryHint: "Travel"},
			wantFound:    true,
			wantCategory: "cat-coffee",
			wantStrategy: "Rule",
			wantRule:     "r1",
		},
		{
			name:      "rules disabled",
			opts:      Options{UseCategoryColumn: true},
			subject:   Subject{Description: "Starbucks"},
			wantFound: false,
		},
		{
			name:      "nothing matches",
			opts:      Options{UseCategoryColumn: true, UseRules: true},
			subject:   Subject{Description: "Landlord"},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(context.Background(), src, "u1", tt.opts, logging.NewMockLogger())
			require.NoError(t, err)

			res, found, err := c.Categorize(context.Background(), tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantCategory, res.CategoryID)
				assert.Equal(t, tt.wantStrategy, res.Strategy)
				assert.Equal(t, tt.wantRule, res.RuleID)
			}
		})
	}
}

func TestLoad_PropagatesSourceErrors(t *testing.T) {
	src := &fakeSource{rulesErr: errors.New("db closed")}
	_, err := Load(context.Background(), src, "u1", Options{UseRules: true}, logging.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db closed")
}

func TestCategorizer_StrategyErrorIsLoggedAndSkipped(t *testing.T) {
	logger := logging.NewMockLogger()
	rules := NewRuleStrategy([]models.CategorizationRule{
		{ID: "r1", CategoryID: "cat", MatchField: models.MatchDescription, MatchPattern: "rent", IsActive: true},
	}, logger)
	c := NewCategorizer(logger, failingStrategy{}, rules)

	res, found, err := c.Categorize(context.Background(), Subject{Description: "Monthly rent"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cat", res.CategoryID)
	assert.True(t, logger.HasEntry("WARN", "Categorization strategy failed"))
	assert.Equal(t, []string{"Failing", "Rule"}, c.Strategies())
}

func TestCategorizer_CancelledContext(t *testing.T) {
	c := NewCategorizer(logging.NewMockLogger(), NewRuleStrategy(nil, logging.NewMockLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Categorize(ctx, Subject{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStrategyResults_Summary(t *testing.T) {
	results := StrategyResults{Results: []StrategyResult{
		{Strategy: "CategoryColumn"},
		{Strategy: "Failing", Error: errors.New("x")},
		{Strategy: "Rule", Found: true, CategoryID: "c"},
	}}
	assert.Equal(t, "CategoryColumn:no_match, Failing:failed, Rule:success", results.Summary())
	require.Len(t, results.Errors(), 1)

	best, ok := results.Best()
	assert.True(t, ok)
	assert.Equal(t, "Rule", best.Strategy)
}
