// Package categorizer assigns categories to transactions. Rule evaluation is
// a pure function (Evaluate); strategies wrap it and other sources of
// categories so the Categorizer can try them in order.
package categorizer

import (
	"context"
	"fmt"

	"fjacquet/spendwise/internal/logging"
)

// Categorizer runs its strategies in order and keeps the first hit.
type Categorizer struct {
	strategies []CategorizationStrategy
	logger     logging.Logger
}

// NewCategorizer builds a Categorizer over the given strategies.
func NewCategorizer(logger logging.Logger, strategies ...CategorizationStrategy) *Categorizer {
	return &Categorizer{strategies: strategies, logger: logger}
}

// Options select which strategies Load installs.
type Options struct {
	UseCategoryColumn bool
	UseRules          bool
}

// Load builds a Categorizer for one user from a snapshot of their categories
// and active rules. The category column strategy runs before rules so an
// explicit column value wins.
func Load(ctx context.Context, src Source, userID string, opts Options, logger logging.Logger) (*Categorizer, error) {
	var strategies []CategorizationStrategy

	if opts.UseCategoryColumn {
		categories, err := src.ListCategories(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		strategies = append(strategies, NewCategoryColumnStrategy(categories, logger))
	}

	if opts.UseRules {
		rules, err := src.ListActiveRules(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load categorization rules: %w", err)
		}
		strategies = append(strategies, NewRuleStrategy(rules, logger))
	}

	return NewCategorizer(logger, strategies...), nil
}

// Categorize returns the first successful strategy result. Strategy errors
// are logged and the next strategy is tried; context cancellation is
// returned immediately.
func (c *Categorizer) Categorize(ctx context.Context, s Subject) (StrategyResult, bool, error) {
	var results StrategyResults
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return StrategyResult{}, false, err
		}

		res, err := strategy.Categorize(ctx, s)
		if err != nil {
			res.Strategy = strategy.Name()
			res.Error = err
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.F(logging.FieldStrategy, strategy.Name()))
		}
		results.Results = append(results.Results, res)

		if res.Found && res.Error == nil {
			break
		}
	}

	best, ok := results.Best()
	c.logger.Debug("Categorization attempted",
		logging.F("summary", results.Summary()))
	return best, ok, nil
}

// Strategies returns the names of the installed strategies in order.
func (c *Categorizer) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}
