package categorizer

import (
	"context"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
)

// RuleStrategy assigns the category of the highest-priority matching rule.
type RuleStrategy struct {
	rules  []models.CategorizationRule
	logger logging.Logger
}

// NewRuleStrategy snapshots rules in evaluation order.
func NewRuleStrategy(rules []models.CategorizationRule, logger logging.Logger) *RuleStrategy {
	return &RuleStrategy{
		rules:  SortRules(rules),
		logger: logger,
	}
}

func (s *RuleStrategy) Name() string {
	return "Rule"
}

func (s *RuleStrategy) Categorize(ctx context.Context, subject Subject) (StrategyResult, error) {
	result := StrategyResult{Strategy: s.Name()}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	rule, ok := Evaluate(s.rules, subject)
	if !ok {
		return result, nil
	}

	s.logger.Debug("Transaction matched categorization rule",
		logging.F(logging.FieldStrategy, s.Name()),
		logging.F(logging.FieldRuleID, rule.ID),
		logging.F(logging.FieldCategoryID, rule.CategoryID),
		logging.F("match_field", string(rule.MatchField)))

	result.CategoryID = rule.CategoryID
	result.RuleID = rule.ID
	result.Found = true
	return result, nil
}
