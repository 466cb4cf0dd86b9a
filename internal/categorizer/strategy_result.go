package categorizer

import (
	"fmt"
	"strings"
)

// StrategyResult is the outcome of a single strategy attempt.
type StrategyResult struct {
	Strategy   string
	CategoryID string
	// RuleID is set when the category came from a categorization rule.
	RuleID string
	Found  bool
	Error  error
}

// StrategyResults aggregates the attempts made for one transaction.
type StrategyResults struct {
	Results []StrategyResult
}

// Best returns the first successful result.
func (sr StrategyResults) Best() (StrategyResult, bool) {
	for _, r := range sr.Results {
		if r.Found && r.Error == nil {
			return r, true
		}
	}
	return StrategyResult{}, false
}

// Errors returns all errors encountered, prefixed with their strategy.
func (sr StrategyResults) Errors() []error {
	var errs []error
	for _, r := range sr.Results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s strategy: %w", r.Strategy, r.Error))
		}
	}
	return errs
}

// Summary renders the attempts as "Name:status, ...".
func (sr StrategyResults) Summary() string {
	parts := make([]string, 0, len(sr.Results))
	for _, r := range sr.Results {
		status := "failed"
		if r.Found {
			status = "success"
		} else if r.Error == nil {
			status = "no_match"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", r.Strategy, status))
	}
	return strings.Join(parts, ", ")
}
