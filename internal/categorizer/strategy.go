package categorizer

import "context"

// CategorizationStrategy is one way of assigning a category to a transaction.
// Strategies are tried in order by the Categorizer; the first one that finds
// a category wins.
type CategorizationStrategy interface {
	// Categorize returns a result with Found set when the strategy assigned a
	// category. A miss is not an error.
	Categorize(ctx context.Context, s Subject) (StrategyResult, error)

	// Name identifies the strategy in logs.
	Name() string
}
