package categorizer

import (
	"context"
	"strings"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
)

// CategoryColumnStrategy resolves the category column of an imported row
// against the user's category names, case-insensitively.
type CategoryColumnStrategy struct {
	byName map[string]string
	logger logging.Logger
}

// NewCategoryColumnStrategy indexes categories by name. When two categories
// share a name the first one wins.
func NewCategoryColumnStrategy(categories []models.Category, logger logging.Logger) *CategoryColumnStrategy {
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		key := normalizeName(c.Name)
		if _, exists := byName[key]; !exists {
			byName[key] = c.ID
		}
	}
	return &CategoryColumnStrategy{byName: byName, logger: logger}
}

func (s *CategoryColumnStrategy) Name() string {
	return "CategoryColumn"
}

func (s *CategoryColumnStrategy) Categorize(_ context.Context, subject Subject) (StrategyResult, error) {
	result := StrategyResult{Strategy: s.Name()}
	hint := normalizeName(subject.CategoryHint)
	if hint == "" {
		return result, nil
	}

	id, ok := s.byName[hint]
	if !ok {
		s.logger.Debug("Category column value matches no category",
			logging.F(logging.FieldStrategy, s.Name()),
			logging.F("category", subject.CategoryHint))
		return result, nil
	}

	result.CategoryID = id
	result.Found = true
	return result, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
