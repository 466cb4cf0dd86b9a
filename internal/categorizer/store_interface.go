package categorizer

import (
	"context"

	"fjacquet/spendwise/internal/models"
)

// Source supplies the per-user data the strategies need.
type Source interface {
	ListActiveRules(ctx context.Context, userID string) ([]models.CategorizationRule, error)
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
}
