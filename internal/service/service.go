// Package service implements the user-facing operations on accounts,
// categories, rules and transactions. Every call is scoped to a user ID and
// ownership is checked before anything is read or written.
package service

import (
	"context"
	"time"

	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/storage"
)

// AccountStore is the persistence used by AccountService.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, userID, id string) (models.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]models.Account, error)
	UpdateAccount(ctx context.Context, a models.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error
}

// CategoryStore is the persistence used by CategoryService.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, userID, id string) (models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
}

// RuleStore is the persistence used by RuleService.
type RuleStore interface {
	GetCategory(ctx context.Context, userID, id string) (models.Category, error)
	CreateRule(ctx context.Context, r *models.CategorizationRule) error
	GetRule(ctx context.Context, userID, id string) (models.CategorizationRule, error)
	ListRules(ctx context.Context, userID string) ([]models.CategorizationRule, error)
	ListActiveRules(ctx context.Context, userID string) ([]models.CategorizationRule, error)
	UpdateRule(ctx context.Context, r *models.CategorizationRule) error
	DeleteRule(ctx context.Context, userID, id string) error
}

// TransactionStore is the persistence used by TransactionService.
type TransactionStore interface {
	GetAccount(ctx context.Context, userID, id string) (models.Account, error)
	GetCategory(ctx context.Context, userID, id string) (models.Category, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]models.Transaction, int, error)
	UpdateTransaction(ctx context.Context, userID, id string, mutate func(*models.Transaction) error) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// Store is everything the services need; *storage.Store satisfies it.
type Store interface {
	AccountStore
	CategoryStore
	RuleStore
	TransactionStore
}

var _ Store = (*storage.Store)(nil)

// Clock returns the current time; replaced in tests.
type Clock func() time.Time

func defaultClock() time.Time { return time.Now().UTC() }
