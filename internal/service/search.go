package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/storage"
)

// Search limits.
const (
	MinSearchLength        = 2
	SearchTransactionLimit = 5
	SearchAccountLimit     = 3
	SearchCategoryLimit    = 3
)

// SearchStore is the persistence used by SearchService.
type SearchStore interface {
	ListAccounts(ctx context.Context, userID string) ([]models.Account, error)
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]models.Transaction, int, error)
}

// SearchResults holds the matches of one query. The lists are never nil.
type SearchResults struct {
	Transactions []models.Transaction `json:"transactions"`
	Accounts     []models.Account     `json:"accounts"`
	Categories   []models.Category    `json:"categories"`
}

// SearchService finds a user's transactions, accounts and categories by text.
type SearchService struct {
	store  SearchStore
	logger logging.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(store SearchStore, logger logging.Logger) *SearchService {
	return &SearchService{store: store, logger: logger}
}

// Search matches query case-insensitively against transaction descriptions
// (newest first), account names and category names (by name). Queries
// shorter than MinSearchLength after trimming return empty lists.
func (s *SearchService) Search(ctx context.Context, userID, query string) (SearchResults, error) {
	res := SearchResults{
		Transactions: []models.Transaction{},
		Accounts:     []models.Account{},
		Categories:   []models.Category{},
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return res, nil
	}

	txns, _, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{
		Description: query,
		Limit:       SearchTransactionLimit,
	})
	if err != nil {
		return res, err
	}
	res.Transactions = append(res.Transactions, txns...)

	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return res, err
	}
	for _, a := range accounts {
		if len(res.Accounts) == SearchAccountLimit {
			break
		}
		if containsFold(a.Name, query) {
			res.Accounts = append(res.Accounts, a)
		}
	}

	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return res, err
	}
	for _, c := range categories {
		if len(res.Categories) == SearchCategoryLimit {
			break
		}
		if containsFold(c.Name, query) {
			res.Categories = append(res.Categories, c)
		}
	}

	s.logger.Debug("Search completed",
		logging.F(logging.FieldUserID, userID),
		logging.F("query", query),
		logging.F(logging.FieldCount, len(res.Transactions)+len(res.Accounts)+len(res.Categories)))
	return res, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
