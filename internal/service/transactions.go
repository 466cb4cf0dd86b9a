package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"
	"fjacquet/spendwise/internal/storage"
	"fjacquet/spendwise/internal/validation"

	"github.com/shopspring/decimal"
)

// Pagination defaults for TransactionService.List.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// TransactionInput creates a transaction. Date defaults to now.
type TransactionInput struct {
	AccountID          string
	Amount             decimal.Decimal
	Direction          string
	Date               *time.Time
	Description        string
	CategoryID         *string
	Latitude           *float64
	Longitude          *float64
	LocationName       *string
	IsRecurring        bool
	RecurringFrequency *string
}

// TransactionPatch updates the non-nil fields of a transaction. A CategoryID
// pointing at an empty string removes the category.
type TransactionPatch struct {
	Amount             *decimal.Decimal
	Direction          *string
	Date               *time.Time
	Description        *string
	CategoryID         *string
	Latitude           *float64
	Longitude          *float64
	LocationName       *string
	IsRecurring        *bool
	RecurringFrequency *string
}

// TransactionQuery filters and paginates List.
type TransactionQuery struct {
	AccountID  string
	Direction  string
	CategoryID string
	From, To   time.Time
	Page       int
	Limit      int
}

// TransactionPage is one page of List results.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
	TotalPages   int                  `json:"totalPages"`
}

// TransactionService manages transactions and keeps account balances in
// step with them.
type TransactionService struct {
	store  TransactionStore
	logger logging.Logger
	now    Clock
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(store TransactionStore, logger logging.Logger) *TransactionService {
	return &TransactionService{store: store, logger: logger, now: defaultClock}
}

func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (models.Transaction, error) {
	dir, err := models.ParseDirection(in.Direction)
	if err != nil {
		return models.Transaction{}, &parsererror.ValidationError{Field: "type", Reason: err.Error()}
	}
	tx := models.Transaction{
		AccountID:    strings.TrimSpace(in.AccountID),
		Amount:       in.Amount,
		Direction:    dir,
		Date:         s.now(),
		Description:  strings.TrimSpace(in.Description),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		LocationName: in.LocationName,
		IsRecurring:  in.IsRecurring,
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	if in.CategoryID != nil && *in.CategoryID != "" {
		cat := *in.CategoryID
		tx.CategoryID = &cat
	}
	if in.RecurringFrequency != nil && *in.RecurringFrequency != "" {
		freq, err := models.ParseFrequency(*in.RecurringFrequency)
		if err != nil {
			return models.Transaction{}, &parsererror.ValidationError{Field: "recurringFrequency", Reason: err.Error()}
		}
		tx.RecurringFrequency = &freq
	}
	if err := validateTransaction(tx); err != nil {
		return models.Transaction{}, err
	}
	if tx.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, *tx.CategoryID); err != nil {
			return models.Transaction{}, err
		}
	}
	if _, err := s.store.GetAccount(ctx, userID, tx.AccountID); err != nil {
		return models.Transaction{}, fmt.Errorf("account %s: %w", tx.AccountID, err)
	}

	if err := s.store.CreateTransaction(ctx, &tx); err != nil {
		return models.Transaction{}, err
	}
	s.logger.Info("Transaction created",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldAccountID, tx.AccountID),
		logging.F(logging.FieldTxnID, tx.ID),
		logging.F(logging.FieldDirection, tx.Direction.String()))
	return tx, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (models.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// List returns one page of the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string, q TransactionQuery) (TransactionPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	f := storage.TransactionFilter{
		AccountID:  q.AccountID,
		CategoryID: q.CategoryID,
		From:       q.From,
		To:         q.To,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	if q.Direction != "" {
		dir, err := models.ParseDirection(q.Direction)
		if err != nil {
			return TransactionPage{}, &parsererror.ValidationError{Field: "type", Reason: err.Error()}
		}
		f.Direction = dir
	}

	txns, total, err := s.store.ListTransactions(ctx, userID, f)
	if err != nil {
		return TransactionPage{}, err
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return TransactionPage{
		Transactions: txns,
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   (total + limit - 1) / limit,
	}, nil
}

// Update applies p and moves the account balance by the difference between
// the new and the old signed amount.
func (s *TransactionService) Update(ctx context.Context, userID, id string, p TransactionPatch) (models.Transaction, error) {
	var (
		dir  models.Direction
		freq *models.Frequency
	)
	if p.Direction != nil {
		d, err := models.ParseDirection(*p.Direction)
		if err != nil {
			return models.Transaction{}, &parsererror.ValidationError{Field: "type", Reason: err.Error()}
		}
		dir = d
	}
	if p.RecurringFrequency != nil && *p.RecurringFrequency != "" {
		f, err := models.ParseFrequency(*p.RecurringFrequency)
		if err != nil {
			return models.Transaction{}, &parsererror.ValidationError{Field: "recurringFrequency", Reason: err.Error()}
		}
		freq = &f
	}
	// checked up front: the store holds its only connection while mutate runs
	if p.CategoryID != nil && *p.CategoryID != "" {
		if err := s.checkCategory(ctx, userID, *p.CategoryID); err != nil {
			return models.Transaction{}, err
		}
	}

	updated, err := s.store.UpdateTransaction(ctx, userID, id, func(tx *models.Transaction) error {
		if p.Amount != nil {
			tx.Amount = *p.Amount
		}
		if dir != "" {
			tx.Direction = dir
		}
		if p.Date != nil {
			tx.Date = *p.Date
		}
		if p.Description != nil {
			tx.Description = strings.TrimSpace(*p.Description)
		}
		if p.CategoryID != nil {
			if *p.CategoryID == "" {
				tx.CategoryID = nil
			} else {
				cat := *p.CategoryID
				tx.CategoryID = &cat
			}
		}
		if p.Latitude != nil {
			tx.Latitude = p.Latitude
		}
		if p.Longitude != nil {
			tx.Longitude = p.Longitude
		}
		if p.LocationName != nil {
			tx.LocationName = p.LocationName
		}
		if p.IsRecurring != nil {
			tx.IsRecurring = *p.IsRecurring
		}
		if p.RecurringFrequency != nil {
			tx.RecurringFrequency = freq
		}
		return validateTransaction(*tx)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return updated, nil
}

// Delete removes a transaction and reverses its effect on the balance.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	s.logger.Info("Transaction deleted",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldTxnID, id))
	return nil
}

func (s *TransactionService) checkCategory(ctx context.Context, userID, categoryID string) error {
	if _, err := s.store.GetCategory(ctx, userID, categoryID); err != nil {
		return fmt.Errorf("category %s: %w", categoryID, err)
	}
	return nil
}

func validateTransaction(tx models.Transaction) error {
	if err := validation.IsPositiveAmount("amount", tx.Amount); err != nil {
		return err
	}
	if err := validation.RequireText("description", tx.Description); err != nil {
		return err
	}
	return validation.IsValidCoordinates(tx.Latitude, tx.Longitude)
}
