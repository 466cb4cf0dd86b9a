package service

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/validation"

	"github.com/shopspring/decimal"
)

// AccountInput creates an account. Currency defaults to USD and Balance to 0.
type AccountInput struct {
	Name        string
	Type        string
	Currency    string
	Balance     *decimal.Decimal
	Description string
}

// AccountPatch updates the non-nil fields of an account.
type AccountPatch struct {
	Name        *string
	Type        *string
	Currency    *string
	Balance     *decimal.Decimal
	Description *string
}

// AccountService manages bank accounts.
type AccountService struct {
	store  AccountStore
	logger logging.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(store AccountStore, logger logging.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

func (s *AccountService) Create(ctx context.Context, userID string, in AccountInput) (models.Account, error) {
	a := models.Account{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.TrimSpace(in.Type),
		Currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		Balance:     decimal.Zero,
		Description: strings.TrimSpace(in.Description),
	}
	if a.Currency == "" {
		a.Currency = models.DefaultCurrency
	}
	if in.Balance != nil {
		a.Balance = *in.Balance
	}
	if err := validateAccount(a); err != nil {
		return models.Account{}, err
	}

	if err := s.store.CreateAccount(ctx, &a); err != nil {
		return models.Account{}, err
	}
	s.logger.Info("Account created",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldAccountID, a.ID))
	return a, nil
}

func (s *AccountService) Get(ctx context.Context, userID, id string) (models.Account, error) {
	return s.store.GetAccount(ctx, userID, id)
}

func (s *AccountService) List(ctx context.Context, userID string) ([]models.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

func (s *AccountService) Update(ctx context.Context, userID, id string, p AccountPatch) (models.Account, error) {
	a, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return models.Account{}, err
	}
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		a.Type = strings.TrimSpace(*p.Type)
	}
	if p.Currency != nil {
		a.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	if p.Description != nil {
		a.Description = strings.TrimSpace(*p.Description)
	}
	if err := validateAccount(a); err != nil {
		return models.Account{}, err
	}

	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// Delete removes the account together with its transactions.
func (s *AccountService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	s.logger.Info("Account deleted",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldAccountID, id))
	return nil
}

func validateAccount(a models.Account) error {
	if err := validation.RequireText("name", a.Name); err != nil {
		return err
	}
	if err := validation.RequireText("type", a.Type); err != nil {
		return err
	}
	return validation.IsValidCurrency(a.Currency)
}
