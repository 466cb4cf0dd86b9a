package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/spendwise/internal/categorizer"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"
	"fjacquet/spendwise/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice"
	bob   = "bob"
)

type fixture struct {
	accounts     *AccountService
	categories   *CategoryService
	rules        *RuleService
	transactions *TransactionService
	search       *SearchService
	logger       *logging.MockLogger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := logging.NewMockLogger()
	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "service.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return fixture{
		accounts:     NewAccountService(store, logger),
		categories:   NewCategoryService(store, logger),
		rules:        NewRuleService(store, logger),
		transactions: NewTransactionService(store, logger),
		search:       NewSearchService(store, logger),
		logger:       logger,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *parsererror.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	assert.Equal(t, field, verr.Field)
}

func (f fixture) account(t *testing.T, userID string) models.Account {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), userID, AccountInput{Name: "Checking", Type: "CHECKING"})
	require.NoError(t, err)
	return a
}

func (f fixture) category(t *testing.T, userID, name string) models.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), userID, CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func TestAccountService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.accounts.Create(ctx, alice, AccountInput{Name: " Savings ", Type: "SAVINGS"})
	require.NoError(t, err)
	assert.Equal(t, "Savings", a.Name)
	assert.Equal(t, models.DefaultCurrency, a.Currency)
	assert.True(t, a.Balance.IsZero())
	assert.NotEmpty(t, a.ID)
	assert.True(t, f.logger.HasEntry("INFO", "Account created"))

	opening := dec("250.50")
	b, err := f.accounts.Create(ctx, alice, AccountInput{Name: "Euro", Type: "CHECKING", Currency: "eur", Balance: &opening})
	require.NoError(t, err)
	assert.Equal(t, "EUR", b.Currency)
	assert.True(t, b.Balance.Equal(opening))
}

func TestAccountService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input AccountInput
		field string
	}{
		{"missing name", AccountInput{Type: "CHECKING"}, "name"},
		{"missing type", AccountInput{Name: "Main"}, "type"},
		{"bad currency", AccountInput{Name: "Main", Type: "CHECKING", Currency: "DOLLARS"}, "currency"},
	}
	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Create(context.Background(), alice, tt.input)
			requireValidation(t, err, tt.field)
		})
	}
}

func TestAccountService_UpdateAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, alice)

	updated, err := f.accounts.Update(ctx, alice, a.ID, AccountPatch{Name: strPtr("Daily"), Description: strPtr("main account")})
	require.NoError(t, err)
	assert.Equal(t, "Daily", updated.Name)
	assert.Equal(t, "CHECKING", updated.Type)
	assert.Equal(t, "main account", updated.Description)

	_, err = f.accounts.Get(ctx, bob, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.accounts.Update(ctx, bob, a.ID, AccountPatch{Name: strPtr("Stolen")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, f.accounts.Delete(ctx, bob, a.ID), storage.ErrNotFound)

	require.NoError(t, f.accounts.Delete(ctx, alice, a.ID))
	list, err := f.accounts.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCategoryService_TreeAndParents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.category(t, alice, "Food")
	groceries, err := f.categories.Create(ctx, alice, CategoryInput{Name: "Groceries", Color: "#0f0", ParentID: &food.ID})
	require.NoError(t, err)
	require.NotNil(t, groceries.ParentID)
	assert.Equal(t, food.ID, *groceries.ParentID)
	f.category(t, alice, "Transport")

	list, err := f.categories.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list.Categories, 3)
	require.Len(t, list.Tree, 2)
	assert.Equal(t, "Food", list.Tree[0].Name)
	require.Len(t, list.Tree[0].Children, 1)
	assert.Equal(t, "Groceries", list.Tree[0].Children[0].Name)
	assert.Empty(t, list.Tree[1].Children)

	_, err = f.categories.Update(ctx, alice, food.ID, CategoryPatch{ParentID: &food.ID})
	requireValidation(t, err, "parentId")

	detached, err := f.categories.Update(ctx, alice, groceries.ID, CategoryPatch{ParentID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, detached.ParentID)
}

func TestCategoryService_ForeignParentRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	foreign := f.category(t, bob, "Bob's")

	_, err := f.categories.Create(ctx, alice, CategoryInput{Name: "Mine", ParentID: &foreign.ID})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	mine := f.category(t, alice, "Mine")
	_, err = f.categories.Update(ctx, alice, mine.ID, CategoryPatch{ParentID: &foreign.ID})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.categories.Create(ctx, alice, CategoryInput{Name: "Bad", Color: "blue"})
	requireValidation(t, err, "color")
}

func TestCategoryService_ListEmpty(t *testing.T) {
	f := newFixture(t)
	list, err := f.categories.List(context.Background(), alice)
	require.NoError(t, err)
	assert.NotNil(t, list.Categories)
	assert.Empty(t, list.Tree)
}

func TestRuleService_CreateDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.category(t, alice, "Food")

	r, err := f.rules.Create(ctx, alice, RuleInput{CategoryID: food.ID, Name: "Coffee", MatchField: "description", MatchPattern: "starbucks, cafe"})
	require.NoError(t, err)
	assert.Equal(t, models.MatchDescription, r.MatchField)
	assert.Equal(t, models.DefaultRulePriority, r.Priority)
	assert.True(t, r.IsActive)

	tests := []struct {
		name  string
		input RuleInput
		field string
	}{
		{"missing name", RuleInput{CategoryID: food.ID, MatchField: "DESCRIPTION", MatchPattern: "x"}, "name"},
		{"bad match field", RuleInput{CategoryID: food.ID, Name: "n", MatchField: "MERCHANT", MatchPattern: "x"}, "matchField"},
		{"empty pattern", RuleInput{CategoryID: food.ID, Name: "n", MatchField: "DESCRIPTION", MatchPattern: " , "}, "matchPattern"},
		{"bad amount", RuleInput{CategoryID: food.ID, Name: "n", MatchField: "AMOUNT", MatchPattern: "lots"}, "matchPattern"},
		{"inverted range", RuleInput{CategoryID: food.ID, Name: "n", MatchField: "AMOUNT_RANGE", MatchPattern: "20-10"}, "matchPattern"},
		{"missing category", RuleInput{Name: "n", MatchField: "DESCRIPTION", MatchPattern: "x"}, "categoryId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.rules.Create(ctx, alice, tt.input)
			requireValidation(t, err, tt.field)
		})
	}

	foreign := f.category(t, bob, "Other")
	_, err = f.rules.Create(ctx, alice, RuleInput{CategoryID: foreign.ID, Name: "n", MatchField: "DESCRIPTION", MatchPattern: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRuleService_UpdateAndPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.category(t, alice, "Food")
	big := f.category(t, alice, "Big spend")

	low, high := 0, 10
	_, err := f.rules.Create(ctx, alice, RuleInput{CategoryID: food.ID, Name: "Grocer", MatchField: "DESCRIPTION", MatchPattern: "market", Priority: &low})
	require.NoError(t, err)
	amount, err := f.rules.Create(ctx, alice, RuleInput{CategoryID: big.ID, Name: "Large", MatchField: "AMOUNT", MatchPattern: ">100", Priority: &high})
	require.NoError(t, err)

	subject := categorizer.Subject{Description: "Farmers Market", Amount: dec("150"), Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)}
	preview, err := f.rules.Preview(ctx, alice, subject)
	require.NoError(t, err)
	require.True(t, preview.Matched)
	assert.Equal(t, amount.ID, preview.Rule.ID)

	inactive := false
	updated, err := f.rules.Update(ctx, alice, amount.ID, RulePatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, ">100", updated.MatchPattern)

	preview, err = f.rules.Preview(ctx, alice, subject)
	require.NoError(t, err)
	require.True(t, preview.Matched)
	assert.Equal(t, food.ID, preview.Rule.CategoryID)

	preview, err = f.rules.Preview(ctx, bob, subject)
	require.NoError(t, err)
	assert.False(t, preview.Matched)
	assert.Nil(t, preview.Rule)

	list, err := f.rules.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Large", list[0].Name)

	require.NoError(t, f.rules.Delete(ctx, alice, amount.ID))
	_, err = f.rules.Get(ctx, alice, amount.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransactionService_BalanceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, alice)
	food := f.category(t, alice, "Food")

	salary, err := f.transactions.Create(ctx, alice, TransactionInput{AccountID: a.ID, Amount: dec("1000"), Direction: "credit", Description: "Salary"})
	require.NoError(t, err)
	assert.Equal(t, models.Credit, salary.Direction)
	assert.False(t, salary.Date.IsZero())

	lunch, err := f.transactions.Create(ctx, alice, TransactionInput{AccountID: a.ID, Amount: dec("12.50"), Direction: "DEBIT", Description: "Lunch", CategoryID: &food.ID})
	require.NoError(t, err)

	got, err := f.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "987.5", got.Balance.String())

	newAmount := dec("20")
	updated, err := f.transactions.Update(ctx, alice, lunch.ID, TransactionPatch{Amount: &newAmount, CategoryID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
	got, err = f.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "980", got.Balance.String())

	credit := "CREDIT"
	_, err = f.transactions.Update(ctx, alice, lunch.ID, TransactionPatch{Direction: &credit})
	require.NoError(t, err)
	got, err = f.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "1020", got.Balance.String())

	require.NoError(t, f.transactions.Delete(ctx, alice, salary.ID))
	got, err = f.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "20", got.Balance.String())
}

func TestTransactionService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, alice)
	foreignCat := f.category(t, bob, "Other")
	foreignAcct := f.account(t, bob)
	badLat := 95.0

	tests := []struct {
		name  string
		input TransactionInput
		field string
		err   error
	}{
		{name: "zero amount", input: TransactionInput{AccountID: a.ID, Amount: decimal.Zero, Direction: "DEBIT", Description: "x"}, field: "amount"},
		{name: "negative amount", input: TransactionInput{AccountID: a.ID, Amount: dec("-5"), Direction: "DEBIT", Description: "x"}, field: "amount"},
		{name: "missing description", input: TransactionInput{AccountID: a.ID, Amount: dec("5"), Direction: "DEBIT"}, field: "description"},
		{name: "bad direction", input: TransactionInput{AccountID: a.ID, Amount: dec("5"), Direction: "SIDEWAYS", Description: "x"}, field: "type"},
		{name: "bad latitude", input: TransactionInput{AccountID: a.ID, Amount: dec("5"), Direction: "DEBIT", Description: "x", Latitude: &badLat}, field: "latitude"},
		{name: "bad frequency", input: TransactionInput{AccountID: a.ID, Amount: dec("5"), Direction: "DEBIT", Description: "x", RecurringFrequency: strPtr("HOURLY")}, field: "recurringFrequency"},
		{name: "foreign account", input: TransactionInput{AccountID: foreignAcct.ID, Amount: dec("5"), Direction: "DEBIT", Description: "x"}, err: storage.ErrNotFound},
		{name: "foreign category", input: TransactionInput{AccountID: a.ID, Amount: dec("5"), Direction: "DEBIT", Description: "x", CategoryID: &foreignCat.ID}, err: storage.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.transactions.Create(ctx, alice, tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			requireValidation(t, err, tt.field)
		})
	}

	got, err := f.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestTransactionService_UpdateValidationLeavesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, alice)
	tx, err := f.transactions.Create(ctx, alice, TransactionInput{AccountID: a.ID, Amount: dec("10"), Direction: "DEBIT", Description: "Snack"})
	require.NoError(t, err)

	zero := decimal.Zero
	_, err = f.transactions.Update(ctx, alice, tx.ID, TransactionPatch{Amount: &zero})
	requireValidation(t, err, "amount")

	foreign := f.category(t, bob, "Other")
	_, err = f.transactions.Update(ctx, alice, tx.ID, TransactionPatch{CategoryID: &foreign.ID})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.transactions.Update(ctx, bob, tx.ID, TransactionPatch{Description: strPtr("mine")})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := f.accounts.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "-10", got.Balance.String())
}

func TestTransactionService_ListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, alice)

	for i := 1; i <= 5; i++ {
		date := time.Date(2025, 1, i, 0, 0, 0, 0, time.UTC)
		dir := "DEBIT"
		if i%2 == 0 {
			dir = "CREDIT"
		}
		_, err := f.transactions.Create(ctx, alice, TransactionInput{AccountID: a.ID, Amount: dec("1"), Direction: dir, Description: "t", Date: &date})
		require.NoError(t, err)
	}

	page, err := f.transactions.List(ctx, alice, TransactionQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, 3, page.Transactions[0].Date.Day())

	page, err = f.transactions.List(ctx, alice, TransactionQuery{Direction: "credit"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, DefaultPage, page.Page)
	assert.Equal(t, DefaultLimit, page.Limit)

	page, err = f.transactions.List(ctx, alice, TransactionQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, page.Limit)

	_, err = f.transactions.List(ctx, alice, TransactionQuery{Direction: "up"})
	requireValidation(t, err, "type")

	page, err = f.transactions.List(ctx, bob, TransactionQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Transactions)
	assert.Equal(t, 0, page.TotalPages)
}

func TestSearchService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var accountIDs []string
	for _, name := range []string{"Coffee fund", "Savings", "coffee jar", "COFFEE tin", "Old coffee"} {
		a, err := f.accounts.Create(ctx, alice, AccountInput{Name: name, Type: "SAVINGS"})
		require.NoError(t, err)
		accountIDs = append(accountIDs, a.ID)
	}
	for _, name := range []string{"Coffee", "Groceries", "Iced coffee", "Coffee beans", "Coffee shops"} {
		f.category(t, alice, name)
	}
	for i := 1; i <= 7; i++ {
		date := time.Date(2025, 3, i, 0, 0, 0, 0, time.UTC)
		_, err := f.transactions.Create(ctx, alice, TransactionInput{
			AccountID: accountIDs[1], Amount: dec("3"), Direction: "DEBIT", Description: "Morning COFFEE", Date: &date,
		})
		require.NoError(t, err)
	}
	_, err := f.transactions.Create(ctx, alice, TransactionInput{AccountID: accountIDs[1], Amount: dec("40"), Direction: "DEBIT", Description: "Groceries"})
	require.NoError(t, err)

	res, err := f.search.Search(ctx, alice, " coffee ")
	require.NoError(t, err)
	require.Len(t, res.Transactions, SearchTransactionLimit)
	assert.Equal(t, 7, res.Transactions[0].Date.Day(), "newest first")
	for _, tx := range res.Transactions {
		assert.Equal(t, "Morning COFFEE", tx.Description)
	}
	assert.Len(t, res.Accounts, SearchAccountLimit)
	for _, a := range res.Accounts {
		assert.Contains(t, strings.ToLower(a.Name), "coffee")
	}
	require.Len(t, res.Categories, SearchCategoryLimit)
	assert.Equal(t, "Coffee", res.Categories[0].Name)
	assert.Equal(t, "Coffee beans", res.Categories[1].Name)

	tests := []struct {
		name   string
		userID string
		query  string
	}{
		{name: "too short", userID: alice, query: "c"},
		{name: "blank", userID: alice, query: "   "},
		{name: "other user", userID: bob, query: "coffee"},
		{name: "no match", userID: alice, query: "zzz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.search.Search(ctx, tt.userID, tt.query)
			require.NoError(t, err)
			assert.NotNil(t, res.Transactions)
			assert.Empty(t, res.Transactions)
			assert.NotNil(t, res.Accounts)
			assert.Empty(t, res.Accounts)
			assert.NotNil(t, res.Categories)
			assert.Empty(t, res.Categories)
		})
	}
}
