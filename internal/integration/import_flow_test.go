package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/spendwise/internal/batch"
	"fjacquet/spendwise/internal/columnmapper"
	"fjacquet/spendwise/internal/common"
	"fjacquet/spendwise/internal/config"
	"fjacquet/spendwise/internal/container"
	"fjacquet/spendwise/internal/fileutils"
	"fjacquet/spendwise/internal/importer"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/service"
	"fjacquet/spendwise/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = "default-user"

func newApp(t *testing.T) *container.Container {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Log:      config.LogConfig{Level: "info", Format: "text"},
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "flow.db")},
		User:     config.UserConfig{DefaultID: user},
		Import: config.ImportConfig{
			DefaultDirection:    "DEBIT",
			ApplyRules:          true,
			SkipDuplicates:      true,
			DuplicateSimilarity: 0.9,
			Delimiter:           ",",
		},
		Server: config.ServerConfig{ReadTimeoutSeconds: 15, WriteTimeoutSeconds: 30},
		Seed:   config.SeedConfig{File: filepath.Join(dir, "seed.yaml")},
	}
	app, err := container.NewContainer(context.Background(), cfg, container.WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// TestImportFlow seeds categories, imports a directory of exports, and
// checks that re-importing the exported data is recognised as duplicates.
func TestImportFlow(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	_, err := app.GetSeeder().Apply(ctx, user, store.SeedFile{
		Accounts: []store.SeedAccount{{Name: "Checking", Type: "CHECKING", Balance: "50"}},
		Categories: []store.SeedCategory{
			{Name: "Food", Keywords: []string{"cafe", "bakery"}},
			{Name: "Income"},
		},
		Rules: []store.SeedRule{{Name: "Salary", Category: "Income", MatchField: "DESCRIPTION", Pattern: "salary", Priority: 5}},
	})
	require.NoError(t, err)

	accounts, err := app.GetAccounts().List(ctx, user)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	account := accounts[0]

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2025-01.csv"), "Date,Amount,Description,Type\n"+
		"2025-01-03,4.50,Cafe Luna,debit\n"+
		"2025-01-31,2000.00,ACME Salary,credit\n")
	writeFile(t, filepath.Join(dir, "2025-02", "statement.CSV"), "Booking Date,Value,Memo\n"+
		"03.02.2025,-3.20,Corner Bakery\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "not a statement")

	files, err := fileutils.ListFilesWithExtension(dir, ".csv")
	require.NoError(t, err)
	require.Len(t, files, 2)

	runner := batch.NewRunner(app.GetImporter(), func(path string) (io.ReadCloser, error) {
		return fileutils.OpenInput(path, nil)
	}, logging.NewMockLogger())
	sum, err := runner.Run(ctx, importer.Request{UserID: user, AccountID: account.ID}, files)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 3, sum.Imported)
	assert.Equal(t, 3, sum.Categorized)
	assert.Equal(t, "1992.3", sum.BalanceDelta.String())
	assert.Equal(t, "2025-01-03_2025-02-03", sum.DateRange.String())

	got, err := app.GetAccounts().Get(ctx, user, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "2042.3", got.Balance.String())

	// export and import the same data again
	page, err := app.GetTransactions().List(ctx, user, service.TransactionQuery{AccountID: account.ID, Limit: service.MaxLimit})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 3)

	categories, err := app.GetCategories().List(ctx, user)
	require.NoError(t, err)
	names := make(map[string]string, len(categories.Categories))
	for _, c := range categories.Categories {
		names[c.ID] = c.Name
	}

	var exported bytes.Buffer
	require.NoError(t, common.WriteTransactionsToCSV(&exported, page.Transactions, names, ','))
	data := exported.String()

	res, err := app.GetImporter().Import(ctx, importer.Request{UserID: user, AccountID: account.ID, Data: strings.NewReader(data)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 3, res.Duplicates)

	got, err = app.GetAccounts().Get(ctx, user, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "2042.3", got.Balance.String(), "duplicates leave the balance alone")

	// a fresh account takes the categories from the exported category column
	savings, err := app.GetAccounts().Create(ctx, user, service.AccountInput{Name: "Savings", Type: "SAVINGS"})
	require.NoError(t, err)
	res, err = app.GetImporter().Import(ctx, importer.Request{
		UserID: user, AccountID: savings.ID, Data: strings.NewReader(data), NoRules: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 3, res.Categorized)
	assert.Equal(t, "category", res.Mapping[columnmapper.FieldCategory])
	for i, tx := range res.Transactions {
		require.NotNil(t, tx.CategoryID)
		assert.Equal(t, *page.Transactions[i].CategoryID, *tx.CategoryID)
	}

	// the API sees the same rows, newest first, with categories
	rec := httptest.NewRecorder()
	app.NewAPIServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?accountId="+account.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Transactions, 3)
	assert.Equal(t, "Corner Bakery", list.Transactions[0].Description)
	assert.Equal(t, models.Debit, list.Transactions[0].Direction)
	assert.Equal(t, "ACME Salary", list.Transactions[1].Description)
	assert.Equal(t, models.Credit, list.Transactions[1].Direction)
	for _, tx := range list.Transactions {
		assert.NotNil(t, tx.CategoryID, tx.Description)
	}
}

// TestSeedExportRoundTrip saves the exported seed through the seed store
// and applies it to a fresh user.
func TestSeedExportRoundTrip(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	food, err := app.GetCategories().Create(ctx, user, service.CategoryInput{Name: "Food"})
	require.NoError(t, err)
	_, err = app.GetCategories().Create(ctx, user, service.CategoryInput{Name: "Groceries", ParentID: &food.ID})
	require.NoError(t, err)
	_, err = app.GetRules().Create(ctx, user, service.RuleInput{
		CategoryID: food.ID, Name: "Big shop", MatchField: "AMOUNT_RANGE", MatchPattern: "100-500",
	})
	require.NoError(t, err)

	doc, err := app.GetSeeder().Export(ctx, user)
	require.NoError(t, err)
	require.NoError(t, app.GetSeedStore().Save(doc))

	loaded, err := app.GetSeedStore().Load()
	require.NoError(t, err)
	res, err := app.GetSeeder().Apply(ctx, "someone-else", loaded)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Categories)
	assert.Equal(t, 1, res.Rules)

	list, err := app.GetCategories().List(ctx, "someone-else")
	require.NoError(t, err)
	require.Len(t, list.Tree, 1)
	assert.Equal(t, "Food", list.Tree[0].Name)
	require.Len(t, list.Tree[0].Children, 1)
	assert.Equal(t, "Groceries", list.Tree[0].Children[0].Name)
}
