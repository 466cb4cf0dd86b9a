// Package importer turns uploaded CSV exports into transactions: column
// detection, per-row classification, categorization, duplicate filtering
// and one atomic insert with its balance adjustment.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/spendwise/internal/categorizer"
	"fjacquet/spendwise/internal/columnmapper"
	"fjacquet/spendwise/internal/common"
	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"

	"github.com/shopspring/decimal"
)

var (
	errEmptyAmount = errors.New("no digits in amount")
	errNoNumber    = errors.New("amount does not start with a number")
)

// Repository is the persistence the importer needs.
type Repository interface {
	GetAccount(ctx context.Context, userID, accountID string) (models.Account, error)
	// InsertTransactions stores all candidates and moves the account balance
	// by their signed sum in a single database transaction.
	InsertTransactions(ctx context.Context, accountID string, candidates []models.Candidate) ([]models.Transaction, error)
	TransactionsBetween(ctx context.Context, accountID string, from, to time.Time) ([]models.Transaction, error)
}

// Config holds the import defaults, usually populated from configuration.
type Config struct {
	DefaultDirection        models.Direction
	TypeColumnAuthoritative bool
	ApplyRules              bool
	SkipDuplicates          bool
	DuplicateSimilarity     float64
	Delimiter               rune
}

// Request describes one import.
type Request struct {
	UserID    string
	AccountID string
	Data      io.Reader

	// Mapping, when non-empty, is used verbatim instead of detection.
	Mapping columnmapper.Mapping
	// DefaultDirection overrides Config.DefaultDirection when set.
	DefaultDirection models.Direction
	// NoRules disables rule-based categorization for this import.
	NoRules bool
}

// Result summarises a successful import.
type Result struct {
	Imported     int
	Categorized  int
	Duplicates   int
	RowErrors    []*parsererror.RowError
	Mapping      columnmapper.Mapping
	BalanceDelta decimal.Decimal
	Transactions []models.Transaction
}

// Errors renders the row errors for display, ordered by row.
func (r *Result) Errors() []string {
	return parsererror.RowMessages(r.RowErrors)
}

// Importer runs CSV imports against a Repository.
type Importer struct {
	repo   Repository
	source categorizer.Source
	cfg    Config
	logger logging.Logger
}

// New creates an Importer. source may be nil, which disables categorization.
func New(repo Repository, source categorizer.Source, cfg Config, logger logging.Logger) *Importer {
	return &Importer{repo: repo, source: source, cfg: cfg, logger: logger}
}

// Import parses, classifies and persists the rows of req.Data. A
// *parsererror.MappingError is returned when the required columns are not
// found, and a *parsererror.BatchError when no row is valid. Both reject the
// whole file; nothing is written.
func (im *Importer) Import(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := im.logger.WithFields(
		logging.F(logging.FieldUserID, req.UserID),
		logging.F(logging.FieldAccountID, req.AccountID))

	if _, err := im.repo.GetAccount(ctx, req.UserID, req.AccountID); err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", req.AccountID, err)
	}

	table, err := common.ReadCSV(req.Data, im.cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	log.Debug("Parsed CSV data",
		logging.F(logging.FieldHeaderCount, len(table.Headers)),
		logging.F(logging.FieldCount, len(table.Rows)))

	mapping, err := columnmapper.Resolve(table.Headers, req.Mapping)
	if err != nil {
		log.WithError(err).Warn("Column mapping incomplete")
		return nil, err
	}

	opts := ClassifyOptions{
		DefaultDirection:        im.defaultDirection(req),
		TypeColumnAuthoritative: im.cfg.TypeColumnAuthoritative,
	}

	result := &Result{Mapping: mapping}
	candidates := make([]models.Candidate, 0, len(table.Rows))
	for i, row := range table.Rows {
		c, err := ClassifyRow(i+1, row, mapping, opts)
		if err != nil {
			var rowErr *parsererror.RowError
			if errors.As(err, &rowErr) {
				result.RowErrors = append(result.RowErrors, rowErr)
				log.Debug("Skipping row", logging.F(logging.FieldRow, rowErr.Row), logging.F(logging.FieldReason, rowErr.Reason))
				continue
			}
			return nil, err
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		log.Warn("No valid transactions found", logging.F(logging.FieldCount, len(result.RowErrors)))
		return nil, &parsererror.BatchError{Rows: result.RowErrors}
	}

	if im.cfg.SkipDuplicates {
		candidates, err = im.dropDuplicates(ctx, req.AccountID, candidates, result)
		if err != nil {
			return nil, err
		}
	}

	if err := im.categorize(ctx, req, mapping, candidates, result); err != nil {
		return nil, err
	}

	if len(candidates) > 0 {
		txns, err := im.repo.InsertTransactions(ctx, req.AccountID, candidates)
		if err != nil {
			return nil, fmt.Errorf("failed to store imported transactions: %w", err)
		}
		result.Transactions = txns
	}
	result.Imported = len(result.Transactions)
	result.BalanceDelta = models.SumSigned(candidates)

	log.Info("Import completed",
		logging.F(logging.FieldCount, result.Imported),
		logging.F("row_errors", len(result.RowErrors)),
		logging.F("duplicates", result.Duplicates),
		logging.F("categorized", result.Categorized),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return result, nil
}

func (im *Importer) defaultDirection(req Request) models.Direction {
	if req.DefaultDirection.IsValid() {
		return req.DefaultDirection
	}
	if im.cfg.DefaultDirection.IsValid() {
		return im.cfg.DefaultDirection
	}
	return models.Debit
}

func (im *Importer) categorize(ctx context.Context, req Request, mapping columnmapper.Mapping, candidates []models.Candidate, result *Result) error {
	if im.source == nil {
		return nil
	}
	opts := categorizer.Options{
		UseCategoryColumn: mapping.Has(columnmapper.FieldCategory),
		UseRules:          im.cfg.ApplyRules && !req.NoRules,
	}
	if !opts.UseCategoryColumn && !opts.UseRules {
		return nil
	}

	cat, err := categorizer.Load(ctx, im.source, req.UserID, opts, im.logger)
	if err != nil {
		return err
	}

	for i := range candidates {
		res, found, err := cat.Categorize(ctx, categorizer.Subject{
			UserID:       req.UserID,
			Description:  candidates[i].Description,
			Amount:       candidates[i].Amount,
			Date:         candidates[i].Date,
			CategoryHint: candidates[i].CategoryHint,
		})
		if err != nil {
			return err
		}
		if found {
			id := res.CategoryID
			candidates[i].CategoryID = &id
			result.Categorized++
		}
	}
	return nil
}

func (im *Importer) dropDuplicates(ctx context.Context, accountID string, candidates []models.Candidate, result *Result) ([]models.Candidate, error) {
	from, to := candidates[0].Date, candidates[0].Date
	for _, c := range candidates[1:] {
		if c.Date.Before(from) {
			from = c.Date
		}
		if c.Date.After(to) {
			to = c.Date
		}
	}

	// widen to whole days; stored dates may carry a time of day
	from = dateutils.StartOfDay(from)
	to = dateutils.StartOfDay(to).AddDate(0, 0, 1)

	existing, err := im.repo.TransactionsBetween(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing transactions: %w", err)
	}

	kept, skipped := NewDuplicateDetector(im.cfg.DuplicateSimilarity).Filter(candidates, existing)
	result.Duplicates = skipped
	return kept, nil
}
