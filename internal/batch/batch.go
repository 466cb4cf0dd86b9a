// Package batch imports a set of CSV files into one account and aggregates
// the per-file outcomes.
package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/importer"
	"fjacquet/spendwise/internal/logging"

	"github.com/shopspring/decimal"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format(dateutils.DateLayoutISO),
		dr.End.Format(dateutils.DateLayoutISO))
}

// Merge combines this date range with another, returning the overall range.
// Zero bounds are ignored.
func (dr DateRange) Merge(other DateRange) DateRange {
	start, end := dr.Start, dr.End
	if start.IsZero() || (!other.Start.IsZero() && other.Start.Before(start)) {
		start = other.Start
	}
	if end.IsZero() || (!other.End.IsZero() && other.End.After(end)) {
		end = other.End
	}
	return DateRange{Start: start, End: end}
}

// CSVImporter runs one import.
type CSVImporter interface {
	Import(ctx context.Context, req importer.Request) (*importer.Result, error)
}

// Opener opens a file for reading.
type Opener func(path string) (io.ReadCloser, error)

// FileResult is the outcome of one file. Exactly one of Result and Err is set.
type FileResult struct {
	File   string
	Result *importer.Result
	Err    error
}

// DateRange spans the dates of the file's imported transactions.
func (f FileResult) DateRange() DateRange {
	var dr DateRange
	if f.Result == nil {
		return dr
	}
	for _, tx := range f.Result.Transactions {
		dr = dr.Merge(DateRange{Start: tx.Date, End: tx.Date})
	}
	return dr
}

// Summary aggregates every file of a run.
type Summary struct {
	Files        []FileResult
	Imported     int
	Categorized  int
	Duplicates   int
	RowErrors    int
	Failed       int
	BalanceDelta decimal.Decimal
	DateRange    DateRange
}

// Runner imports files one after another. Each file is its own import, so
// a rejected file leaves the others in place.
type Runner struct {
	importer CSVImporter
	open     Opener
	logger   logging.Logger

	// OnFile, when set, is called after each file with its outcome.
	OnFile func(FileResult)
}

// NewRunner creates a Runner.
func NewRunner(im CSVImporter, open Opener, logger logging.Logger) *Runner {
	return &Runner{importer: im, open: open, logger: logger}
}

// Run imports files in order with base as the template request; only Data
// differs per file. It stops early only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, base importer.Request, files []string) (Summary, error) {
	sum := Summary{BalanceDelta: decimal.Zero}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fr := r.importFile(ctx, base, file)
		sum.Files = append(sum.Files, fr)
		if r.OnFile != nil {
			r.OnFile(fr)
		}
		if fr.Err != nil {
			sum.Failed++
			r.logger.WithError(fr.Err).Warn("Import failed",
				logging.F(logging.FieldFile, file))
			continue
		}

		sum.Imported += fr.Result.Imported
		sum.Categorized += fr.Result.Categorized
		sum.Duplicates += fr.Result.Duplicates
		sum.RowErrors += len(fr.Result.RowErrors)
		sum.BalanceDelta = sum.BalanceDelta.Add(fr.Result.BalanceDelta)
		sum.DateRange = sum.DateRange.Merge(fr.DateRange())
	}

	r.logger.Info("Batch import completed",
		logging.F(logging.FieldAccountID, base.AccountID),
		logging.F("files", len(files)),
		logging.F("failed", sum.Failed),
		logging.F(logging.FieldCount, sum.Imported),
		logging.F("date_range", sum.DateRange.String()))
	return sum, nil
}

func (r *Runner) importFile(ctx context.Context, base importer.Request, file string) FileResult {
	rc, err := r.open(file)
	if err != nil {
		return FileResult{File: file, Err: err}
	}
	defer rc.Close()

	req := base
	req.Data = rc
	res, err := r.importer.Import(ctx, req)
	if err != nil {
		return FileResult{File: file, Err: err}
	}
	return FileResult{File: file, Result: res}
}
