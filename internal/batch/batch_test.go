package batch

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"fjacquet/spendwise/internal/importer"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name  string
		a, b  DateRange
		want  DateRange
		label string
	}{
		{name: "zero and zero", want: DateRange{}, label: ""},
		{name: "zero takes other", b: DateRange{day(3), day(5)}, want: DateRange{day(3), day(5)}, label: "2025-01-03_2025-01-05"},
		{name: "widens both ends", a: DateRange{day(3), day(5)}, b: DateRange{day(1), day(9)}, want: DateRange{day(1), day(9)}, label: "2025-01-01_2025-01-09"},
		{name: "ignores zero other", a: DateRange{day(3), day(5)}, want: DateRange{day(3), day(5)}, label: "2025-01-03_2025-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Merge(tt.b)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.label, got.String())
		})
	}
}

// fakeImporter reads the file content as "<day>,<amount>" lines;
// "reject" makes the import fail.
type fakeImporter struct {
	requests []importer.Request
}

func (f *fakeImporter) Import(ctx context.Context, req importer.Request) (*importer.Result, error) {
	f.requests = append(f.requests, req)
	data, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "reject" {
		return nil, &parsererror.BatchError{Rows: []*parsererror.RowError{{Row: 1, Reason: "invalid amount"}}}
	}

	res := &importer.Result{BalanceDelta: decimal.Zero, Categorized: 1}
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		d, amount, _ := strings.Cut(line, ",")
		n, err := strconv.Atoi(d)
		if err != nil {
			return nil, err
		}
		tx := models.Transaction{ID: strconv.Itoa(i), Date: day(n), Amount: decimal.RequireFromString(amount), Direction: models.Credit}
		res.Transactions = append(res.Transactions, tx)
		res.BalanceDelta = res.BalanceDelta.Add(tx.SignedAmount())
	}
	res.Imported = len(res.Transactions)
	return res, nil
}

func TestRunner_Run(t *testing.T) {
	files := map[string]string{
		"jan.csv": "2,10\n9,5",
		"bad.csv": "reject",
		"feb.csv": "1,2.5",
	}
	open := func(path string) (io.ReadCloser, error) {
		content, ok := files[path]
		if !ok {
			return nil, errors.New("file does not exist: " + path)
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}

	im := &fakeImporter{}
	logger := logging.NewMockLogger()
	runner := NewRunner(im, open, logger)
	var seen []string
	runner.OnFile = func(fr FileResult) {
		seen = append(seen, fr.File)
	}

	sum, err := runner.Run(context.Background(), importer.Request{UserID: "alice", AccountID: "acc-1"},
		[]string{"jan.csv", "bad.csv", "missing.csv", "feb.csv"})
	require.NoError(t, err)

	require.Len(t, sum.Files, 4)
	assert.Equal(t, []string{"jan.csv", "bad.csv", "missing.csv", "feb.csv"}, seen)
	assert.Equal(t, 3, sum.Imported)
	assert.Equal(t, 2, sum.Categorized)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, "17.5", sum.BalanceDelta.String())
	assert.Equal(t, DateRange{day(1), day(9)}, sum.DateRange)

	var batchErr *parsererror.BatchError
	assert.ErrorAs(t, sum.Files[1].Err, &batchErr)
	assert.ErrorContains(t, sum.Files[2].Err, "file does not exist")
	assert.Equal(t, DateRange{day(2), day(9)}, sum.Files[0].DateRange())

	// the template request is reused and only Data changes
	require.Len(t, im.requests, 3)
	for _, req := range im.requests {
		assert.Equal(t, "acc-1", req.AccountID)
		assert.Equal(t, "alice", req.UserID)
	}

	assert.True(t, logger.HasEntry("WARN", "Import failed"))
	assert.True(t, logger.HasEntry("INFO", "Batch import completed"))
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(&fakeImporter{}, func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("1,1")), nil
	}, logging.NewMockLogger())

	sum, err := runner.Run(ctx, importer.Request{}, []string{"a.csv"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sum.Files)
}
