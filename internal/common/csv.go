// Package common provides the CSV reading and writing shared by the importer
// and the export commands.
package common

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter is used when the caller passes 0.
const DefaultDelimiter = ','

// ErrEmptyCSV is wrapped when the input has no header row.
var ErrEmptyCSV = errors.New("CSV data is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV document: the header row in file order and one map
// per data row keyed by the original header text.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// ReadCSV parses CSV text with a header row. Records that are entirely empty
// are skipped. Short records leave the missing columns empty and extra
// columns are ignored. When a header repeats, the first column wins.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV data: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &parsererror.ParseError{Component: "csv", Field: "header", Err: ErrEmptyCSV}
	}
	if err != nil {
		return nil, &parsererror.ParseError{Component: "csv", Field: "header", Err: err}
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	table := &Table{Headers: headers}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &parsererror.ParseError{Component: "csv", Field: "record", Err: err}
		}
		if blank(record) {
			continue
		}

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if _, seen := row[h]; seen {
				continue
			}
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// exportRow is the on-disk shape of an exported transaction. Its headers are
// chosen so the file can be imported again without an explicit mapping.
type exportRow struct {
	Date         string `csv:"date"`
	Amount       string `csv:"amount"`
	Type         string `csv:"type"`
	Description  string `csv:"description"`
	Category     string `csv:"category"`
	Latitude     string `csv:"latitude"`
	Longitude    string `csv:"longitude"`
	LocationName string `csv:"location_name"`
}

// WriteTransactionsToCSV writes transactions to w with a header row. The
// category column holds the category name looked up in categoryNames (ID to
// name), so an import of the file can resolve it again.
func WriteTransactionsToCSV(w io.Writer, transactions []models.Transaction, categoryNames map[string]string, delimiter rune) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	rows := make([]exportRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, toExportRow(tx, categoryNames))
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func toExportRow(tx models.Transaction, categoryNames map[string]string) exportRow {
	row := exportRow{
		Date:        dateutils.ToISODate(tx.Date),
		Amount:      tx.Amount.StringFixed(2),
		Type:        strings.ToLower(tx.Direction.String()),
		Description: tx.Description,
	}
	if tx.CategoryID != nil {
		row.Category = categoryNames[*tx.CategoryID]
	}
	if tx.Latitude != nil {
		row.Latitude = fmt.Sprintf("%g", *tx.Latitude)
	}
	if tx.Longitude != nil {
		row.Longitude = fmt.Sprintf("%g", *tx.Longitude)
	}
	if tx.LocationName != nil {
		row.LocationName = *tx.LocationName
	}
	return row
}
