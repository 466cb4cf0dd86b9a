// Package importcmd handles the CSV import command
package importcmd

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/spendwise/cmd/common"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/batch"
	"fjacquet/spendwise/internal/columnmapper"
	"fjacquet/spendwise/internal/fileutils"
	"fjacquet/spendwise/internal/importer"
	"fjacquet/spendwise/internal/models"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	accountID   string
	input       string
	defaultType string
	noRules     bool
	mappings    []string
	asJSON      bool
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import transactions from a bank CSV export",
	Long: `Import transactions from a bank CSV export into an account.

Columns are detected from the header row unless --map is given. Each row's
direction comes from a type column (credit/deposit, debit/withdrawal), then
the amount sign, then --default-type. Rows missing a date, amount or
description are skipped and reported. Active rules categorize the rest.

--file may name a CSV file, a directory of CSV files, or "-" for stdin.

Example:
  spendwise import --account <id> --file statement.csv
  spendwise import --account <id> --file exports/ --map date="Booking Date" --map amount=Value`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVar(&accountID, "account", "", "Account ID to import into")
	Cmd.Flags().StringVarP(&input, "file", "f", fileutils.Stdio, "CSV file, directory of CSV files, or - for stdin")
	Cmd.Flags().StringVar(&defaultType, "default-type", "", "Direction for rows without a type or sign: CREDIT or DEBIT")
	Cmd.Flags().BoolVar(&noRules, "no-rules", false, "Do not apply categorization rules")
	Cmd.Flags().StringArrayVarP(&mappings, "map", "m", nil, "Explicit column mapping field=header (repeatable)")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = Cmd.MarkFlagRequired("account")
}

// summary is the printed outcome of one file.
type summary struct {
	File          string            `json:"file"`
	Imported      int               `json:"imported"`
	Categorized   int               `json:"categorized"`
	Duplicates    int               `json:"duplicates"`
	Errors        []string          `json:"errors,omitempty"`
	ColumnMapping map[string]string `json:"columnMapping"`
}

func run(cmd *cobra.Command, args []string) error {
	explicit, err := common.ParseMappings(mappings)
	if err != nil {
		return err
	}
	mapping, err := columnmapper.FromStrings(explicit)
	if err != nil {
		return err
	}
	req := importer.Request{
		UserID:    root.UserID(),
		AccountID: accountID,
		Mapping:   mapping,
		NoRules:   noRules,
	}
	if defaultType != "" {
		if req.DefaultDirection, err = models.ParseDirection(defaultType); err != nil {
			return err
		}
	}

	files := []string{input}
	if fileutils.DirectoryExists(input) {
		if files, err = fileutils.ListFilesWithExtension(input, ".csv"); err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no CSV files in %s", input)
		}
	}

	open := func(path string) (io.ReadCloser, error) {
		return fileutils.OpenInput(path, cmd.InOrStdin())
	}
	runner := batch.NewRunner(root.App().GetImporter(), open, root.App().GetLogger())
	if len(files) > 1 && !asJSON {
		bar := newProgressBar(cmd.ErrOrStderr(), len(files))
		runner.OnFile = func(batch.FileResult) {
			_ = bar.Add(1)
		}
	}
	sum, err := runner.Run(cmd.Context(), req, files)
	if err != nil {
		return err
	}

	results := []summary{}
	for _, f := range sum.Files {
		if f.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", f.File, f.Err)
			continue
		}
		results = append(results, summary{
			File:          f.File,
			Imported:      f.Result.Imported,
			Categorized:   f.Result.Categorized,
			Duplicates:    f.Result.Duplicates,
			Errors:        f.Result.Errors(),
			ColumnMapping: f.Result.Mapping.Strings(),
		})
	}

	if asJSON {
		if err := common.PrintJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		for _, s := range results {
			printSummary(cmd.OutOrStdout(), s)
		}
		if len(files) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d transactions from %d files, balance change %s\n",
				sum.Imported, len(files)-sum.Failed, sum.BalanceDelta.StringFixed(2))
		}
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", sum.Failed, len(files))
	}
	return nil
}

func newProgressBar(w io.Writer, files int) *progressbar.ProgressBar {
	return progressbar.NewOptions(files,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing files..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func printSummary(w io.Writer, s summary) {
	fmt.Fprintf(w, "%s: imported %d transactions", s.File, s.Imported)
	var extra []string
	if s.Categorized > 0 {
		extra = append(extra, fmt.Sprintf("%d categorized", s.Categorized))
	}
	if s.Duplicates > 0 {
		extra = append(extra, fmt.Sprintf("%d duplicates skipped", s.Duplicates))
	}
	if len(s.Errors) > 0 {
		extra = append(extra, fmt.Sprintf("%d rows skipped", len(s.Errors)))
	}
	if len(extra) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(extra, ", "))
	}
	fmt.Fprintln(w)
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
