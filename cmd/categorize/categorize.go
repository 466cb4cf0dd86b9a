// Package categorize previews rule matching for a transaction
package categorize

import (
	"fmt"
	"time"

	"fjacquet/spendwise/cmd/common"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/categorizer"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	description string
	amount      string
	date        string
	asJSON      bool
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Show which rule would categorize a transaction",
	Long: `Evaluate the active rules against a description, amount and date
without storing anything, and print the first rule that matches.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Transaction description")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Transaction amount (optional)")
	Cmd.Flags().StringVarP(&date, "date", "t", "", "Transaction date (default today)")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = Cmd.MarkFlagRequired("description")
}

func run(cmd *cobra.Command, args []string) error {
	amt, err := common.OptionalDecimal(amount)
	if err != nil {
		return err
	}
	when, err := common.OptionalDate(date)
	if err != nil {
		return err
	}

	subject := categorizer.Subject{
		UserID:      root.UserID(),
		Description: description,
		Amount:      decimal.Zero,
		Date:        time.Now().UTC(),
	}
	if amt != nil {
		subject.Amount = *amt
	}
	if when != nil {
		subject.Date = *when
	}

	preview, err := root.App().GetRules().Preview(cmd.Context(), root.UserID(), subject)
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(cmd.OutOrStdout(), preview)
	}
	if !preview.Matched {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "No rule matches")
		return err
	}

	category, err := root.App().GetCategories().Get(cmd.Context(), root.UserID(), preview.Rule.CategoryID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Category: %s (rule %q, priority %d)\n",
		category.Name, preview.Rule.Name, preview.Rule.Priority)
	return err
}
