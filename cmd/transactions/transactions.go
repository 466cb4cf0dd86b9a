// Package transactions handles transaction commands
package transactions

import (
	"fmt"

	"fjacquet/spendwise/cmd/common"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/fileutils"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/service"

	internalcommon "fjacquet/spendwise/internal/common"

	"github.com/spf13/cobra"
)

var (
	accountID   string
	amount      string
	direction   string
	date        string
	description string
	categoryID  string
	location    string
	recurring   string

	from   string
	to     string
	page   int
	limit  int
	output string
	asJSON bool
)

// Cmd represents the transactions command
var Cmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Manage transactions",
	Long: `Manage transactions. Every change adjusts the account balance: credits
add to it and debits subtract from it.`,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, err := common.OptionalDecimal(amount)
		if err != nil {
			return err
		}
		when, err := common.OptionalDate(date)
		if err != nil {
			return err
		}
		in := service.TransactionInput{
			AccountID:   accountID,
			Direction:   direction,
			Date:        when,
			Description: description,
		}
		if amt != nil {
			in.Amount = *amt
		}
		if categoryID != "" {
			in.CategoryID = &categoryID
		}
		if location != "" {
			in.LocationName = &location
		}
		if recurring != "" {
			in.IsRecurring = true
			in.RecurringFrequency = &recurring
		}

		tx, err := root.App().GetTransactions().Create(cmd.Context(), root.UserID(), in)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), tx)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s (%s)\n", common.Signed(tx), tx.Description, tx.ID)
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := query()
		if err != nil {
			return err
		}
		q.Page, q.Limit = page, limit

		result, err := root.App().GetTransactions().List(cmd.Context(), root.UserID(), q)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), result)
		}

		tw := common.NewTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tDESCRIPTION\tCATEGORY")
		for _, tx := range result.Transactions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				tx.ID, tx.Date.Format(dateutils.DateLayoutISO), common.Signed(tx), tx.Description, common.Deref(tx.CategoryID))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d transactions)\n", result.Page, result.TotalPages, result.Total)
		return err
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a transaction",
	Long:  `Change a transaction. Pass --category "" to remove its category.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var patch service.TransactionPatch
		if flags.Changed("amount") {
			amt, err := common.OptionalDecimal(amount)
			if err != nil {
				return err
			}
			patch.Amount = amt
		}
		if flags.Changed("type") {
			patch.Direction = &direction
		}
		if flags.Changed("date") {
			when, err := common.OptionalDate(date)
			if err != nil {
				return err
			}
			patch.Date = when
		}
		if flags.Changed("description") {
			patch.Description = &description
		}
		if flags.Changed("category") {
			patch.CategoryID = &categoryID
		}
		if flags.Changed("location") {
			patch.LocationName = &location
		}
		if flags.Changed("recurring") {
			isRecurring := recurring != ""
			patch.IsRecurring = &isRecurring
			patch.RecurringFrequency = &recurring
		}

		tx, err := root.App().GetTransactions().Update(cmd.Context(), root.UserID(), args[0], patch)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), tx)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated transaction %s\n", tx.ID)
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transaction and reverse its balance effect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App().GetTransactions().Delete(cmd.Context(), root.UserID(), args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %s\n", args[0])
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions as CSV",
	Long: `Export transactions as CSV in a layout "import" reads back. Filters
match "transactions list"; the output defaults to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := query()
		if err != nil {
			return err
		}

		all := []models.Transaction{}
		svc := root.App().GetTransactions()
		for q.Page = 1; ; q.Page++ {
			q.Limit = service.MaxLimit
			result, err := svc.List(cmd.Context(), root.UserID(), q)
			if err != nil {
				return err
			}
			all = append(all, result.Transactions...)
			if q.Page >= result.TotalPages {
				break
			}
		}

		categories, err := root.App().GetCategories().List(cmd.Context(), root.UserID())
		if err != nil {
			return err
		}
		names := make(map[string]string, len(categories.Categories))
		for _, c := range categories.Categories {
			names[c.ID] = c.Name
		}

		w, err := fileutils.CreateOutput(output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer w.Close()

		if err := internalcommon.WriteTransactionsToCSV(w, all, names, root.App().GetConfig().ImportDelimiter()); err != nil {
			return err
		}
		root.App().GetLogger().Info("Exported transactions", logging.F(logging.FieldCount, len(all)))
		return w.Close()
	},
}

// query builds the filter shared by list and export. The end date is a
// whole day.
func query() (service.TransactionQuery, error) {
	q := service.TransactionQuery{AccountID: accountID, Direction: direction, CategoryID: categoryID}
	start, err := common.OptionalDate(from)
	if err != nil {
		return q, err
	}
	if start != nil {
		q.From = dateutils.StartOfDay(*start)
	}
	end, err := common.OptionalDate(to)
	if err != nil {
		return q, err
	}
	if end != nil {
		q.To = dateutils.StartOfDay(*end).AddDate(0, 0, 1)
	}
	return q, nil
}

func init() {
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVarP(&amount, "amount", "a", "", "Amount, always positive")
		c.Flags().StringVarP(&date, "date", "d", "", "Date (default now)")
		c.Flags().StringVar(&description, "description", "", "Description")
		c.Flags().StringVar(&location, "location", "", "Location name")
		c.Flags().StringVar(&recurring, "recurring", "", "Recurring frequency: DAILY, WEEKLY, MONTHLY or YEARLY")
	}
	addCmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	_ = addCmd.MarkFlagRequired("account")

	for _, c := range []*cobra.Command{addCmd, updateCmd, listCmd, exportCmd} {
		c.Flags().StringVarP(&direction, "type", "t", "", "CREDIT or DEBIT")
		c.Flags().StringVar(&categoryID, "category", "", "Category ID")
	}
	for _, c := range []*cobra.Command{listCmd, exportCmd} {
		c.Flags().StringVar(&accountID, "account", "", "Only this account")
		c.Flags().StringVar(&from, "from", "", "Start date (inclusive)")
		c.Flags().StringVar(&to, "to", "", "End date (inclusive)")
	}
	listCmd.Flags().IntVar(&page, "page", service.DefaultPage, "Page number")
	listCmd.Flags().IntVar(&limit, "limit", service.DefaultLimit, "Page size (max 100)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	Cmd.AddCommand(addCmd, listCmd, updateCmd, deleteCmd, exportCmd)
}
