// Package search finds transactions, accounts and categories by text
package search

import (
	"fmt"
	"strings"

	"fjacquet/spendwise/cmd/common"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/service"

	"github.com/spf13/cobra"
)

var asJSON bool

// Cmd represents the search command
var Cmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search transactions, accounts and categories",
	Long: fmt.Sprintf(`Search transaction descriptions, account names and category names,
case-insensitively. At most %d transactions (newest first), %d accounts and
%d categories are shown. Queries shorter than %d characters match nothing.

Example:
  spendwise search coffee`,
		service.SearchTransactionLimit, service.SearchAccountLimit,
		service.SearchCategoryLimit, service.MinSearchLength),
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the results as JSON")
}

func run(cmd *cobra.Command, args []string) error {
	res, err := root.App().GetSearch().Search(cmd.Context(), root.UserID(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(cmd.OutOrStdout(), res)
	}

	out := cmd.OutOrStdout()
	if len(res.Transactions)+len(res.Accounts)+len(res.Categories) == 0 {
		_, err = fmt.Fprintln(out, "No results")
		return err
	}

	tw := common.NewTable(out)
	for _, tx := range res.Transactions {
		fmt.Fprintf(tw, "transaction\t%s\t%s\t%s\n", dateutils.ToISODate(tx.Date), common.Signed(tx), tx.Description)
	}
	for _, a := range res.Accounts {
		fmt.Fprintf(tw, "account\t%s\t%s\t%s\n", a.ID, a.Type, a.Name)
	}
	for _, c := range res.Categories {
		fmt.Fprintf(tw, "category\t%s\t\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}
