// Package accounts handles bank account commands
package accounts

import (
	"fmt"

	"fjacquet/spendwise/cmd/common"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/currencyutils"
	"fjacquet/spendwise/internal/service"

	"github.com/spf13/cobra"
)

var (
	name        string
	accountType string
	currency    string
	balance     string
	description string
	asJSON      bool
)

// Cmd represents the accounts command
var Cmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage bank accounts",
	Long: `Manage bank accounts and inspect their balances.

Balances move automatically as transactions are added, changed, deleted
or imported.`,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opening, err := common.OptionalDecimal(balance)
		if err != nil {
			return err
		}
		a, err := root.App().GetAccounts().Create(cmd.Context(), root.UserID(), service.AccountInput{
			Name:        name,
			Type:        accountType,
			Currency:    currency,
			Balance:     opening,
			Description: description,
		})
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), a)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created account %s (%s)\n", a.Name, a.ID)
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := root.App().GetAccounts().List(cmd.Context(), root.UserID())
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), list)
		}

		tw := common.NewTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE\tCURRENCY")
		for _, a := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, currencyutils.FormatAmount(a.Balance, a.Currency), a.Currency)
		}
		return tw.Flush()
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch service.AccountPatch
		flags := cmd.Flags()
		if flags.Changed("name") {
			patch.Name = &name
		}
		if flags.Changed("type") {
			patch.Type = &accountType
		}
		if flags.Changed("currency") {
			patch.Currency = &currency
		}
		if flags.Changed("description") {
			patch.Description = &description
		}
		if flags.Changed("balance") {
			b, err := common.OptionalDecimal(balance)
			if err != nil {
				return err
			}
			patch.Balance = b
		}

		a, err := root.App().GetAccounts().Update(cmd.Context(), root.UserID(), args[0], patch)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), a)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated account %s\n", a.ID)
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account and its transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App().GetAccounts().Delete(cmd.Context(), root.UserID(), args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", args[0])
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVarP(&name, "name", "n", "", "Account name")
		c.Flags().StringVarP(&accountType, "type", "t", "", "Account type, e.g. CHECKING or SAVINGS")
		c.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency code (default USD)")
		c.Flags().StringVarP(&balance, "balance", "b", "", "Balance")
		c.Flags().StringVarP(&description, "description", "d", "", "Free-form description")
	}
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("type")

	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	Cmd.AddCommand(addCmd, listCmd, updateCmd, deleteCmd)
}
