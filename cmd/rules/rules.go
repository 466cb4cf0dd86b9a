// Package rules handles categorization rule commands
package rules

import (
	"fmt"

	"fjacquet/spendwise/cmd/common"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	name       string
	categoryID string
	matchField string
	pattern    string
	minAmount  string
	maxAmount  string
	priority   int
	inactive   bool
	asJSON     bool
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage categorization rules",
	Long: `Manage categorization rules. Active rules are evaluated by descending
priority, oldest first on ties; the first match sets the category.

Match fields:
  DESCRIPTION   comma-separated keywords, case-insensitive substring match
  AMOUNT        "15", ">=10", "<20" or a range "10-20" on the absolute amount
  AMOUNT_RANGE  same as AMOUNT, or use --min/--max
  DATE          weekday, weekend, a day name, a month, a day "15" or "1-10"`,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a rule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lo, hi, err := bounds()
		if err != nil {
			return err
		}
		in := service.RuleInput{
			CategoryID:   categoryID,
			Name:         name,
			MatchField:   matchField,
			MatchPattern: pattern,
			MinAmount:    lo,
			MaxAmount:    hi,
		}
		if cmd.Flags().Changed("priority") {
			in.Priority = &priority
		}
		if inactive {
			active := false
			in.IsActive = &active
		}

		r, err := root.App().GetRules().Create(cmd.Context(), root.UserID(), in)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), r)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s (%s)\n", r.Name, r.ID)
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := root.App().GetRules().List(cmd.Context(), root.UserID())
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), list)
		}

		tw := common.NewTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tPRIORITY\tACTIVE\tNAME\tFIELD\tPATTERN\tCATEGORY")
		for _, r := range list {
			fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\t%s\t%s\n",
				r.ID, r.Priority, r.IsActive, r.Name, r.MatchField, describe(r), r.CategoryID)
		}
		return tw.Flush()
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var patch service.RulePatch
		if flags.Changed("name") {
			patch.Name = &name
		}
		if flags.Changed("category") {
			patch.CategoryID = &categoryID
		}
		if flags.Changed("field") {
			patch.MatchField = &matchField
		}
		if flags.Changed("pattern") {
			patch.MatchPattern = &pattern
		}
		if flags.Changed("priority") {
			patch.Priority = &priority
		}
		if flags.Changed("inactive") {
			active := !inactive
			patch.IsActive = &active
		}
		lo, hi, err := bounds()
		if err != nil {
			return err
		}
		patch.MinAmount, patch.MaxAmount = lo, hi

		r, err := root.App().GetRules().Update(cmd.Context(), root.UserID(), args[0], patch)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), r)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated rule %s\n", r.ID)
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App().GetRules().Delete(cmd.Context(), root.UserID(), args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
		return err
	},
}

func bounds() (lo, hi *decimal.Decimal, err error) {
	if lo, err = common.OptionalDecimal(minAmount); err != nil {
		return nil, nil, err
	}
	if hi, err = common.OptionalDecimal(maxAmount); err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}

func describe(r models.CategorizationRule) string {
	if r.MinAmount == nil && r.MaxAmount == nil {
		return r.MatchPattern
	}
	lo, hi := "", ""
	if r.MinAmount != nil {
		lo = r.MinAmount.String()
	}
	if r.MaxAmount != nil {
		hi = r.MaxAmount.String()
	}
	return lo + ".." + hi
}

func init() {
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVarP(&name, "name", "n", "", "Rule name")
		c.Flags().StringVar(&categoryID, "category", "", "Category ID assigned on match")
		c.Flags().StringVarP(&matchField, "field", "f", string(models.MatchDescription), "Match field: DESCRIPTION, AMOUNT, AMOUNT_RANGE or DATE")
		c.Flags().StringVarP(&pattern, "pattern", "p", "", "Match pattern")
		c.Flags().StringVar(&minAmount, "min", "", "Minimum absolute amount (inclusive)")
		c.Flags().StringVar(&maxAmount, "max", "", "Maximum absolute amount (inclusive)")
		c.Flags().IntVar(&priority, "priority", models.DefaultRulePriority, "Priority; higher runs first")
		c.Flags().BoolVar(&inactive, "inactive", false, "Create or mark the rule as inactive")
	}
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("category")

	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	Cmd.AddCommand(addCmd, listCmd, updateCmd, deleteCmd)
}
