// Package categories handles category commands
package categories

import (
	"fmt"

	"fjacquet/spendwise/cmd/common"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/service"

	"github.com/spf13/cobra"
)

var (
	name   string
	color  string
	parent string
	asJSON bool
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage spending categories",
	Long: `Manage spending categories. A category may have a parent, which groups
it in the tree shown by "categories list".

Deleting a category deletes its sub-categories and rules; transactions keep
existing without a category.`,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.CategoryInput{Name: name, Color: color}
		if parent != "" {
			in.ParentID = &parent
		}
		c, err := root.App().GetCategories().Create(cmd.Context(), root.UserID(), in)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), c)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", c.Name, c.ID)
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the category tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := root.App().GetCategories().List(cmd.Context(), root.UserID())
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), list)
		}

		tw := common.NewTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tNAME\tCOLOR")
		for _, node := range list.Tree {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", node.ID, node.Name, node.Color)
			for _, child := range node.Children {
				fmt.Fprintf(tw, "%s\t  └ %s\t%s\n", child.ID, child.Name, child.Color)
			}
		}
		return tw.Flush()
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename, recolor or move a category",
	Long:  `Rename, recolor or move a category. Pass --parent "" to make it a root.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch service.CategoryPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &name
		}
		if cmd.Flags().Changed("color") {
			patch.Color = &color
		}
		if cmd.Flags().Changed("parent") {
			patch.ParentID = &parent
		}
		c, err := root.App().GetCategories().Update(cmd.Context(), root.UserID(), args[0], patch)
		if err != nil {
			return err
		}
		if asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), c)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s\n", c.ID)
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App().GetCategories().Delete(cmd.Context(), root.UserID(), args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVarP(&name, "name", "n", "", "Category name")
		c.Flags().StringVar(&color, "color", "", "Display color, e.g. #22c55e")
		c.Flags().StringVarP(&parent, "parent", "p", "", "Parent category ID")
	}
	_ = addCmd.MarkFlagRequired("name")

	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	Cmd.AddCommand(addCmd, listCmd, updateCmd, deleteCmd)
}
