// Package seed loads and saves the YAML seed file
package seed

import (
	"fmt"

	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/store"

	"github.com/spf13/cobra"
)

var (
	file   string
	export bool
)

// Cmd represents the seed command
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Load accounts, categories and rules from a YAML file",
	Long: `Load accounts, categories and rules from a YAML seed file. Entries are
matched by name, case-insensitively, so running seed twice creates nothing
new. Category keywords become DESCRIPTION rules named "<category> keywords".

With --export the current data is written to the file instead.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (default: seed.file from the configuration)")
	Cmd.Flags().BoolVar(&export, "export", false, "Write current data to the seed file")
}

func run(cmd *cobra.Command, args []string) error {
	app := root.App()
	seeds := app.GetSeedStore()
	if file != "" {
		seeds = store.NewSeedStore(file, app.GetLogger())
	}

	if export {
		doc, err := app.GetSeeder().Export(cmd.Context(), root.UserID())
		if err != nil {
			return err
		}
		if err := seeds.Save(doc); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d accounts, %d categories and %d rules to %s\n",
			len(doc.Accounts), len(doc.Categories), len(doc.Rules), seeds.File)
		return err
	}

	doc, err := seeds.Load()
	if err != nil {
		return err
	}
	if doc.Empty() {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to seed")
		return err
	}

	res, err := app.GetSeeder().Apply(cmd.Context(), root.UserID(), doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %d accounts, %d categories and %d rules (%d already present)\n",
		res.Accounts, res.Categories, res.Rules, res.Skipped)
	return err
}
