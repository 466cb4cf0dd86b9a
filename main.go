package main

import (
	"os"

	"fjacquet/spendwise/cmd/accounts"
	"fjacquet/spendwise/cmd/categories"
	"fjacquet/spendwise/cmd/categorize"
	importcmd "fjacquet/spendwise/cmd/import"
	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/cmd/rules"
	"fjacquet/spendwise/cmd/search"
	"fjacquet/spendwise/cmd/seed"
	"fjacquet/spendwise/cmd/serve"
	"fjacquet/spendwise/cmd/transactions"
)

func init() {
	root.Cmd.AddCommand(accounts.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(transactions.Cmd)
	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(search.Cmd)
	root.Cmd.AddCommand(seed.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
