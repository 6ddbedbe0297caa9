package main

import (
	"fmt"
	"os"

	"fjacquet/statement-ledger/cmd/categories"
	"fjacquet/statement-ledger/cmd/categorize"
	"fjacquet/statement-ledger/cmd/correct"
	"fjacquet/statement-ledger/cmd/ingest"
	"fjacquet/statement-ledger/cmd/parse"
	"fjacquet/statement-ledger/cmd/reset"
	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/cmd/rules"
	"fjacquet/statement-ledger/cmd/serve"
	"fjacquet/statement-ledger/cmd/transactions"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(correct.Cmd)
	root.Cmd.AddCommand(transactions.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(reset.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
