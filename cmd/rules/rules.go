// Package rules implements the rules command.
package rules

import (
	"fmt"

	"fjacquet/statement-ledger/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "List learned rules in match order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.OpenContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		rules, err := c.GetStore().ListRules(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range rules {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", r.ID, r.Keyword, r.Category)
		}
		return nil
	},
}
