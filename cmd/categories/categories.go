// Package categories implements the categories command.
package categories

import (
	"fmt"

	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.OpenContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		names, err := store.CategoryNames(cmd.Context(), c.GetStore())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
