// Package reset implements the reset command.
package reset

import (
	"errors"
	"fmt"

	"fjacquet/statement-ledger/cmd/root"

	"github.com/spf13/cobra"
)

var confirmed bool

// Cmd represents the reset command
var Cmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every transaction",
	Long:  `Delete all stored transactions. Categories and learned rules are kept.`,
	RunE:  resetFunc,
}

func init() {
	Cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion")
}

func resetFunc(cmd *cobra.Command, args []string) error {
	if !confirmed {
		return errors.New("refusing to delete transactions without --yes")
	}

	c, err := root.OpenContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.GetStore().ResetTransactions(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d transactions\n", n)
	return nil
}
