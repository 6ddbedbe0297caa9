// Package correct implements the correct command.
package correct

import (
	"fmt"

	"fjacquet/statement-ledger/cmd/root"

	"github.com/spf13/cobra"
)

var (
	id       int64
	category string
)

// Cmd represents the correct command
var Cmd = &cobra.Command{
	Use:   "correct",
	Short: "Correct the category of a transaction",
	Long: `Set the category of a stored transaction. The ledger learns a rule keyed by
the transaction's description, so later statements with the same text get the
corrected category.`,
	RunE: correctFunc,
}

func init() {
	Cmd.Flags().Int64Var(&id, "id", 0, "Transaction id")
	Cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	_ = Cmd.MarkFlagRequired("id")
	_ = Cmd.MarkFlagRequired("category")
}

func correctFunc(cmd *cobra.Command, args []string) error {
	c, err := root.OpenContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	tx, err := c.GetIngestService().Correct(cmd.Context(), id, category)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "transaction %d: %s\n", tx.ID, tx.Category)
	return nil
}
