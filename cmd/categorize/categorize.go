// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"

	"fjacquet/statement-ledger/cmd/root"

	"github.com/spf13/cobra"
)

var description string

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a single transaction description",
	Long: `Run the rule and AI tiers on one description and print the category
with the tier that decided. The ledger is not modified.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Transaction description to categorize")
	_ = Cmd.MarkFlagRequired("description")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.OpenContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	res := c.GetCategorizer().Categorize(cmd.Context(), description)
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Category, res.Strategy)
	return nil
}
