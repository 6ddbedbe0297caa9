// Package parse implements the parse command.
package parse

import (
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/statement-ledger/cmd/root"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Print the transactions extracted from a statement",
	Long: `Run the extractor on a statement and print the candidates as CSV.
Nothing is categorized or saved.`,
	Args: cobra.ExactArgs(1),
	RunE: parseFunc,
}

func parseFunc(cmd *cobra.Command, args []string) error {
	c, err := root.OpenContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	f, err := os.Open(args[0]) // #nosec G304 -- path is a command argument
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	candidates, err := c.GetIngestService().Extract(cmd.Context(), filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no transactions found")
		return nil
	}
	return gocsv.Marshal(candidates, cmd.OutOrStdout())
}
