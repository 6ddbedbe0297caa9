// Package ingest implements the ingest command.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/statement-ledger/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest PDF or CSV statements into the ledger",
	Long: `Extract transactions from each statement, skip the ones already in the ledger
and save the others with a predicted category.`,
	Args: cobra.MinimumNArgs(1),
	RunE: ingestFunc,
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	c, err := root.OpenContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	svc := c.GetIngestService()
	for _, path := range args {
		f, err := os.Open(path) // #nosec G304 -- path is a command argument
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		res, err := svc.Ingest(cmd.Context(), filepath.Base(path), f)
		f.Close()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d processed, %d new\n", res.FileName, res.Processed, res.Saved)
	}
	return nil
}
