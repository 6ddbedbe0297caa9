// Package transactions implements the transactions command.
package transactions

import (
	"fmt"
	"os"

	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var output string

// Cmd represents the transactions command
var Cmd = &cobra.Command{
	Use:   "transactions",
	Short: "List or export the ledger",
	Long:  `Print every stored transaction as CSV, or write them to --output.`,
	RunE:  transactionsFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Write CSV to this file instead of stdout")
}

func transactionsFunc(cmd *cobra.Command, args []string) error {
	c, err := root.OpenContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	txs, err := c.GetStore().ListTransactions(cmd.Context())
	if err != nil {
		return err
	}

	if output == "" {
		if len(txs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "ledger is empty")
			return nil
		}
		return gocsv.Marshal(txs, cmd.OutOrStdout())
	}

	f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, models.PermissionExportFile) // #nosec G304 -- output path is a command flag
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := gocsv.MarshalFile(&txs, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.GetLogger().Info("Exported transactions",
		logging.Field{Key: logging.FieldFile, Value: output},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return nil
}
