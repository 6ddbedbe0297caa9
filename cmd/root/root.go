// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"fjacquet/statement-ledger/internal/config"
	"fjacquet/statement-ledger/internal/container"

	"github.com/spf13/cobra"
)

var (
	// ConfigFile overrides the config.yaml search.
	ConfigFile string
	// LogLevel overrides log.level from the configuration.
	LogLevel string

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-ledger",
		Short: "Ingest bank statements into a categorized ledger.",
		Long: `statement-ledger reads PDF and CSV bank statements, stores new transactions
in a local ledger and categorizes them with learned rules and an optional AI model.
Corrections teach the ledger new rules.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.LoadEnv(".")
			return err
		},
	}
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default: config.yaml in ., .statement-ledger or $HOME/.statement-ledger)")
	Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// LoadConfig loads the configuration and applies the command-line overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfigFromFile(ConfigFile)
	if err != nil {
		return nil, err
	}
	if LogLevel != "" {
		cfg.Log.Level = LogLevel
	}
	return cfg, nil
}

// OpenContainer builds the application container. Callers must Close it.
func OpenContainer(ctx context.Context, opts ...container.Option) (*container.Container, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return container.NewContainer(ctx, cfg, opts...)
}
