// Package main provides the CLI entrypoint for the schedule validator.
// It wires subcommands (serve, validate, schema, config), loads configuration,
// and initializes logging.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"validator/internal/config"
	"validator/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRootCommand builds the command tree. cfg is filled in before any
// subcommand runs.
func newRootCommand(cfg *config.Config) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "validator",
		Short:         "Validates schedule.xml documents against the schedule XSD",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("could not load config file: %w", err)
			}
			*cfg = *loaded

			if err := logger.Setup(cfg.Environment, cfg.LogLevel); err != nil {
				return fmt.Errorf("could not set up logger: %w", err)
			}

			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "Config File Path")

	rootCmd.AddCommand(
		serveCommand(cfg),
		validateCommand(cfg),
		schemaCommand(cfg),
		configCommand(cfg),
	)

	return rootCmd
}

// main executes the CLI. Any failure, including an invalid document passed
// to validate, exits with status 1.
func main() {
	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	err := newRootCommand(&config.Config{}).ExecuteContext(ctx)
	_ = logger.Get(ctx).Sync()
	if err != nil {
		if !errors.Is(err, errInvalidDocument) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1) //nolint: gocritic
	}
}
