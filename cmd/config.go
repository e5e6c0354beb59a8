package main

import (
	"fmt"
	"validator/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCommand prints the effective configuration, after defaults and
// environment overrides, as YAML.
func configCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Prints the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("could not encode config: %w", err)
			}

			return enc.Close() //nolint: wrapcheck
		},
	}

	return cmd
}
