package main

import (
	"fmt"
	"validator/internal/config"
	"validator/pkg/schema"

	"github.com/spf13/cobra"
)

func schemaCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Fetches and compiles the schema and prints its fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := schema.Fetch(cmd.Context(), schemaClient(cfg), cfg.Schema.URL)
			if err != nil {
				return fmt.Errorf("could not load schema: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "URL:         %s\nFingerprint: %s\nFetched at:  %s\n",
				snapshot.URL, snapshot.Fingerprint, snapshot.FetchedAtString())

			return err //nolint: wrapcheck
		},
	}

	return cmd
}
