package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"validator/internal/config"
	"validator/pkg/domain"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/noop"
)

// errInvalidDocument is returned by validate when the document has errors.
// The errors have been printed already.
var errInvalidDocument = errors.New("document is invalid")

type schemaOutput struct {
	URL         string `json:"url"`
	Fingerprint string `json:"fingerprint"`
	FetchedAt   string `json:"fetchedAt"`
}

type validateOutput struct {
	Valid  bool         `json:"valid"`
	Errors []string     `json:"errors"`
	Schema schemaOutput `json:"schema"`
}

// readSource interprets the validate argument: "-" reads stdin, an http(s)
// URL is fetched, anything else is a file path.
func readSource(stdin io.Reader, arg string) (domain.DocumentSource, error) {
	switch {
	case arg == "-":
		body, err := io.ReadAll(stdin)
		if err != nil {
			return domain.DocumentSource{}, fmt.Errorf("could not read stdin: %w", err)
		}

		return domain.InlineDocument(body), nil
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return domain.RemoteDocument(arg), nil
	default:
		body, err := os.ReadFile(arg)
		if err != nil {
			return domain.DocumentSource{}, fmt.Errorf("could not read document: %w", err)
		}

		return domain.InlineDocument(body), nil
	}
}

func writeResult(w io.Writer, out validateOutput, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("could not encode result: %w", err)
		}

		return nil
	}

	if out.Valid {
		_, err := fmt.Fprintln(w, "no errors")

		return err //nolint: wrapcheck
	}
	for _, msg := range out.Errors {
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err //nolint: wrapcheck
		}
	}

	return nil
}

func validateCommand(cfg *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <file|url|->",
		Short: "Validates a single document and prints its errors",
		Long: "Validates a single document and prints its errors, one per line.\n" +
			"The exit status is 1 when the document is invalid.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			source, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			service, err := newService(cfg, noop.NewMeterProvider().Meter(meterName))
			if err != nil {
				return err
			}
			if err := loadSchema(ctx, service, startupBackOff(cfg.Schema.StartupAttempts)); err != nil {
				return err
			}

			result, err := service.Validate(ctx, source)
			if err != nil {
				return fmt.Errorf("could not validate document: %w", err)
			}

			out := validateOutput{Valid: result.Valid(), Errors: result.Errors}
			if out.Errors == nil {
				out.Errors = []string{}
			}
			if snapshot := service.Snapshot(); snapshot != nil {
				out.Schema = schemaOutput{
					URL:         snapshot.URL,
					Fingerprint: snapshot.Fingerprint,
					FetchedAt:   snapshot.FetchedAtString(),
				}
			}

			if err := writeResult(cmd.OutOrStdout(), out, asJSON); err != nil {
				return err
			}
			if !out.Valid {
				return errInvalidDocument
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}
