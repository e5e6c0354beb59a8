package main

import (
	"context"
	"errors"
	"fmt"
	"time"
	"validator/internal/config"
	"validator/internal/validation"
	"validator/pkg/document"
	"validator/pkg/logger"
	"validator/pkg/metrics"
	"validator/pkg/remote"
	"validator/pkg/schema"
	"validator/pkg/serrors"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	userAgent = "schedule-validator/1.0"
	meterName = "validator"
)

// schemaClient returns the client used to fetch the schema.
func schemaClient(cfg *config.Config) *remote.Client {
	return remote.New(remote.NewHTTPClient(), remote.Options{
		Timeout:      cfg.Schema.Timeout,
		MaxBodyBytes: cfg.Schema.MaxBytes,
		UserAgent:    userAgent,
	})
}

// newService builds the validation service; the schema is not loaded yet.
func newService(cfg *config.Config, meter metric.Meter) (validation.Service, error) {
	instruments, err := metrics.New(meter)
	if err != nil {
		return nil, fmt.Errorf("could not create instruments: %w", err)
	}

	documentClient := remote.New(remote.NewHTTPClient(), remote.Options{
		Timeout:      cfg.Document.Timeout,
		MaxBodyBytes: cfg.Document.MaxBytes,
		UserAgent:    userAgent,
	})
	provider := schema.NewProvider(schemaClient(cfg), schema.Options{URL: cfg.Schema.URL})

	return validation.New(provider, document.NewResolver(documentClient), instruments), nil
}

// startupBackOff allows attempts tries in total with exponential delays.
func startupBackOff(attempts uint64) backoff.BackOff {
	if attempts == 0 {
		attempts = 1
	}

	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), attempts-1)
}

// loadSchema performs the initial schema load, retrying fetch failures
// according to b. A schema that does not compile is not retried.
func loadSchema(ctx context.Context, service validation.Service, b backoff.BackOff) error {
	operation := func() error {
		_, err := service.Refresh(ctx)
		if errors.Is(err, serrors.ErrSchemaParse) {
			return backoff.Permanent(err)
		}

		return err //nolint: wrapcheck
	}
	notify := func(err error, next time.Duration) {
		logger.Warn(ctx, "could not load schema, retrying", zap.Duration("retryIn", next), zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("could not load schema: %w", err)
	}

	return nil
}
