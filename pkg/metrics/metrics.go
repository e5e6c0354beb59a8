// Package metrics declares the OpenTelemetry instruments recorded by the
// validator. The instruments are exported to Prometheus by the API server.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Outcome labels a validation or a schema refresh.
type Outcome string

const (
	// OutcomeValid is a validation whose result has no errors.
	OutcomeValid Outcome = "valid"
	// OutcomeInvalid is a validation whose result lists errors.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeFailed is a validation or refresh that returned an error.
	OutcomeFailed Outcome = "failed"
	// OutcomeSucceeded is a refresh that installed a new snapshot.
	OutcomeSucceeded Outcome = "succeeded"
)

// Instruments groups the validator's meters.
type Instruments struct {
	validations     metric.Int64Counter
	validationTime  metric.Float64Histogram
	schemaRefreshes metric.Int64Counter
	schemaFetchedAt metric.Int64Gauge
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*Instruments, error) {
	validations, err := meter.Int64Counter("validator.validations",
		metric.WithDescription("Number of document validations by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create validations counter: %w", err)
	}

	validationTime, err := meter.Float64Histogram("validator.validation.duration",
		metric.WithDescription("Time spent resolving and validating a document."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create validation duration histogram: %w", err)
	}

	schemaRefreshes, err := meter.Int64Counter("validator.schema.refreshes",
		metric.WithDescription("Number of schema refresh attempts by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create schema refresh counter: %w", err)
	}

	schemaFetchedAt, err := meter.Int64Gauge("validator.schema.fetched_at",
		metric.WithDescription("Unix time at which the active schema was fetched."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("could not create schema fetched_at gauge: %w", err)
	}

	return &Instruments{
		validations:     validations,
		validationTime:  validationTime,
		schemaRefreshes: schemaRefreshes,
		schemaFetchedAt: schemaFetchedAt,
	}, nil
}

// RecordValidation counts one validation and observes how long it took.
func (i *Instruments) RecordValidation(ctx context.Context, outcome Outcome, took time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", string(outcome)))
	i.validations.Add(ctx, 1, attrs)
	i.validationTime.Record(ctx, took.Seconds(), attrs)
}

// RecordRefresh counts one refresh attempt. fetchedAt is only recorded for a
// successful refresh.
func (i *Instruments) RecordRefresh(ctx context.Context, outcome Outcome, fetchedAt time.Time) {
	i.schemaRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
	if outcome == OutcomeSucceeded {
		i.schemaFetchedAt.Record(ctx, fetchedAt.Unix())
	}
}
