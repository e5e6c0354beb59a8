package validation

import (
	"context"
	"errors"
	"fmt"
	"time"
	"validator/pkg/document"
	"validator/pkg/domain"
	"validator/pkg/logger"
	"validator/pkg/metrics"
	"validator/pkg/schema"
	"validator/pkg/serrors"
	"validator/pkg/xmlvalidator"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "validator/internal/validation"

// service is the concrete implementation of the Service interface.
type service struct {
	provider    *schema.Provider
	resolver    *document.Resolver
	instruments *metrics.Instruments
	tracer      trace.Tracer
}

// New returns a Service validating against the snapshots held by provider.
func New(provider *schema.Provider, resolver *document.Resolver, instruments *metrics.Instruments) Service {
	return &service{
		provider:    provider,
		resolver:    resolver,
		instruments: instruments,
		tracer:      otel.Tracer(tracerName),
	}
}

// Validate resolves source and checks it against the active schema. The
// snapshot is read once, so a concurrent refresh never changes the schema in
// the middle of a request; the result's fingerprint names the snapshot used.
// Document syntax problems are part of the result, not an error.
func (s *service) Validate(ctx context.Context, source domain.DocumentSource) (domain.ValidationResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "validation.Validate",
		trace.WithAttributes(attribute.String("document.kind", source.Kind().String())))
	defer span.End()

	result, err := s.validate(ctx, source)

	outcome := metrics.OutcomeValid
	switch {
	case err != nil:
		outcome = metrics.OutcomeFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !result.Valid():
		outcome = metrics.OutcomeInvalid
	}
	span.SetAttributes(attribute.String("validation.outcome", string(outcome)))
	s.instruments.RecordValidation(ctx, outcome, time.Since(start))

	return result, err
}

func (s *service) validate(ctx context.Context, source domain.DocumentSource) (domain.ValidationResult, error) {
	snapshot := s.provider.Current()
	if snapshot == nil {
		return domain.ValidationResult{}, serrors.With(serrors.ErrUnavailable, "schema is not loaded")
	}

	doc, err := s.resolve(ctx, source)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return domain.ValidationResult{}, serrors.Wrap(serrors.ErrTimeout, err, "request deadline exceeded")
		}

		return domain.ValidationResult{}, fmt.Errorf("could not resolve document: %w", err)
	}

	result := xmlvalidator.Validate(doc, snapshot)
	logger.Debug(ctx, "document validated",
		zap.String("schemaFingerprint", result.SchemaFingerprint),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

func (s *service) resolve(ctx context.Context, source domain.DocumentSource) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "document.Resolve")
	defer span.End()

	if source.Kind() == domain.DocumentRemote {
		span.SetAttributes(attribute.String("document.url", source.URL()))
	}

	doc, err := s.resolver.Resolve(ctx, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err //nolint: wrapcheck
	}
	span.SetAttributes(attribute.Int("document.bytes", len(doc)))

	return doc, nil
}

// Snapshot returns the active schema snapshot, or nil before the first load.
func (s *service) Snapshot() *domain.SchemaSnapshot {
	return s.provider.Current()
}

// Refresh reloads the schema. A failed refresh leaves the previous snapshot
// in service; the failure is logged, counted and returned.
func (s *service) Refresh(ctx context.Context) (*domain.SchemaSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "schema.Refresh",
		trace.WithAttributes(attribute.String("schema.url", s.provider.URL())))
	defer span.End()

	snapshot, err := s.provider.Refresh(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.instruments.RecordRefresh(ctx, metrics.OutcomeFailed, time.Time{})
		logger.Error(ctx, "could not refresh schema", zap.String("url", s.provider.URL()), zap.Error(err))

		return nil, fmt.Errorf("could not refresh schema: %w", err)
	}

	span.SetAttributes(attribute.String("schema.fingerprint", snapshot.Fingerprint))
	s.instruments.RecordRefresh(ctx, metrics.OutcomeSucceeded, snapshot.FetchedAt)
	logger.Info(ctx, "schema refreshed",
		zap.String("url", snapshot.URL),
		zap.String("fingerprint", snapshot.Fingerprint),
		zap.Time("fetchedAt", snapshot.FetchedAt))

	return snapshot, nil
}
