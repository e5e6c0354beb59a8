// Package validation composes the schema provider, the document resolver and
// the XML validator into the long-lived service used by every request surface.
package validation

import (
	"context"
	"validator/pkg/domain"
)

//go:generate mockgen -package mockvalidation -source=interface.go -destination=mock/mockvalidation.go *
type Service interface {
	Validate(ctx context.Context, source domain.DocumentSource) (domain.ValidationResult, error)
	Snapshot() *domain.SchemaSnapshot
	Refresh(ctx context.Context) (*domain.SchemaSnapshot, error)
}
