// Package document turns a submitted document source into the raw bytes to
// validate.
package document

import (
	"context"
	"fmt"
	"validator/pkg/domain"
	"validator/pkg/remote"
)

// Resolver produces document bytes from a domain.DocumentSource.
type Resolver struct {
	fetcher remote.Fetcher
}

// NewResolver returns a Resolver fetching remote documents with fetcher.
func NewResolver(fetcher remote.Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve returns the document bytes for source. Inline bodies are returned
// unchanged without touching the network; remote documents are fetched, and
// failures carry the serrors.ErrFetch kind.
func (r *Resolver) Resolve(ctx context.Context, source domain.DocumentSource) ([]byte, error) {
	switch source.Kind() {
	case domain.DocumentInline:
		return source.Body(), nil
	case domain.DocumentRemote:
		body, err := r.fetcher.Get(ctx, source.URL())
		if err != nil {
			return nil, fmt.Errorf("could not fetch document: %w", err)
		}

		return body, nil
	default:
		return nil, fmt.Errorf("unknown document source kind %d", source.Kind())
	}
}
