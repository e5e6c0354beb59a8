// Package remote retrieves schema and document bodies over HTTP(S) with
// bounded time and size.
package remote

import "context"

// Fetcher retrieves the body of the resource at a URL.
//
//go:generate mockgen -package mockremote -source=interface.go -destination=mock/mockremote.go *
type Fetcher interface {
	// Get performs a GET against rawURL and returns the full response body.
	// Failures carry the serrors.ErrFetch kind.
	Get(ctx context.Context, rawURL string) ([]byte, error)
}
