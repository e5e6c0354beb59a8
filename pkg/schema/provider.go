// Package schema acquires the remote XSD, compiles it and keeps the current
// snapshot for concurrent validations.
package schema

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
	"validator/pkg/domain"
	"validator/pkg/remote"
	"validator/pkg/serrors"
)

// Options configure a Provider.
type Options struct {
	// URL is the location of the schema.
	URL string
	// Now returns the current time; it defaults to time.Now.
	Now func() time.Time
}

// Provider owns the process-wide schema snapshot. Readers call Current and
// keep the returned pointer for the whole request; Refresh swaps in a new
// snapshot atomically, so an in-flight validation never sees a mix of two
// versions.
type Provider struct {
	fetcher remote.Fetcher
	url     string
	now     func() time.Time

	// mu serializes refreshes; readers never take it.
	mu      sync.Mutex
	current atomic.Pointer[domain.SchemaSnapshot]
}

// NewProvider returns a Provider with no snapshot loaded. Call Refresh (or
// Store) before serving validations.
func NewProvider(fetcher remote.Fetcher, opts Options) *Provider {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Provider{
		fetcher: fetcher,
		url:     opts.URL,
		now:     now,
	}
}

// URL returns the configured schema location.
func (p *Provider) URL() string { return p.url }

// Current returns the active snapshot, or nil when none was loaded yet.
func (p *Provider) Current() *domain.SchemaSnapshot {
	return p.current.Load()
}

// Store installs an externally obtained snapshot, e.g. one fetched ahead of
// time by the caller.
func (p *Provider) Store(snapshot *domain.SchemaSnapshot) error {
	if snapshot == nil || snapshot.Schema == nil {
		return errors.New("incomplete schema snapshot")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current.Store(snapshot)

	return nil
}

// Refresh fetches and compiles the schema again and replaces the active
// snapshot. On failure the previous snapshot stays active and the error is
// returned; nothing partial is ever installed.
func (p *Provider) Refresh(ctx context.Context) (*domain.SchemaSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot, err := fetch(ctx, p.fetcher, p.url, p.now)
	if err != nil {
		return nil, err
	}
	p.current.Store(snapshot)

	return snapshot, nil
}

// Fetch retrieves the schema at url and builds a snapshot from it. Transport
// failures carry serrors.ErrFetch; a body that does not compile carries
// serrors.ErrSchemaParse.
func Fetch(ctx context.Context, fetcher remote.Fetcher, url string) (*domain.SchemaSnapshot, error) {
	return fetch(ctx, fetcher, url, time.Now)
}

func fetch(ctx context.Context,
	fetcher remote.Fetcher,
	url string,
	now func() time.Time) (*domain.SchemaSnapshot, error) {
	raw, err := fetcher.Get(ctx, url)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrFetch, err, "could not fetch schema")
	}

	compiled, err := Compile(url, raw)
	if err != nil {
		return nil, err
	}

	return &domain.SchemaSnapshot{
		URL:         url,
		Raw:         raw,
		Schema:      compiled,
		Fingerprint: Fingerprint(raw),
		FetchedAt:   now(),
	}, nil
}
