package domain

import (
	"time"

	"github.com/jacoelho/xsd"
)

// FetchedAtLayout is the fixed human-readable layout used to display when a
// schema was fetched.
const FetchedAtLayout = "2006-01-02 15:04:05 MST"

// SchemaSnapshot is an immutable, point-in-time compiled schema together with
// its provenance. Fingerprint is always the content hash of Raw and Schema is
// always compiled from the same Raw. A snapshot is never mutated after it is
// built; a refresh replaces it wholesale.
type SchemaSnapshot struct {
	// URL is the location the schema was fetched from.
	URL string
	// Raw holds the exact bytes received.
	Raw []byte
	// Schema is the compiled validator. It is safe for concurrent use.
	Schema *xsd.Schema
	// Fingerprint is the lowercase hex content hash of Raw.
	Fingerprint string
	// FetchedAt records when the fetch completed.
	FetchedAt time.Time
}

// FetchedAtString renders FetchedAt in UTC using FetchedAtLayout.
func (s *SchemaSnapshot) FetchedAtString() string {
	if s == nil || s.FetchedAt.IsZero() {
		return ""
	}

	return s.FetchedAt.UTC().Format(FetchedAtLayout)
}
