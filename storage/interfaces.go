package storage

import (
	"context"

	"github.com/casavia/rentmatch/core"
)

// CacheRepository provides operations for one embedding-cache namespace
// (text or image). Entries are only ever added or overwritten; there is
// no per-entry eviction and no TTL. A stored CacheEntry with Failed=true
// is the permanent null sentinel: the input is known to be unembeddable
// and must not be retried.
// Implementations must be thread-safe and support concurrent access.
type CacheRepository interface {
	// Get retrieves the entry for a fingerprint.
	// Returns ErrNotFound if the fingerprint has never been recorded.
	Get(ctx context.Context, fp core.Fingerprint) (*core.CacheEntry, error)

	// Put stores the entry for a fingerprint, overwriting any previous
	// value. Writes are durable once Put returns.
	Put(ctx context.Context, fp core.Fingerprint, entry *core.CacheEntry) error

	// Count reports the number of entries in the namespace.
	Count(ctx context.Context) (int, error)

	// Clear removes every entry in the namespace. Fingerprints identify
	// inputs, not models, so a model change invalidates the whole
	// namespace at once.
	Clear(ctx context.Context) error
}

// CorpusRepository persists the built corpus: listings keyed by row index
// plus a manifest describing the completed build. Row order is the
// alignment contract for the vector indices; rows are written in order
// and read back in the same order, never reordered.
type CorpusRepository interface {
	// PutListings writes listings at consecutive row indices starting at
	// startRow. Each listing must already carry its embeddings.
	PutListings(ctx context.Context, startRow int, listings []*core.Listing) error

	// PutManifest stores the build manifest. A build calls this exactly
	// once, after its final PutListings, so a present manifest implies
	// every row it counts is present too.
	PutManifest(ctx context.Context, m *core.Manifest) error

	// GetManifest retrieves the manifest.
	// Returns ErrNotFound when no completed build exists.
	GetManifest(ctx context.Context) (*core.Manifest, error)

	// LoadListings reads back all rows in row order. Returns
	// ErrCorpusMisaligned if the stored row keys are not the exact
	// sequence 0..n-1.
	LoadListings(ctx context.Context) ([]*core.Listing, error)
}
