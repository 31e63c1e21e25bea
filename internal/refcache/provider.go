package refcache

import (
	"context"
	"fmt"
	"log"
)

// Provider fetches the authoritative enrollment data set. The engine
// never performs network or database calls itself; providers are the
// opaque refresh operation of the surrounding system.
type Provider interface {
	// Version returns the current remote cache version.
	Version(ctx context.Context) (int, error)
	// FetchSamples returns the full sample set together with the
	// version it represents.
	FetchSamples(ctx context.Context) (int, []Sample, error)
}

// Refresher pulls enrollment data from a provider into a holder. A
// refresh builds a complete new snapshot and swaps it in atomically;
// matches running against the previous snapshot are unaffected.
type Refresher struct {
	provider     Provider
	holder       *Holder
	snapshotPath string // optional on-disk persistence
}

// NewRefresher wires a provider to a holder. snapshotPath may be empty
// to skip disk persistence.
func NewRefresher(provider Provider, holder *Holder, snapshotPath string) *Refresher {
	return &Refresher{
		provider:     provider,
		holder:       holder,
		snapshotPath: snapshotPath,
	}
}

// Refresh re-pulls the enrollment data if the remote version moved past
// the current snapshot. Returns the active cache and whether a new
// snapshot was installed.
func (r *Refresher) Refresh(ctx context.Context) (*Cache, bool, error) {
	current := r.holder.Snapshot()

	version, err := r.provider.Version(ctx)
	if err != nil {
		return current, false, fmt.Errorf("probing cache version: %w", err)
	}
	if current != nil && version == current.Version() {
		return current, false, nil
	}

	fetchedVersion, samples, err := r.provider.FetchSamples(ctx)
	if err != nil {
		return current, false, fmt.Errorf("fetching enrollment samples: %w", err)
	}

	cache, err := Build(fetchedVersion, samples)
	if err != nil {
		return current, false, fmt.Errorf("building cache snapshot: %w", err)
	}

	r.holder.Swap(cache)

	if r.snapshotPath != "" {
		if err := SaveSnapshot(r.snapshotPath, cache); err != nil {
			// The in-memory swap already succeeded; a persistence
			// failure only costs the next cold start.
			log.Printf("warning: failed to persist cache snapshot: %v", err)
		}
	}

	return cache, true, nil
}
