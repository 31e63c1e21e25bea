// Package mock provides an in-memory enrollment provider for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/facegate/internal/refcache"
)

// Provider is an in-memory implementation of refcache.Provider with
// error injection.
type Provider struct {
	mu      sync.RWMutex
	version int
	samples []refcache.Sample

	// Error injection
	VersionError error
	FetchError   error

	// Call counters
	VersionCalls int
	FetchCalls   int
}

// NewProvider creates a provider seeded with the given data set.
func NewProvider(version int, samples []refcache.Sample) *Provider {
	return &Provider{version: version, samples: samples}
}

// SetSamples replaces the data set and bumps the version.
func (p *Provider) SetSamples(samples []refcache.Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.version++
	p.samples = samples
}

// Version returns the current version.
func (p *Provider) Version(ctx context.Context) (int, error) {
	p.mu.Lock()
	p.VersionCalls++
	p.mu.Unlock()
	if p.VersionError != nil {
		return 0, p.VersionError
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version, nil
}

// FetchSamples returns the full data set.
func (p *Provider) FetchSamples(ctx context.Context) (int, []refcache.Sample, error) {
	p.mu.Lock()
	p.FetchCalls++
	p.mu.Unlock()
	if p.FetchError != nil {
		return 0, nil, p.FetchError
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]refcache.Sample, len(p.samples))
	copy(out, p.samples)
	return p.version, out, nil
}
