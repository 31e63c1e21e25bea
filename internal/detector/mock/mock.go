// Package mock provides an in-memory detector for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/facegate/internal/landmark"
)

// Detector is an in-memory implementation of detector.Detector with
// error injection.
type Detector struct {
	mu sync.Mutex

	// Result is returned from Detect unless Err is set.
	Result landmark.Set
	Err    error

	// DetectCalls counts invocations.
	DetectCalls int
}

// Detect returns the configured result or error.
func (d *Detector) Detect(ctx context.Context, imageData []byte) (landmark.Set, error) {
	d.mu.Lock()
	d.DetectCalls++
	d.mu.Unlock()
	if d.Err != nil {
		return landmark.Set{}, d.Err
	}
	return d.Result, nil
}
