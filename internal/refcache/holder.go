package refcache

import "sync/atomic"

// Holder publishes the current cache snapshot to concurrent readers.
// The snapshot is replaced by a single pointer swap, so a refresh in
// progress is never visible to in-flight matches: they keep scoring
// against the snapshot they grabbed.
type Holder struct {
	ptr atomic.Pointer[Cache]
}

// NewHolder creates a holder, optionally seeded with an initial
// snapshot.
func NewHolder(initial *Cache) *Holder {
	h := &Holder{}
	if initial != nil {
		h.ptr.Store(initial)
	}
	return h
}

// Snapshot returns the current cache, or nil when nothing was loaded
// yet.
func (h *Holder) Snapshot() *Cache {
	return h.ptr.Load()
}

// Swap atomically replaces the published snapshot.
func (h *Holder) Swap(c *Cache) {
	h.ptr.Store(c)
}
