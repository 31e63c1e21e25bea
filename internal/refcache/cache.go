// Package refcache holds the on-device reference cache of enrolled
// landmark samples. A cache is built once per refresh cycle, held
// read-only for its whole lifetime and replaced wholesale on the next
// refresh; it is never mutated in place.
package refcache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/facegate/internal/facematch"
	"github.com/kozaktomas/facegate/internal/identity"
	"github.com/kozaktomas/facegate/internal/landmark"
)

// Sample is one stored enrollment capture tied to an identity.
// Immutable once stored; an identity's samples are superseded in bulk
// on re-enrollment, never partially patched.
type Sample struct {
	ID           uuid.UUID
	IdentityID   string
	IdentityName string
	Index        int
	Capture      landmark.Set
	CreatedAt    time.Time
}

// Cache is an immutable, versioned snapshot of all enrollment samples.
// Samples are normalized once at build time so matching never pays the
// normalization cost per query.
type Cache struct {
	version    int
	samples    []Sample
	candidates []facematch.Candidate
	identities int
	builtAt    time.Time
}

// Build validates samples and assembles an immutable cache snapshot.
// Inconsistent data (missing identity, insufficient landmarks,
// duplicate enrollment index) is rejected here, at load time, never
// discovered mid-match.
func Build(version int, samples []Sample) (*Cache, error) {
	seen := make(map[string]map[int]bool)
	candidates := make([]facematch.Candidate, 0, len(samples))

	for i, s := range samples {
		if s.IdentityID == "" {
			return nil, fmt.Errorf("sample %d (%s): empty identity id", i, s.ID)
		}
		if !s.Capture.HasCore() {
			return nil, fmt.Errorf("sample %d (%s) of identity %s: capture is missing core landmarks",
				i, s.ID, s.IdentityID)
		}
		indexes, ok := seen[s.IdentityID]
		if !ok {
			indexes = make(map[int]bool)
			seen[s.IdentityID] = indexes
		}
		if indexes[s.Index] {
			return nil, fmt.Errorf("identity %s: duplicate enrollment index %d", s.IdentityID, s.Index)
		}
		indexes[s.Index] = true

		candidates = append(candidates, facematch.Candidate{
			SampleID:     s.ID.String(),
			IdentityID:   s.IdentityID,
			IdentityName: s.IdentityName,
			Norm:         facematch.Normalize(s.Capture),
		})
	}

	return &Cache{
		version:    version,
		samples:    samples,
		candidates: candidates,
		identities: len(seen),
		builtAt:    time.Now(),
	}, nil
}

// Version returns the cache version. A version bump is the only signal
// consumers use to decide whether to re-pull.
func (c *Cache) Version() int {
	return c.version
}

// SampleCount returns the number of enrollment samples.
func (c *Cache) SampleCount() int {
	return len(c.samples)
}

// IdentityCount returns the number of distinct identities.
func (c *Cache) IdentityCount() int {
	return c.identities
}

// BuiltAt returns the snapshot build time.
func (c *Cache) BuiltAt() time.Time {
	return c.builtAt
}

// Samples returns the raw enrollment samples. Callers must treat the
// slice as read-only.
func (c *Cache) Samples() []Sample {
	return c.samples
}

// Candidates returns every sample prepared for matching. Callers must
// treat the slice as read-only.
func (c *Cache) Candidates() []facematch.Candidate {
	return c.candidates
}

// CandidatesByIdentity returns the prepared samples restricted to the
// given identity ids. Used with the shortlist index.
func (c *Cache) CandidatesByIdentity(ids map[string]bool) []facematch.Candidate {
	out := make([]facematch.Candidate, 0, len(c.candidates))
	for _, cand := range c.candidates {
		if ids[cand.IdentityID] {
			out = append(out, cand)
		}
	}
	return out
}

// FindIdentityByName returns the identity id whose display name folds
// to the given name (case, diacritics and dashes ignored).
func (c *Cache) FindIdentityByName(name string) (id, displayName string, ok bool) {
	want := identity.FoldName(name)
	for _, s := range c.samples {
		if identity.FoldName(s.IdentityName) == want {
			return s.IdentityID, s.IdentityName, true
		}
	}
	return "", "", false
}
