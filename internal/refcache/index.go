package refcache

import (
	"errors"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/facegate/internal/facematch"
)

// HNSW parameters for the 99-dim signature vectors.
const (
	shortlistMaxNeighbors = 16
)

// ShortlistIndex is an approximate-nearest-neighbor pre-filter over the
// cache's sample signatures. With very large caches a match first asks
// the index for the nearest samples and scores only their identities;
// exact scoring still makes the decision. Built once per snapshot and
// read-only afterwards.
type ShortlistIndex struct {
	graph      *hnsw.Graph[int]
	identities []string // candidate index -> identity id
}

// BuildShortlist indexes every candidate of the cache.
func BuildShortlist(c *Cache) *ShortlistIndex {
	g := hnsw.NewGraph[int]()
	g.M = shortlistMaxNeighbors
	g.Ml = 1.0 / float64(shortlistMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	candidates := c.Candidates()
	identities := make([]string, len(candidates))
	for i := range candidates {
		identities[i] = candidates[i].IdentityID
		g.Add(hnsw.MakeNode(i, Signature(&candidates[i].Norm)))
	}

	return &ShortlistIndex{graph: g, identities: identities}
}

// Nearest returns the identity ids of the k nearest samples to the
// query signature.
func (s *ShortlistIndex) Nearest(query *facematch.Normalized, k int) (map[string]bool, error) {
	if s.graph == nil || len(s.identities) == 0 {
		return nil, errors.New("shortlist index not initialized")
	}

	neighbors := s.graph.Search(Signature(query), k)
	out := make(map[string]bool, len(neighbors))
	for _, n := range neighbors {
		out[s.identities[n.Key]] = true
	}
	return out, nil
}

// Len returns the number of indexed samples.
func (s *ShortlistIndex) Len() int {
	return len(s.identities)
}
