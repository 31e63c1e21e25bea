package facematch

import (
	"math"

	"github.com/kozaktomas/facegate/internal/landmark"
)

// neutralRatioScore is returned when the ratio signal carries no
// information (sparse sets or missing anatomical points). 0.5 keeps the
// blend from either rewarding or punishing the comparison.
const neutralRatioScore = 0.5

// RatioSimilarity compares two sets through the fixed list of
// anatomical distance ratios, each normalized by the inter-ocular
// distance. The signal is pose-invariant by construction: ratios are
// scale-normalized distances between stable points, not raw
// coordinates. Only meaningful when both sets carry the dense mesh;
// otherwise neutral.
func (s *Scorer) RatioSimilarity(a, b *Normalized) float64 {
	if !a.Set.Dense || !b.Set.Dense {
		return neutralRatioScore
	}

	ra, okA := ratioVector(a, s.ratios)
	rb, okB := ratioVector(b, s.ratios)
	if !okA || !okB {
		return neutralRatioScore
	}

	var sum float64
	for i := range ra {
		sum += math.Abs(ra[i] - rb[i])
	}
	avg := sum / float64(len(ra))

	return math.Exp(-avg * s.params.RatioDecay)
}

// ratioVector evaluates every ratio definition against one normalized
// set. Fails when the inter-ocular denominator or any referenced point
// is missing.
func ratioVector(n *Normalized, defs []RatioDef) ([]float64, bool) {
	ioA, ioB := InterocularLabels()
	ea, okA := n.Lookup(ioA)
	eb, okB := n.Lookup(ioB)
	if !okA || !okB {
		return nil, false
	}
	denom := landmark.Distance(ea, eb)
	if denom == 0 {
		return nil, false
	}

	out := make([]float64, len(defs))
	for i, d := range defs {
		pa, ok := ratioPoint(n, d.A, d.A2)
		if !ok {
			return nil, false
		}
		pb, ok := ratioPoint(n, d.B, d.B2)
		if !ok {
			return nil, false
		}
		out[i] = landmark.Distance(pa, pb) / denom
	}
	return out, true
}

// ratioPoint resolves a ratio endpoint: a single labeled point, or the
// midpoint of two when a partner label is defined.
func ratioPoint(n *Normalized, l, partner landmark.Label) (landmark.Landmark, bool) {
	p, ok := n.Lookup(l)
	if !ok {
		return landmark.Landmark{}, false
	}
	if partner == "" {
		return p, true
	}
	q, ok := n.Lookup(partner)
	if !ok {
		return landmark.Landmark{}, false
	}
	return landmark.Landmark{
		X: (p.X + q.X) / 2,
		Y: (p.Y + q.Y) / 2,
		Z: (p.Z + q.Z) / 2,
	}, true
}
