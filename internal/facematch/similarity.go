package facematch

import "math"

// Scorer compares normalized landmark sets using a weight table and
// calibration parameters. Scorers are immutable and safe for concurrent
// use.
type Scorer struct {
	params Params
	table  *WeightTable
	ratios []RatioDef
}

// NewScorer creates a scorer with the given parameters and the embedded
// weight table.
func NewScorer(params Params) *Scorer {
	return &Scorer{
		params: params,
		table:  DefaultWeights(),
		ratios: DefaultRatios(),
	}
}

// Params returns the scorer's calibration parameters.
func (s *Scorer) Params() Params {
	return s.params
}

// LandmarkSimilarity computes the weighted point-distance similarity
// between two normalized sets. Every landmark of a with a label match in
// b contributes its 3D distance scaled by the label's importance
// weight; the weighted average maps to similarity through exponential
// decay. Comparisons matching fewer than MinMatched points are invalid
// and score 0 regardless of the numbers.
func (s *Scorer) LandmarkSimilarity(a, b *Normalized) Similarity {
	var weightedSum, totalWeight float64
	matched := 0

	for _, p := range a.Set.Points {
		q, ok := b.byLabel[p.Label]
		if !ok {
			continue
		}
		w := s.table.Weight(p.Label)
		dx := p.X - q.X
		dy := p.Y - q.Y
		dz := p.Z - q.Z
		weightedSum += math.Sqrt(dx*dx+dy*dy+dz*dz) * w
		totalWeight += w
		matched++
	}

	if matched < s.params.MinMatched || totalWeight == 0 {
		return Similarity{Score: 0, Matched: matched}
	}

	avg := weightedSum / totalWeight
	return Similarity{
		Score:   math.Exp(-avg * s.params.LandmarkDecay),
		Matched: matched,
	}
}
