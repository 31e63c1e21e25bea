package facematch

import (
	"math"

	"github.com/kozaktomas/facegate/internal/landmark"
)

// symmetryPairs are bilaterally mirrored landmarks used for the quality
// estimate. After normalization the face midline sits at x=0, so a
// symmetric capture has x_left ≈ -x_right for every pair.
var symmetryPairs = [][2]landmark.Label{
	{landmark.LeftEyeOuter, landmark.RightEyeOuter},
	{landmark.LeftEyeInner, landmark.RightEyeInner},
	{landmark.MouthLeft, landmark.MouthRight},
	{landmark.JawLeft, landmark.JawRight},
	{landmark.LeftCheek, landmark.RightCheek},
}

// Combined computes the blended similarity between two normalized sets
// plus the diagnostic quality estimate. When both sets carry the dense
// mesh and the ratio signal is computable, landmark and ratio
// similarities blend by the configured weight; otherwise the landmark
// similarity stands alone. Quality never gates the match decision.
func (s *Scorer) Combined(a, b *Normalized) Score {
	lm := s.LandmarkSimilarity(a, b)

	sim := lm.Score
	if lm.Matched >= s.params.MinMatched && a.Set.Dense && b.Set.Dense {
		if ratio, ok := s.ratioSimilarityValid(a, b); ok {
			w := s.params.BlendLandmark
			sim = lm.Score*w + ratio*(1-w)
		}
	}

	return Score{
		Similarity: sim,
		Quality:    quality(a, lm.Matched, max(a.Set.Len(), b.Set.Len())),
		Matched:    lm.Matched,
	}
}

// ratioSimilarityValid is RatioSimilarity without the neutral fallback:
// the second return is false when the signal carries no information.
func (s *Scorer) ratioSimilarityValid(a, b *Normalized) (float64, bool) {
	if !a.Set.Dense || !b.Set.Dense {
		return 0, false
	}
	ra, okA := ratioVector(a, s.ratios)
	rb, okB := ratioVector(b, s.ratios)
	if !okA || !okB {
		return 0, false
	}
	var sum float64
	for i := range ra {
		sum += math.Abs(ra[i] - rb[i])
	}
	return math.Exp(-sum / float64(len(ra)) * s.params.RatioDecay), true
}

// quality estimates capture quality from bilateral symmetry and
// landmark coverage, both on the query side. 0..1, diagnostics only.
func quality(a *Normalized, matched, total int) float64 {
	var errSum float64
	pairs := 0
	for _, pair := range symmetryPairs {
		l, okL := a.Lookup(pair[0])
		r, okR := a.Lookup(pair[1])
		if !okL || !okR {
			continue
		}
		errSum += math.Abs(l.X + r.X)
		pairs++
	}

	sym := 0.0
	if pairs > 0 {
		sym = clamp01(1 - errSum/float64(pairs))
	}

	coverage := 0.0
	if total > 0 {
		coverage = clamp01(float64(matched) / float64(total))
	}

	return 0.5*sym + 0.5*coverage
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
