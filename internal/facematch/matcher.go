package facematch

import (
	"math"
	"sort"

	"github.com/kozaktomas/facegate/internal/landmark"
)

// maxFinalScore caps per-identity scores below absolute certainty; no
// amount of vote boosting may push a match to 1.0.
const maxFinalScore = 0.98

// consistencySpread is the relative spread of the top-3 sample scores
// under which the flat consistency bonus applies.
const consistencySpread = 0.05

// identityScores collects per-sample comparison results for one
// identity during aggregation.
type identityScores struct {
	id          string
	name        string
	scores      []float64
	bestMatched int     // matched landmark count of the best-scoring sample
	bestQuality float64 // quality of the best-scoring sample
}

// Match scores a query capture against every candidate sample and
// aggregates per-identity results into a single decision. Identities
// with several samples agreeing above the voting threshold receive a
// boost: agreement across enrollments beats a lone noisy outlier.
//
// The candidates slice is read-only during the call; concurrent matches
// against the same snapshot are safe.
func (s *Scorer) Match(query landmark.Set, candidates []Candidate) MatchResult {
	if len(candidates) == 0 {
		return MatchResult{Matched: false, CandidatesEvaluated: 0}
	}
	if !query.HasCore() {
		// The query itself is below the minimum landmark contract.
		return MatchResult{Matched: false, CandidatesEvaluated: 0}
	}

	qn := Normalize(query)

	byIdentity := make(map[string]*identityScores)
	order := make([]string, 0, 8) // deterministic iteration
	evaluated := 0

	for i := range candidates {
		c := &candidates[i]
		if !c.Norm.Set.HasCore() {
			// Insufficient candidate sample, skipped not fatal.
			continue
		}
		score := s.Combined(&qn, &c.Norm)
		evaluated++

		g, ok := byIdentity[c.IdentityID]
		if !ok {
			g = &identityScores{id: c.IdentityID, name: c.IdentityName}
			byIdentity[c.IdentityID] = g
			order = append(order, c.IdentityID)
		}
		if len(g.scores) == 0 || score.Similarity > maxOf(g.scores) {
			g.bestMatched = score.Matched
			g.bestQuality = score.Quality
		}
		g.scores = append(g.scores, score.Similarity)
	}

	var best *identityScores
	bestFinal := math.Inf(-1)
	for _, id := range order {
		g := byIdentity[id]
		final := s.aggregate(g.scores)
		if final > bestFinal {
			bestFinal = final
			best = g
		}
	}

	if best == nil {
		return MatchResult{Matched: false, CandidatesEvaluated: evaluated}
	}

	result := MatchResult{
		Confidence:           bestFinal,
		MatchedLandmarkCount: best.bestMatched,
		QualityScore:         best.bestQuality,
		CandidatesEvaluated:  evaluated,
		BestCandidateName:    best.name,
		BestCandidateScore:   bestFinal,
	}

	// Inclusive threshold; the min-landmark gate holds even for high
	// raw similarity.
	if bestFinal >= s.params.Threshold && best.bestMatched >= s.params.MinMatched {
		result.Matched = true
		result.IdentityID = best.id
		result.IdentityName = best.name
	}
	return result
}

// aggregate folds one identity's sample scores into its final score:
// best sample plus the voting boost, capped below certainty.
func (s *Scorer) aggregate(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	best := sorted[0]
	if len(sorted) < 3 {
		return math.Min(best, maxFinalScore)
	}

	votes := 0
	for _, v := range sorted {
		if v >= s.params.VoteThreshold {
			votes++
		}
	}

	top3 := sorted[:3]
	avgTop3 := (top3[0] + top3[1] + top3[2]) / 3

	boost := 0.0
	switch {
	case votes >= 3:
		boost = (avgTop3-best)*0.3 + 0.02
	case votes == 2:
		boost = (avgTop3-best)*0.15 + 0.01
	}
	if top3[0] > 0 && (top3[0]-top3[2]) <= consistencySpread*top3[0] {
		boost += 0.01
	}

	return math.Min(best+boost, maxFinalScore)
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}
