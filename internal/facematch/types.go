// Package facematch implements the offline face-matching engine:
// geometric normalization, weighted landmark scoring, pose-invariant
// ratio comparison and multi-sample match aggregation. The engine is
// pure computation over immutable inputs and performs no I/O.
package facematch

// Params are the engine's calibration parameters. The defaults were
// tuned against one detector's output scale and must be re-validated
// when the landmark source changes.
type Params struct {
	// Threshold is the minimum final score for a positive match
	// (inclusive).
	Threshold float64
	// VoteThreshold is the lower score bound for a sample to count as
	// a vote for its identity.
	VoteThreshold float64
	// MinMatched is the minimum number of label-matched landmarks for
	// a comparison to be valid.
	MinMatched int
	// LandmarkDecay is the exponential decay constant for the weighted
	// landmark distance.
	LandmarkDecay float64
	// RatioDecay is the exponential decay constant for the anatomical
	// ratio difference. Steeper than LandmarkDecay because ratios are
	// naturally closer together.
	RatioDecay float64
	// BlendLandmark is the landmark-similarity share of the combined
	// score when both sets are dense; the ratio share is its
	// complement.
	BlendLandmark float64
}

// DefaultParams returns the recommended calibration.
func DefaultParams() Params {
	return Params{
		Threshold:     0.70,
		VoteThreshold: 0.60,
		MinMatched:    15,
		LandmarkDecay: 3.0,
		RatioDecay:    8.0,
		BlendLandmark: 0.7,
	}
}

// Similarity is the result of comparing two normalized sets point by
// point.
type Similarity struct {
	Score   float64
	Matched int
}

// Score is a full pairwise comparison: the blended similarity plus the
// diagnostic quality estimate.
type Score struct {
	Similarity float64
	Quality    float64
	Matched    int
}

// Candidate is one enrolled sample prepared for matching.
type Candidate struct {
	SampleID     string
	IdentityID   string
	IdentityName string
	Norm         Normalized
}

// MatchResult is the engine's final decision for one query capture. The
// best candidate and its score are reported even below threshold, for
// diagnostics.
type MatchResult struct {
	Matched              bool    `json:"matched"`
	IdentityID           string  `json:"identity_id,omitempty"`
	IdentityName         string  `json:"identity_name,omitempty"`
	Confidence           float64 `json:"confidence"`
	MatchedLandmarkCount int     `json:"matched_landmark_count"`
	QualityScore         float64 `json:"quality_score"`
	CandidatesEvaluated  int     `json:"candidates_evaluated"`
	BestCandidateName    string  `json:"best_candidate_name,omitempty"`
	BestCandidateScore   float64 `json:"best_candidate_score"`
}
