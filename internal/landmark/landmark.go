// Package landmark defines the facial landmark data model exchanged
// between the detector, the reference cache and the matching engine.
package landmark

import (
	"math"
	"time"
)

// Landmark is a single named anatomical point with 3D coordinates in
// detector-defined units. Absolute scale is irrelevant after
// normalization.
type Landmark struct {
	Label Label   `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// Set is one capture of a face: an ordered collection of landmarks plus
// the detector-reported confidence and capture timestamp. Dense marks
// captures that carry the full mesh rather than only the compact
// key-point subset.
type Set struct {
	Points     []Landmark `json:"points"`
	Confidence float64    `json:"confidence"`
	CapturedAt time.Time  `json:"captured_at"`
	Dense      bool       `json:"dense"`
}

// Len returns the number of points in the set.
func (s Set) Len() int {
	return len(s.Points)
}

// ByLabel builds a label lookup for the set's points. Duplicate labels
// keep the first occurrence.
func (s Set) ByLabel() map[Label]Landmark {
	m := make(map[Label]Landmark, len(s.Points))
	for _, p := range s.Points {
		if _, ok := m[p.Label]; !ok {
			m[p.Label] = p
		}
	}
	return m
}

// Lookup returns the point with the given label.
func (s Set) Lookup(label Label) (Landmark, bool) {
	for _, p := range s.Points {
		if p.Label == label {
			return p, true
		}
	}
	return Landmark{}, false
}

// HasCore reports whether the set carries every core landmark
// referenced by the weighting table.
func (s Set) HasCore() bool {
	seen := make(map[Label]bool, len(s.Points))
	for _, p := range s.Points {
		seen[p.Label] = true
	}
	for _, l := range CoreLabels {
		if !seen[l] {
			return false
		}
	}
	return true
}

// Bounds returns the 2D bounding box of the set as [minX, minY, maxX, maxY].
// Returns false for an empty set.
func (s Set) Bounds() ([4]float64, bool) {
	if len(s.Points) == 0 {
		return [4]float64{}, false
	}
	b := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range s.Points {
		b[0] = math.Min(b[0], p.X)
		b[1] = math.Min(b[1], p.Y)
		b[2] = math.Max(b[2], p.X)
		b[3] = math.Max(b[3], p.Y)
	}
	return b, true
}

// Diagonal returns the length of the bounding box diagonal, the scale
// fallback when the inter-ocular distance is degenerate.
func (s Set) Diagonal() float64 {
	b, ok := s.Bounds()
	if !ok {
		return 0
	}
	return math.Hypot(b[2]-b[0], b[3]-b[1])
}

// Centroid returns the center of the bounding box, the anchor fallback
// when the nose tip is absent.
func (s Set) Centroid() (x, y float64) {
	b, ok := s.Bounds()
	if !ok {
		return 0, 0
	}
	return (b[0] + b[2]) / 2, (b[1] + b[3]) / 2
}

// Distance returns the 3D Euclidean distance between two landmarks.
func Distance(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
