package facematch

import (
	"math"

	"github.com/kozaktomas/facegate/internal/landmark"
)

// minScale is the sanity floor for the inter-ocular distance. Anything
// smaller is detector noise (occluded eyes, collapsed points) and the
// bounding-box diagonal takes over as scale reference.
const minScale = 1e-6

// Normalized is a landmark set with translation, rotation and scale
// variance removed: nose tip at the origin, the eye line horizontal,
// coordinates in inter-ocular units.
type Normalized struct {
	Set      landmark.Set
	Degraded bool // a fallback anchor or scale was used

	byLabel map[landmark.Label]landmark.Landmark
}

// Lookup returns the normalized point with the given label.
func (n *Normalized) Lookup(l landmark.Label) (landmark.Landmark, bool) {
	p, ok := n.byLabel[l]
	return p, ok
}

// Normalize removes translation, rotation and scale variance from a raw
// landmark set. It is a pure function; the input set is not modified.
//
// Anchor is the nose tip (bounding-box centroid if absent). Scale is the
// inter-ocular distance (bounding-box diagonal below the sanity floor).
// In-plane head tilt is removed by rotating the eye line onto the
// horizontal; z is scaled but not rotated, the correction is 2D.
func Normalize(s landmark.Set) Normalized {
	degraded := false

	// Anchor.
	var ax, ay, az float64
	if nose, ok := s.Lookup(landmark.NoseTip); ok {
		ax, ay, az = nose.X, nose.Y, nose.Z
	} else {
		ax, ay = s.Centroid()
		degraded = true
	}

	// Scale and rotation require both outer eye corners.
	ioA, ioB := InterocularLabels()
	left, okL := s.Lookup(ioA)
	right, okR := s.Lookup(ioB)

	scale := 0.0
	angle := 0.0
	if okL && okR {
		scale = landmark.Distance(left, right)
		angle = math.Atan2(right.Y-left.Y, right.X-left.X)
	}
	if scale < minScale {
		scale = s.Diagonal()
		angle = 0
		degraded = true
	}
	if scale < minScale {
		// The whole set is collapsed onto a point. Keep scale 1 so
		// the output stays finite; the degraded flag tells callers
		// to discard rather than score.
		scale = 1
	}

	sin, cos := math.Sincos(-angle)

	out := landmark.Set{
		Points:     make([]landmark.Landmark, len(s.Points)),
		Confidence: s.Confidence,
		CapturedAt: s.CapturedAt,
		Dense:      s.Dense,
	}
	for i, p := range s.Points {
		x := p.X - ax
		y := p.Y - ay
		rx := x*cos - y*sin
		ry := x*sin + y*cos
		out.Points[i] = landmark.Landmark{
			Label: p.Label,
			X:     rx / scale,
			Y:     ry / scale,
			Z:     (p.Z - az) / scale,
		}
	}

	return Normalized{
		Set:      out,
		Degraded: degraded,
		byLabel:  out.ByLabel(),
	}
}
