package facematch

import (
	"math"
	"time"

	"github.com/kozaktomas/facegate/internal/landmark"
)

// keyPointPositions is a plausible frontal face in arbitrary detector
// units, inter-ocular distance 90.
var keyPointPositions = map[landmark.Label][3]float64{
	landmark.NoseTip:       {0, 0, 0},
	landmark.Chin:          {0, 65, -8},
	landmark.LeftEyeOuter:  {-45, -35, -5},
	landmark.LeftEyeInner:  {-15, -35, -2},
	landmark.RightEyeInner: {15, -35, -2},
	landmark.RightEyeOuter: {45, -35, -5},
	landmark.MouthLeft:     {-25, 35, -4},
	landmark.MouthRight:    {25, 35, -4},

	landmark.LeftEyeTop:     {-30, -40, -4},
	landmark.LeftEyeBottom:  {-30, -30, -4},
	landmark.RightEyeTop:    {30, -40, -4},
	landmark.RightEyeBottom: {30, -30, -4},
	landmark.LeftIris:       {-30, -35, -3},
	landmark.RightIris:      {30, -35, -3},
	landmark.NoseBridge:     {0, -30, -10},
	landmark.NoseBottom:     {0, 8, -2},
	landmark.NoseLeft:       {-12, 2, -3},
	landmark.NoseRight:      {12, 2, -3},
	landmark.MouthTop:       {0, 28, -2},
	landmark.MouthBottom:    {0, 42, -3},
	landmark.JawLeft:        {-55, 40, -15},
	landmark.JawRight:       {55, 40, -15},

	landmark.LeftEyebrowInner:  {-18, -48, -6},
	landmark.LeftEyebrowOuter:  {-42, -48, -8},
	landmark.RightEyebrowInner: {18, -48, -6},
	landmark.RightEyebrowOuter: {42, -48, -8},
	landmark.LeftCheek:         {-35, 10, -8},
	landmark.RightCheek:        {35, 10, -8},
	landmark.Forehead:          {0, -65, -12},
	landmark.LeftTemple:        {-50, -55, -18},
	landmark.RightTemple:       {50, -55, -18},
	landmark.FaceLeft:          {-60, 0, -20},
	landmark.FaceRight:         {60, 0, -20},
}

// compactFace builds the 33-point key set.
func compactFace() landmark.Set {
	points := make([]landmark.Landmark, 0, len(landmark.KeyLabels))
	for _, l := range landmark.KeyLabels {
		pos := keyPointPositions[l]
		points = append(points, landmark.Landmark{Label: l, X: pos[0], Y: pos[1], Z: pos[2]})
	}
	return landmark.Set{
		Points:     points,
		Confidence: 0.95,
		CapturedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Dense:      false,
	}
}

// denseFace builds a 468-point mesh: the named key points plus
// deterministic filler mesh points.
func denseFace() landmark.Set {
	s := compactFace()
	s.Dense = true
	for i := 0; s.Len() < landmark.DenseMeshSize; i++ {
		f := float64(i)
		s.Points = append(s.Points, landmark.Landmark{
			Label: landmark.MeshLabel(i),
			X:     60 * math.Sin(f*0.7),
			Y:     65 * math.Cos(f*1.3),
			Z:     -10 * math.Sin(f*2.1),
		})
	}
	return s
}

// transformSet applies uniform scale, in-plane rotation and translation
// to a copy of the set, simulating a different capture distance and
// head tilt.
func transformSet(s landmark.Set, scale, rot, tx, ty float64) landmark.Set {
	sin, cos := math.Sincos(rot)
	out := s
	out.Points = make([]landmark.Landmark, len(s.Points))
	for i, p := range s.Points {
		x := p.X*cos - p.Y*sin
		y := p.X*sin + p.Y*cos
		out.Points[i] = landmark.Landmark{
			Label: p.Label,
			X:     x*scale + tx,
			Y:     y*scale + ty,
			Z:     p.Z * scale,
		}
	}
	return out
}

// jitterSet displaces every point by a deterministic pseudo-random
// vector of the given magnitude (detector units).
func jitterSet(s landmark.Set, mag float64, seed int) landmark.Set {
	out := s
	out.Points = make([]landmark.Landmark, len(s.Points))
	for i, p := range s.Points {
		f := float64(i + seed*977)
		out.Points[i] = landmark.Landmark{
			Label: p.Label,
			X:     p.X + mag*math.Sin(f*1.9),
			Y:     p.Y + mag*math.Cos(f*2.3),
			Z:     p.Z + mag*math.Sin(f*3.1),
		}
	}
	return out
}

// normalizedCopy wraps a pre-normalized set for direct scorer tests.
func normalizedCopy(s landmark.Set, degraded bool) Normalized {
	return Normalized{Set: s, Degraded: degraded, byLabel: s.ByLabel()}
}
