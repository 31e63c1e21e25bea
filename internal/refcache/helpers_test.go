package refcache

import (
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/facegate/internal/landmark"
)

// testCapture builds a valid compact capture. The widen parameter
// deforms mouth, jaw and chin so different identities produce distinct
// geometry even after normalization.
func testCapture(widen float64) landmark.Set {
	points := []landmark.Landmark{
		{Label: landmark.NoseTip, X: 0, Y: 0, Z: 0},
		{Label: landmark.LeftEyeOuter, X: -45, Y: -35, Z: -5},
		{Label: landmark.LeftEyeInner, X: -18, Y: -33, Z: -6},
		{Label: landmark.RightEyeInner, X: 18, Y: -33, Z: -6},
		{Label: landmark.RightEyeOuter, X: 45, Y: -35, Z: -5},
		{Label: landmark.MouthLeft, X: -25 - widen, Y: 38, Z: -4},
		{Label: landmark.MouthRight, X: 25 + widen, Y: 38, Z: -4},
		{Label: landmark.Chin, X: 0, Y: 65 + widen, Z: -8},
		{Label: landmark.NoseBridge, X: 0, Y: -25, Z: -3},
		{Label: landmark.NoseBottom, X: 0, Y: 12, Z: -2},
		{Label: landmark.MouthTop, X: 0, Y: 32, Z: -3},
		{Label: landmark.MouthBottom, X: 0, Y: 46, Z: -4},
		{Label: landmark.JawLeft, X: -52 - widen, Y: 30, Z: -14},
		{Label: landmark.JawRight, X: 52 + widen, Y: 30, Z: -14},
		{Label: landmark.Forehead, X: 0, Y: -60, Z: -6},
	}
	return landmark.Set{
		Points:     points,
		Confidence: 0.95,
		CapturedAt: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
	}
}

func testSample(identityID, identityName string, index int, widen float64) Sample {
	return Sample{
		ID:           uuid.New(),
		IdentityID:   identityID,
		IdentityName: identityName,
		Index:        index,
		Capture:      testCapture(widen),
		CreatedAt:    time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
	}
}
