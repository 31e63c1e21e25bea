package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/facegate/internal/landmark"
	"github.com/kozaktomas/facegate/internal/refcache"
)

// testCapture builds a valid compact capture. The widen parameter
// deforms mouth, jaw and chin so identities stay distinguishable.
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

func testSample(identityID, identityName string, index int, widen float64) refcache.Sample {
	return refcache.Sample{
		ID:           uuid.New(),
		IdentityID:   identityID,
		IdentityName: identityName,
		Index:        index,
		Capture:      testCapture(widen),
		CreatedAt:    time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
	}
}

// testHolder builds a cache of two identities and wraps it in a holder.
func testHolder(t *testing.T) *refcache.Holder {
	t.Helper()
	cache, err := refcache.Build(1, []refcache.Sample{
		testSample("emp-001", "Jana Dvořáková", 0, 0),
		testSample("emp-001", "Jana Dvořáková", 1, 0.4),
		testSample("emp-002", "Petr Malý", 0, 14),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return refcache.NewHolder(cache)
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
