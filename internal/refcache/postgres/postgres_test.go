//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/landmark"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

// testCapture builds a minimal valid landmark set. The widen
// parameter deforms mouth, jaw and chin so captures of different
// people produce different signatures.
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
		CapturedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestSampleRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewSampleRepository(pool)

	t.Run("VersionStartsAtZero", func(t *testing.T) {
		version, err := repo.Version(ctx)
		if err != nil {
			t.Fatalf("Failed to read version: %v", err)
		}
		if version != 0 {
			t.Errorf("Expected initial version 0, got %d", version)
		}
	})

	t.Run("ReplaceAndFetch", func(t *testing.T) {
		captures := []landmark.Set{testCapture(0), testCapture(1.5)}
		if err := repo.ReplaceIdentitySamples(ctx, "emp-001", "Jana Dvořáková", captures); err != nil {
			t.Fatalf("Failed to replace samples: %v", err)
		}

		version, samples, err := repo.FetchSamples(ctx)
		if err != nil {
			t.Fatalf("Failed to fetch samples: %v", err)
		}
		if version != 1 {
			t.Errorf("Expected version 1 after first write, got %d", version)
		}
		if len(samples) != 2 {
			t.Fatalf("Expected 2 samples, got %d", len(samples))
		}
		if samples[0].IdentityName != "Jana Dvořáková" {
			t.Errorf("Unexpected identity name %q", samples[0].IdentityName)
		}
		if samples[0].Index != 0 || samples[1].Index != 1 {
			t.Errorf("Unexpected sample indexes %d, %d", samples[0].Index, samples[1].Index)
		}
		if samples[0].Capture.Len() != testCapture(0).Len() {
			t.Errorf("Capture did not round-trip, got %d points", samples[0].Capture.Len())
		}
	})

	t.Run("ReplaceBumpsVersion", func(t *testing.T) {
		before, err := repo.Version(ctx)
		if err != nil {
			t.Fatalf("Failed to read version: %v", err)
		}

		if err := repo.ReplaceIdentitySamples(ctx, "emp-001", "Jana Dvořáková", []landmark.Set{testCapture(0.2)}); err != nil {
			t.Fatalf("Failed to replace samples: %v", err)
		}

		after, err := repo.Version(ctx)
		if err != nil {
			t.Fatalf("Failed to read version: %v", err)
		}
		if after != before+1 {
			t.Errorf("Expected version %d, got %d", before+1, after)
		}

		_, samples, err := repo.FetchSamples(ctx)
		if err != nil {
			t.Fatalf("Failed to fetch samples: %v", err)
		}
		if len(samples) != 1 {
			t.Errorf("Expected replacement to drop old samples, got %d", len(samples))
		}
	})

	t.Run("RejectsCaptureWithoutCoreLandmarks", func(t *testing.T) {
		bad := landmark.Set{Points: []landmark.Landmark{{Label: landmark.NoseTip}}}
		if err := repo.ReplaceIdentitySamples(ctx, "emp-002", "Petr Malý", []landmark.Set{bad}); err == nil {
			t.Error("Expected error for capture without core landmarks")
		}
	})

	t.Run("FindSimilar", func(t *testing.T) {
		if err := repo.ReplaceIdentitySamples(ctx, "emp-003", "Karel Svoboda", []landmark.Set{testCapture(30)}); err != nil {
			t.Fatalf("Failed to enroll second identity: %v", err)
		}

		results, err := repo.FindSimilar(ctx, testCapture(0.1), 2)
		if err != nil {
			t.Fatalf("Failed to find similar: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("Expected 2 results, got %d", len(results))
		}
		if results[0].IdentityID != "emp-001" {
			t.Errorf("Expected nearest identity emp-001, got %s", results[0].IdentityID)
		}
		if results[0].Distance > results[1].Distance {
			t.Error("Results not ordered by distance")
		}
	})

	t.Run("Counts", func(t *testing.T) {
		samples, err := repo.CountSamples(ctx)
		if err != nil {
			t.Fatalf("Failed to count samples: %v", err)
		}
		if samples != 2 {
			t.Errorf("Expected 2 samples, got %d", samples)
		}

		identities, err := repo.CountIdentities(ctx)
		if err != nil {
			t.Fatalf("Failed to count identities: %v", err)
		}
		if identities != 2 {
			t.Errorf("Expected 2 identities, got %d", identities)
		}
	})

	t.Run("DeleteIdentity", func(t *testing.T) {
		deleted, err := repo.DeleteIdentity(ctx, "emp-003")
		if err != nil {
			t.Fatalf("Failed to delete identity: %v", err)
		}
		if deleted != 1 {
			t.Errorf("Expected 1 deleted sample, got %d", deleted)
		}

		deleted, err = repo.DeleteIdentity(ctx, "emp-unknown")
		if err != nil {
			t.Fatalf("Unexpected error deleting unknown identity: %v", err)
		}
		if deleted != 0 {
			t.Errorf("Expected 0 deleted samples, got %d", deleted)
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	applied, err := pool.MigrationsApplied(context.Background())
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expected := []string{
		"001_create_cache_state.sql",
		"002_create_enrollment_samples.sql",
		"003_create_signature_index.sql",
	}

	if len(applied) != len(expected) {
		t.Errorf("Expected %d migrations, got %d", len(expected), len(applied))
	}
	for i, name := range expected {
		if i < len(applied) && applied[i] != name {
			t.Errorf("Migration %d: expected %q, got %q", i, name, applied[i])
		}
	}
}
