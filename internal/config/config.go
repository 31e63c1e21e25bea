// Package config loads process configuration from environment
// variables. All matching tunables are externally adjustable; defaults
// carry the recommended calibration.
package config

import (
	"os"
	"strconv"

	"github.com/kozaktomas/facegate/internal/facematch"
)

type Config struct {
	Engine   EngineConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Legacy   LegacyConfig
	Detector DetectorConfig
}

// EngineConfig holds the matching engine calibration. The decay
// constants and blend weight were tuned against one detector's output
// scale; re-validate them when the landmark source changes.
type EngineConfig struct {
	Threshold     float64 // minimum final score for a positive match (inclusive)
	VoteThreshold float64 // lower bound for a sample to count as a vote
	MinMatched    int     // minimum matched landmarks for a valid comparison
	LandmarkDecay float64
	RatioDecay    float64
	BlendLandmark float64 // landmark share of the combined score
}

// Params converts the engine config into scorer parameters.
func (c EngineConfig) Params() facematch.Params {
	return facematch.Params{
		Threshold:     c.Threshold,
		VoteThreshold: c.VoteThreshold,
		MinMatched:    c.MinMatched,
		LandmarkDecay: c.LandmarkDecay,
		RatioDecay:    c.RatioDecay,
		BlendLandmark: c.BlendLandmark,
	}
}

type CacheConfig struct {
	SnapshotPath string // on-disk cache snapshot (empty = memory only)
	ShortlistK   int    // HNSW pre-filter size (0 = exact scan)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // default 25
	MaxIdleConns int    // default 5
}

type LegacyConfig struct {
	DSN string // MariaDB DSN of the legacy attendance system (optional)
}

type DetectorConfig struct {
	URL          string // landmark detector service base URL
	MaxImageSize int    // longest image edge in pixels before upload
}

// envInt reads an environment variable as a positive integer, falling
// back to the default when unset or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a positive float, falling
// back to the default when unset or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Engine: EngineConfig{
			Threshold:     envFloat("FACEGATE_MATCH_THRESHOLD", 0.70),
			VoteThreshold: envFloat("FACEGATE_VOTE_THRESHOLD", 0.60),
			MinMatched:    envInt("FACEGATE_MIN_MATCHED", 15),
			LandmarkDecay: envFloat("FACEGATE_LANDMARK_DECAY", 3.0),
			RatioDecay:    envFloat("FACEGATE_RATIO_DECAY", 8.0),
			BlendLandmark: envFloat("FACEGATE_BLEND_LANDMARK", 0.7),
		},
		Cache: CacheConfig{
			SnapshotPath: os.Getenv("FACEGATE_SNAPSHOT_PATH"),
			ShortlistK:   envInt("FACEGATE_SHORTLIST_K", 0),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Legacy: LegacyConfig{
			DSN: os.Getenv("LEGACY_DATABASE_DSN"),
		},
		Detector: DetectorConfig{
			URL:          os.Getenv("DETECTOR_URL"),
			MaxImageSize: envInt("DETECTOR_MAX_IMAGE_SIZE", 1280),
		},
	}
}
