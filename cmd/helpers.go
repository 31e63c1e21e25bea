package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/landmark"
	"github.com/kozaktomas/facegate/internal/refcache"
	"github.com/kozaktomas/facegate/internal/refcache/mariadb"
	"github.com/kozaktomas/facegate/internal/refcache/postgres"
)

// readCapture loads a landmark capture from a JSON file.
func readCapture(path string) (landmark.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return landmark.Set{}, fmt.Errorf("reading capture file: %w", err)
	}
	var set landmark.Set
	if err := json.Unmarshal(data, &set); err != nil {
		return landmark.Set{}, fmt.Errorf("decoding capture %s: %w", path, err)
	}
	return set, nil
}

// loadSnapshotCache loads the reference cache from the configured disk
// snapshot.
func loadSnapshotCache(cfg *config.Config) (*refcache.Cache, error) {
	if cfg.Cache.SnapshotPath == "" {
		return nil, errors.New("FACEGATE_SNAPSHOT_PATH environment variable is required")
	}
	cache, err := refcache.LoadSnapshot(cfg.Cache.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("loading cache snapshot: %w", err)
	}
	return cache, nil
}

// newProvider creates the enrollment provider for the given source.
// The returned closer shuts down the underlying connection pool.
func newProvider(cfg *config.Config, source string) (refcache.Provider, io.Closer, error) {
	switch source {
	case "postgres":
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewSampleRepository(pool), pool, nil
	case "legacy":
		pool, err := mariadb.NewPool(cfg.Legacy.DSN)
		if err != nil {
			return nil, nil, err
		}
		return mariadb.NewLegacyRepository(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown enrollment source %q (want postgres or legacy)", source)
	}
}
