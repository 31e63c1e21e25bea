package refcache

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const snapshotSchemaVersion = 1

// SnapshotMeta is the JSON sidecar written next to the binary snapshot
// so operators can inspect cache state without decoding the payload.
type SnapshotMeta struct {
	Version       int       `json:"version"`
	IdentityCount int       `json:"identity_count"`
	SampleCount   int       `json:"sample_count"`
	SavedAt       time.Time `json:"saved_at"`
	SchemaVersion int       `json:"schema_version"`
}

// snapshotPayload is the gob-encoded on-disk form.
type snapshotPayload struct {
	Version int
	Samples []Sample
}

// SaveSnapshot persists the cache to disk: gob payload plus a JSON
// `.meta` sidecar.
func SaveSnapshot(path string, c *Cache) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	payload := snapshotPayload{Version: c.Version(), Samples: c.Samples()}
	if err := gob.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	meta := SnapshotMeta{
		Version:       c.Version(),
		IdentityCount: c.IdentityCount(),
		SampleCount:   c.SampleCount(),
		SavedAt:       time.Now(),
		SchemaVersion: snapshotSchemaVersion,
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot metadata: %w", err)
	}
	if err := os.WriteFile(path+".meta", metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing snapshot metadata: %w", err)
	}
	return nil
}

// LoadSnapshot reads a cache snapshot from disk and rebuilds it through
// the same validation as a fresh refresh, so corrupt or inconsistent
// files are rejected here rather than discovered mid-match.
func LoadSnapshot(path string) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var payload snapshotPayload
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	cache, err := Build(payload.Version, payload.Samples)
	if err != nil {
		return nil, fmt.Errorf("snapshot failed validation: %w", err)
	}
	return cache, nil
}

// ReadSnapshotMeta reads only the JSON sidecar. Returns nil without
// error when no sidecar exists.
func ReadSnapshotMeta(path string) (*SnapshotMeta, error) {
	data, err := os.ReadFile(path + ".meta")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot metadata: %w", err)
	}
	var meta SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding snapshot metadata: %w", err)
	}
	return &meta, nil
}
