package mariadb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/facegate/internal/landmark"
	"github.com/kozaktomas/facegate/internal/refcache"
)

// legacyNamespace seeds deterministic UUIDs for legacy rows, which
// only carry integer primary keys.
var legacyNamespace = uuid.MustParse("7f1c2c4e-6c9d-4b8a-a9a4-3f2d1e0c5b6a")

// legacyPoint is one landmark as the attendance system stores it
// inside face_profiles.landmarks_json.
type legacyPoint struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// legacyLabelNames maps the attendance system's point names to ours.
// Names already matching our labels pass through unchanged; unknown
// names are dropped.
var legacyLabelNames = map[string]landmark.Label{
	"nose":        landmark.NoseTip,
	"chin":        landmark.Chin,
	"eye_l_out":   landmark.LeftEyeOuter,
	"eye_l_in":    landmark.LeftEyeInner,
	"eye_r_in":    landmark.RightEyeInner,
	"eye_r_out":   landmark.RightEyeOuter,
	"mouth_l":     landmark.MouthLeft,
	"mouth_r":     landmark.MouthRight,
	"nose_root":   landmark.NoseBridge,
	"nose_base":   landmark.NoseBottom,
	"lip_top":     landmark.MouthTop,
	"lip_bottom":  landmark.MouthBottom,
	"jaw_l":       landmark.JawLeft,
	"jaw_r":       landmark.JawRight,
	"forehead_c":  landmark.Forehead,
	"cheek_l":     landmark.LeftCheek,
	"cheek_r":     landmark.RightCheek,
	"face_edge_l": landmark.FaceLeft,
	"face_edge_r": landmark.FaceRight,
}

// parseLegacyCapture decodes a legacy landmarks_json blob into a
// landmark set. The legacy detector never produced dense meshes.
func parseLegacyCapture(data []byte, confidence float64, capturedAt time.Time) (landmark.Set, error) {
	var points []legacyPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return landmark.Set{}, fmt.Errorf("decode landmarks: %w", err)
	}

	set := landmark.Set{
		Confidence: confidence,
		CapturedAt: capturedAt,
	}
	known := make(map[landmark.Label]bool, len(landmark.KeyLabels))
	for _, l := range landmark.KeyLabels {
		known[l] = true
	}

	for _, p := range points {
		label, ok := legacyLabelNames[p.Name]
		if !ok {
			if !known[landmark.Label(p.Name)] {
				continue
			}
			label = landmark.Label(p.Name)
		}
		set.Points = append(set.Points, landmark.Landmark{
			Label: label,
			X:     p.X,
			Y:     p.Y,
			Z:     p.Z,
		})
	}

	return set, nil
}

// LegacyRepository reads enrollment samples from the attendance
// system's face_profiles table. It implements refcache.Provider.
type LegacyRepository struct {
	pool *Pool
}

// NewLegacyRepository creates a repository on top of an open pool.
func NewLegacyRepository(pool *Pool) *LegacyRepository {
	return &LegacyRepository{pool: pool}
}

// Version derives a change counter from the row count and the newest
// update timestamp. The legacy schema has no version column, so edits
// that keep both values unchanged within one second go undetected.
func (r *LegacyRepository) Version(ctx context.Context) (int, error) {
	var (
		count   int
		updated int64
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(UNIX_TIMESTAMP(MAX(updated_at)), 0)
		FROM face_profiles
	`).Scan(&count, &updated)
	if err != nil {
		return 0, fmt.Errorf("query legacy version: %w", err)
	}
	return int(updated) + count, nil
}

// FetchSamples loads all usable face profiles. Rows whose landmark
// blob cannot be decoded are skipped rather than failing the whole
// refresh; the legacy data contains entries from several detector
// generations.
func (r *LegacyRepository) FetchSamples(ctx context.Context) (int, []refcache.Sample, error) {
	version, err := r.Version(ctx)
	if err != nil {
		return 0, nil, err
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, employee_code, full_name, sample_no, landmarks_json,
		       COALESCE(quality, 0), UNIX_TIMESTAMP(created_at)
		FROM face_profiles
		ORDER BY employee_code, sample_no
	`)
	if err != nil {
		return 0, nil, fmt.Errorf("query face profiles: %w", err)
	}
	defer rows.Close()

	var samples []refcache.Sample
	for rows.Next() {
		var (
			id         int64
			code       string
			name       string
			sampleNo   int
			blob       []byte
			quality    float64
			createdUTS int64
		)
		if err := rows.Scan(&id, &code, &name, &sampleNo, &blob, &quality, &createdUTS); err != nil {
			return 0, nil, fmt.Errorf("scan face profile: %w", err)
		}

		capture, err := parseLegacyCapture(blob, quality, time.Unix(createdUTS, 0).UTC())
		if err != nil || !capture.HasCore() {
			continue
		}

		samples = append(samples, refcache.Sample{
			ID:           uuid.NewSHA1(legacyNamespace, fmt.Appendf(nil, "face_profiles/%d", id)),
			IdentityID:   code,
			IdentityName: name,
			Index:        sampleNo,
			Capture:      capture,
			CreatedAt:    time.Unix(createdUTS, 0).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate face profiles: %w", err)
	}

	return version, samples, nil
}
