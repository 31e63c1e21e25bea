package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/facegate/internal/facematch"
	"github.com/kozaktomas/facegate/internal/landmark"
	"github.com/kozaktomas/facegate/internal/refcache"
)

// SampleRepository provides PostgreSQL-backed enrollment sample storage.
// It implements refcache.Provider.
type SampleRepository struct {
	pool *Pool
}

// NewSampleRepository creates a new PostgreSQL sample repository.
func NewSampleRepository(pool *Pool) *SampleRepository {
	return &SampleRepository{pool: pool}
}

// Version returns the current enrollment data version. Every write
// bumps it, so the cache refresher can skip unchanged data cheaply.
func (r *SampleRepository) Version(ctx context.Context) (int, error) {
	var version int
	err := r.pool.QueryRow(ctx, "SELECT version FROM cache_state WHERE id = 1").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query cache version: %w", err)
	}
	return version, nil
}

// FetchSamples loads all enrollment samples together with the version
// they belong to. Both reads happen in one repeatable-read transaction
// so the version cannot drift from the sample set.
func (r *SampleRepository) FetchSamples(ctx context.Context) (int, []refcache.Sample, error) {
	tx, err := r.pool.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx, "SELECT version FROM cache_state WHERE id = 1").Scan(&version); err != nil {
		return 0, nil, fmt.Errorf("query cache version: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, identity_id, identity_name, sample_index, capture, created_at
		FROM enrollment_samples
		ORDER BY identity_id, sample_index
	`)
	if err != nil {
		return 0, nil, fmt.Errorf("query enrollment samples: %w", err)
	}
	defer rows.Close()

	var samples []refcache.Sample
	for rows.Next() {
		var (
			s       refcache.Sample
			capture []byte
		)
		if err := rows.Scan(&s.ID, &s.IdentityID, &s.IdentityName, &s.Index, &capture, &s.CreatedAt); err != nil {
			return 0, nil, fmt.Errorf("scan enrollment sample: %w", err)
		}
		if err := json.Unmarshal(capture, &s.Capture); err != nil {
			return 0, nil, fmt.Errorf("decode capture for sample %s: %w", s.ID, err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate enrollment samples: %w", err)
	}

	return version, samples, nil
}

// ReplaceIdentitySamples replaces all samples of one identity in a
// single transaction and bumps the cache version. Sample indexes are
// assigned from the slice order.
func (r *SampleRepository) ReplaceIdentitySamples(
	ctx context.Context, identityID, identityName string, captures []landmark.Set,
) error {
	if identityID == "" {
		return fmt.Errorf("identity id is required")
	}
	for i, c := range captures {
		if !c.HasCore() {
			return fmt.Errorf("capture %d for identity %s is missing core landmarks", i, identityID)
		}
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM enrollment_samples WHERE identity_id = $1", identityID); err != nil {
		return fmt.Errorf("delete samples for identity %s: %w", identityID, err)
	}

	for i, c := range captures {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode capture %d: %w", i, err)
		}

		norm := facematch.Normalize(c)
		sig := pgvector.NewVector(refcache.Signature(&norm))

		_, err = tx.ExecContext(ctx, `
			INSERT INTO enrollment_samples (id, identity_id, identity_name, sample_index, capture, signature, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New(), identityID, identityName, i, data, sig, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert sample %d for identity %s: %w", i, identityID, err)
		}
	}

	if err := bumpVersion(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sample replacement: %w", err)
	}
	return nil
}

// DeleteIdentity removes all samples of one identity and bumps the
// cache version. Deleting an unknown identity is not an error.
func (r *SampleRepository) DeleteIdentity(ctx context.Context, identityID string) (int, error) {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM enrollment_samples WHERE identity_id = $1", identityID)
	if err != nil {
		return 0, fmt.Errorf("delete samples for identity %s: %w", identityID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted samples: %w", err)
	}

	if deleted > 0 {
		if err := bumpVersion(ctx, tx); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit identity deletion: %w", err)
	}
	return int(deleted), nil
}

func bumpVersion(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "UPDATE cache_state SET version = version + 1, updated_at = NOW() WHERE id = 1"); err != nil {
		return fmt.Errorf("bump cache version: %w", err)
	}
	return nil
}

// SimilarSample is a nearest-neighbor hit from the signature index.
type SimilarSample struct {
	SampleID     uuid.UUID
	IdentityID   string
	IdentityName string
	Distance     float64
}

// FindSimilar returns enrolled samples whose geometric signature is
// closest to the given capture. Useful for spotting duplicate
// enrollments before they land in the cache.
func (r *SampleRepository) FindSimilar(ctx context.Context, capture landmark.Set, limit int) ([]SimilarSample, error) {
	if limit <= 0 {
		limit = 10
	}

	norm := facematch.Normalize(capture)
	vec := pgvector.NewVector(refcache.Signature(&norm))

	rows, err := r.pool.Query(ctx, `
		SELECT id, identity_id, identity_name, signature <-> $1::vector AS distance
		FROM enrollment_samples
		WHERE signature IS NOT NULL
		ORDER BY signature <-> $1::vector
		LIMIT $2
	`, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("query similar samples: %w", err)
	}
	defer rows.Close()

	var results []SimilarSample
	for rows.Next() {
		var s SimilarSample
		if err := rows.Scan(&s.SampleID, &s.IdentityID, &s.IdentityName, &s.Distance); err != nil {
			return nil, fmt.Errorf("scan similar sample: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar samples: %w", err)
	}

	return results, nil
}

// CountSamples returns the total number of enrolled samples.
func (r *SampleRepository) CountSamples(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM enrollment_samples").Scan(&count); err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return count, nil
}

// CountIdentities returns the number of distinct enrolled identities.
func (r *SampleRepository) CountIdentities(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT identity_id) FROM enrollment_samples").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}
