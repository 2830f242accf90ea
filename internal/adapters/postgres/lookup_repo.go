package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

// LookupRepo implements ports.LookupRepository with pgx.
type LookupRepo struct {
	db *DB
}

// NewLookupRepo creates a new LookupRepo.
func NewLookupRepo(db *DB) *LookupRepo {
	return &LookupRepo{db: db}
}

// Insert stores one lookup. Re-inserting an ID is a no-op.
func (r *LookupRepo) Insert(ctx context.Context, rec *domain.LookupRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO lookups (id, lat, lon, seismic_zone, zone_factor, basic_wind_speed, place_name, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.Lat, rec.Lon, rec.SeismicZone, rec.ZoneFactor, rec.BasicWindSpeed,
		rec.PlaceName, rec.State, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

// Recent returns lookups newest first.
func (r *LookupRepo) Recent(ctx context.Context, limit, offset int) ([]domain.LookupRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, lat, lon, seismic_zone, zone_factor, basic_wind_speed, place_name, state, created_at
		FROM lookups
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LookupRecord, error) {
		var rec domain.LookupRecord
		err := row.Scan(&rec.ID, &rec.Lat, &rec.Lon, &rec.SeismicZone, &rec.ZoneFactor,
			&rec.BasicWindSpeed, &rec.PlaceName, &rec.State, &rec.CreatedAt)
		return rec, err
	})
}

// Count returns the number of recorded lookups.
func (r *LookupRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM lookups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lookups: %w", err)
	}
	return n, nil
}

// ZoneCounts returns the number of lookups per seismic zone, most frequent first.
func (r *LookupRepo) ZoneCounts(ctx context.Context) ([]domain.ZoneCount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT seismic_zone, count(*)
		FROM lookups
		GROUP BY seismic_zone
		ORDER BY count(*) DESC, seismic_zone
	`)
	if err != nil {
		return nil, fmt.Errorf("query zone counts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ZoneCount, error) {
		var zc domain.ZoneCount
		err := row.Scan(&zc.SeismicZone, &zc.Count)
		return zc, err
	})
}
