package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// LocationCacheRepository persists resolved coordinate labels
type LocationCacheRepository struct {
	db *sql.DB
}

// NewLocationCacheRepository creates a new location cache repository
func NewLocationCacheRepository(db *sql.DB) *LocationCacheRepository {
	return &LocationCacheRepository{db: db}
}

// LoadAll reads every cache record
func (r *LocationCacheRepository) LoadAll(ctx context.Context) ([]models.CacheEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT cache_key, label, source, latitude, longitude, schema_version, updated_at
		FROM location_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to query location cache: %w", err)
	}
	defer rows.Close()

	var entries []models.CacheEntry
	for rows.Next() {
		var e models.CacheEntry
		var updatedAt int64
		if err := rows.Scan(&e.Key, &e.Label, &e.Source, &e.Latitude, &e.Longitude, &e.SchemaVersion, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// Save inserts or replaces one record (last writer wins)
func (r *LocationCacheRepository) Save(ctx context.Context, e models.CacheEntry) error {
	query := `INSERT INTO location_cache (cache_key, label, source, latitude, longitude, schema_version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			label = excluded.label,
			source = excluded.source,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		e.Key, e.Label, string(e.Source), e.Latitude, e.Longitude, e.SchemaVersion, e.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}
