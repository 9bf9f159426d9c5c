package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// ZoneRepository handles database operations for geofence zones
type ZoneRepository struct {
	db *sql.DB
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(db *sql.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

// Name identifies this repository as a zone source
func (r *ZoneRepository) Name() string {
	return "sqlite"
}

// Load returns every configured zone
func (r *ZoneRepository) Load(ctx context.Context) ([]models.GeofenceZone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address, latitude, longitude, radius_meters, zone_type
		FROM geofence_zones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	var zones []models.GeofenceZone
	for rows.Next() {
		var z models.GeofenceZone
		if err := rows.Scan(&z.ID, &z.Name, &z.Address, &z.Latitude, &z.Longitude, &z.RadiusMeters, &z.Type); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return zones, nil
}

// Upsert creates or replaces a zone by name
func (r *ZoneRepository) Upsert(ctx context.Context, z *models.GeofenceZone) error {
	query := `INSERT INTO geofence_zones (name, address, latitude, longitude, radius_meters, zone_type)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			address = excluded.address,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			radius_meters = excluded.radius_meters,
			zone_type = excluded.zone_type`

	if _, err := r.db.ExecContext(ctx, query, z.Name, z.Address, z.Latitude, z.Longitude, z.RadiusMeters, z.Type); err != nil {
		return fmt.Errorf("failed to upsert zone %s: %w", z.Name, err)
	}
	return nil
}
