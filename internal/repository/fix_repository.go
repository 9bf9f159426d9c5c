package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// FixRepository handles database operations for GPS fixes
type FixRepository struct {
	db *sql.DB
}

// NewFixRepository creates a new fix repository
func NewFixRepository(db *sql.DB) *FixRepository {
	return &FixRepository{db: db}
}

// GetFixes returns a vehicle's fixes in [start, end) ordered by time
func (r *FixRepository) GetFixes(ctx context.Context, filter models.FixFilter) ([]models.GpsFix, error) {
	query := `SELECT id, vehicle_id, latitude, longitude, ts, speed, battery_level, ignition, moving
		FROM gps_fixes
		WHERE vehicle_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC`

	rows, err := r.db.QueryContext(ctx, query, filter.VehicleID, filter.Start.UnixMilli(), filter.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query fixes: %w", err)
	}
	defer rows.Close()

	var fixes []models.GpsFix
	for rows.Next() {
		var (
			f        models.GpsFix
			ts       int64
			speed    sql.NullFloat64
			battery  sql.NullFloat64
			ignition sql.NullBool
		)
		if err := rows.Scan(&f.ID, &f.VehicleID, &f.Latitude, &f.Longitude, &ts, &speed, &battery, &ignition, &f.Moving); err != nil {
			return nil, fmt.Errorf("failed to scan fix: %w", err)
		}

		f.Timestamp = time.UnixMilli(ts).UTC()
		if speed.Valid {
			f.Speed = &speed.Float64
		}
		if battery.Valid {
			f.BatteryLevel = &battery.Float64
		}
		if ignition.Valid {
			f.Ignition = &ignition.Bool
		}
		fixes = append(fixes, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return fixes, nil
}

// InsertFixes stores a batch of fixes; duplicates of (vehicle, timestamp) are ignored
func (r *FixRepository) InsertFixes(ctx context.Context, fixes []models.GpsFix) (int, error) {
	if len(fixes) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO gps_fixes
		(vehicle_id, latitude, longitude, ts, speed, battery_level, ignition, moving)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, f := range fixes {
		res, err := stmt.ExecContext(ctx,
			f.VehicleID, f.Latitude, f.Longitude, f.Timestamp.UnixMilli(),
			nullFloat(f.Speed), nullFloat(f.BatteryLevel), nullBool(f.Ignition), f.Moving,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert fix for %s: %w", f.VehicleID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
