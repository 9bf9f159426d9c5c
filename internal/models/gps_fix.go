package models

import "time"

// GpsFix represents a single GPS sample reported by a vehicle
type GpsFix struct {
	ID           int64     `json:"id,omitempty" db:"id"`
	VehicleID    string    `json:"vehicle_id" db:"vehicle_id"`
	Latitude     float64   `json:"latitude" db:"latitude"`
	Longitude    float64   `json:"longitude" db:"longitude"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Speed        *float64  `json:"speed,omitempty" db:"speed"`                 // mph
	BatteryLevel *float64  `json:"battery_level,omitempty" db:"battery_level"` // percent
	Ignition     *bool     `json:"ignition,omitempty" db:"ignition"`
	Moving       bool      `json:"moving" db:"moving"`
}

// FixFilter represents the query window for a vehicle's fixes
type FixFilter struct {
	VehicleID string
	Start     time.Time
	End       time.Time
}
