package models

import "time"

// TripEndpoint is a resolved trip or stop location with its raw coordinates
type TripEndpoint struct {
	ResolvedLocation
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	BatteryLevel *float64 `json:"battery_level,omitempty"`
}

// Trip is a contiguous interval of vehicle movement bounded by two stationary periods
type Trip struct {
	ID              string       `json:"id"`
	VehicleID       string       `json:"vehicle_id"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         time.Time    `json:"end_time"`
	StartLocation   TripEndpoint `json:"start_location"`
	EndLocation     TripEndpoint `json:"end_location"`
	DistanceMiles   float64      `json:"distance_miles"`
	DurationMinutes float64      `json:"duration_minutes"`
	BatteryUsedPct  *float64     `json:"battery_used_pct,omitempty"`
	AvgSpeed        float64      `json:"avg_speed"`
	MaxSpeed        float64      `json:"max_speed"`
	Route           []GpsFix     `json:"route"`
}

// StopClassification constants
const (
	StopClientVisit = "client_visit"
	StopService     = "service_stop"
	StopUnknown     = "unknown_stop"
)

// Stop is the stationary interval between two trips, or trailing the last one
type Stop struct {
	ID              string       `json:"id"`
	VehicleID       string       `json:"vehicle_id"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         time.Time    `json:"end_time"`
	Location        TripEndpoint `json:"location"`
	DurationMinutes float64      `json:"duration_minutes"`
	Classification  string       `json:"classification"`
	Ongoing         bool         `json:"ongoing"`
}
