package models

// TimelineSummary aggregates a vehicle's activity over the query window
type TimelineSummary struct {
	TotalDistanceMiles   float64 `json:"total_distance_miles"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	MovingMinutes        float64 `json:"moving_minutes"`
	StoppedMinutes       float64 `json:"stopped_minutes"`
	BatteryUsedPct       float64 `json:"battery_used_pct"`
	ClientVisitCount     int     `json:"client_visit_count"`
	AvgSpeed             float64 `json:"avg_speed"`
	MaxSpeed             float64 `json:"max_speed"`
}

// Timeline is the trips/stops view of one vehicle over [start, end)
type Timeline struct {
	VehicleID string          `json:"vehicle_id"`
	Trips     []Trip          `json:"trips"`
	Stops     []Stop          `json:"stops"`
	Summary   TimelineSummary `json:"summary"`
}

// TimelineFilter represents query parameters for the timeline endpoint
type TimelineFilter struct {
	Start string `form:"start" binding:"required"` // unix seconds or RFC3339
	End   string `form:"end" binding:"required"`
}
