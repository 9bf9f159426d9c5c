package segmentation

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/resolver"
	"github.com/jengzang/fleet-timeline-backend/internal/spatial"
)

// LocationResolver labels trip endpoints
type LocationResolver interface {
	Resolve(ctx context.Context, lat, lon float64, state resolver.VehicleState) models.ResolvedLocation
}

// Engine builds trips and stops for one vehicle at a time. It holds no
// per-query state and is safe for concurrent use.
type Engine struct {
	resolver LocationResolver
	params   Params
	now      func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the wall clock used to end an ongoing trailing stop
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a segmentation engine
func NewEngine(r LocationResolver, params Params, opts ...Option) *Engine {
	e := &Engine{resolver: r, params: params, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's thresholds
func (e *Engine) Params() Params {
	return e.params
}

// Build segments fixes, ordered by time, into trips and stops. windowEnd
// bounds a trailing stop that is still in progress.
func (e *Engine) Build(ctx context.Context, vehicleID string, fixes []models.GpsFix, windowEnd time.Time) ([]models.Trip, []models.Stop) {
	trips := []models.Trip{}
	stops := []models.Stop{}
	if len(fixes) == 0 {
		return trips, stops
	}

	clean := FilterOutliers(fixes, DefaultOutlierThresholds)
	if dropped := len(fixes) - len(clean); dropped > 0 {
		log.Printf("[Segmentation] Vehicle %s: dropped %d outlier fixes", vehicleID, dropped)
	}
	fixes = clean
	if len(fixes) == 0 {
		return trips, stops
	}

	var lastParked bool
	for _, b := range DetectBoundaries(fixes, e.params) {
		route := fixes[b.Start : b.End+1]
		points := make([]spatial.Point, len(route))
		for i, f := range route {
			points[i] = spatial.Point{Lat: f.Latitude, Lon: f.Longitude}
		}

		distance := spatial.PathLength(points)
		if distance < e.params.MinTripDistanceMeters {
			continue
		}

		trip := e.buildTrip(ctx, vehicleID, route, distance, b.Parked, len(trips) == 0)
		trips = append(trips, trip)
		lastParked = b.Parked
	}

	applyContinuity(trips)

	for i := 0; i+1 < len(trips); i++ {
		if stop, ok := e.buildStop(vehicleID, trips[i].EndLocation, trips[i].EndTime, trips[i+1].StartTime); ok {
			stops = append(stops, stop)
		}
	}

	if n := len(trips); n > 0 && lastParked && !fixes[len(fixes)-1].Moving {
		end := e.now()
		ongoing := true
		if !windowEnd.IsZero() && windowEnd.Before(end) {
			end = windowEnd
			ongoing = false
		}
		if stop, ok := e.buildStop(vehicleID, trips[n-1].EndLocation, trips[n-1].EndTime, end); ok {
			stop.Ongoing = ongoing
			stops = append(stops, stop)
		}
	}

	if e.params.SuppressIntermediateHomeStops {
		stops = suppressHomeStops(stops)
	}

	log.Printf("[Segmentation] Vehicle %s: %d fixes -> %d trips, %d stops", vehicleID, len(fixes), len(trips), len(stops))
	return trips, stops
}

func (e *Engine) buildTrip(ctx context.Context, vehicleID string, route []models.GpsFix, distance float64, parked, first bool) models.Trip {
	startFix, endFix := route[0], route[len(route)-1]

	trip := models.Trip{
		ID:              uuid.NewString(),
		VehicleID:       vehicleID,
		StartTime:       startFix.Timestamp,
		EndTime:         endFix.Timestamp,
		DistanceMiles:   spatial.MetersToMiles(distance),
		DurationMinutes: endFix.Timestamp.Sub(startFix.Timestamp).Minutes(),
		Route:           route,
	}

	if startFix.BatteryLevel != nil && endFix.BatteryLevel != nil {
		used := *startFix.BatteryLevel - *endFix.BatteryLevel
		trip.BatteryUsedPct = &used
	}
	if trip.DurationMinutes > 0 {
		trip.AvgSpeed = trip.DistanceMiles / (trip.DurationMinutes / 60)
	}
	for _, f := range route {
		if f.Speed != nil && *f.Speed > trip.MaxSpeed {
			trip.MaxSpeed = *f.Speed
		}
	}

	// Later trips take their start from the previous trip's end
	if first {
		trip.StartLocation = e.endpoint(ctx, startFix, resolver.StateParked)
	} else {
		trip.StartLocation = rawEndpoint(startFix)
	}

	endState := resolver.StateMoving
	if parked {
		endState = resolver.StateParked
	}
	trip.EndLocation = e.endpoint(ctx, endFix, endState)

	return trip
}

func (e *Engine) endpoint(ctx context.Context, f models.GpsFix, state resolver.VehicleState) models.TripEndpoint {
	ep := rawEndpoint(f)
	ep.ResolvedLocation = e.resolver.Resolve(ctx, f.Latitude, f.Longitude, state)
	return ep
}

func rawEndpoint(f models.GpsFix) models.TripEndpoint {
	return models.TripEndpoint{
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
		BatteryLevel: f.BatteryLevel,
	}
}

// applyContinuity makes each trip start exactly where the previous one ended
func applyContinuity(trips []models.Trip) {
	for i := 1; i < len(trips); i++ {
		battery := trips[i].StartLocation.BatteryLevel
		trips[i].StartLocation = trips[i-1].EndLocation
		trips[i].StartLocation.BatteryLevel = battery
	}
}

func (e *Engine) buildStop(vehicleID string, loc models.TripEndpoint, start, end time.Time) (models.Stop, bool) {
	held := end.Sub(start)
	if held <= e.params.MinStopDuration {
		return models.Stop{}, false
	}
	return models.Stop{
		ID:              uuid.NewString(),
		VehicleID:       vehicleID,
		StartTime:       start,
		EndTime:         end,
		Location:        loc,
		DurationMinutes: held.Minutes(),
		Classification:  Classify(loc.ResolvedLocation),
	}, true
}

// Classify derives a stop classification from where the vehicle stopped
func Classify(loc models.ResolvedLocation) string {
	if loc.ZoneType == models.ZoneTypeClient {
		return models.StopClientVisit
	}
	if loc.ZoneType == models.ZoneTypeSupplier {
		return models.StopService
	}
	switch loc.Source {
	case models.SourceHomeBase, models.SourceCustom, models.SourcePlacesAPI:
		return models.StopService
	}
	return models.StopUnknown
}

// suppressHomeStops drops home base stops except the last stop of the window
func suppressHomeStops(stops []models.Stop) []models.Stop {
	if len(stops) < 2 {
		return stops
	}
	kept := make([]models.Stop, 0, len(stops))
	for i, s := range stops {
		if i < len(stops)-1 && s.Location.Source == models.SourceHomeBase {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
