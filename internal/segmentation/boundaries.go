// Package segmentation splits a vehicle's GPS fixes into trips and the stops
// between them.
package segmentation

import (
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/spatial"
)

// Params tunes trip and stop detection
type Params struct {
	// StationaryRadiusMeters is how far a halted vehicle may drift
	StationaryRadiusMeters float64
	// MinStopDuration is how long a halt must last to end a trip; shorter
	// halts are treated as traffic
	MinStopDuration time.Duration
	// MinTripDistanceMeters drops trips shorter than this as GPS jitter
	MinTripDistanceMeters float64
	// SuppressIntermediateHomeStops hides home base stops other than the
	// last stop of the window
	SuppressIntermediateHomeStops bool
}

// DefaultParams returns the production thresholds
func DefaultParams() Params {
	return Params{
		StationaryRadiusMeters:        100,
		MinStopDuration:               90 * time.Second,
		MinTripDistanceMeters:         50,
		SuppressIntermediateHomeStops: true,
	}
}

// Boundary marks a candidate trip as inclusive fix indices. Parked is set
// when the trip ended with the vehicle halted; otherwise the window ran out
// while it was still moving.
type Boundary struct {
	Start  int
	End    int
	Parked bool
}

// DetectBoundaries scans fixes once and returns candidate trip boundaries.
// fixes must be ordered by time and are not modified.
func DetectBoundaries(fixes []models.GpsFix, p Params) []Boundary {
	var (
		out []Boundary
		n   = len(fixes)
		i   = 0
	)

	for i < n {
		// idle: wait for movement
		for i < n && !fixes[i].Moving {
			i++
		}
		if i >= n {
			break
		}

		start := i
		end, next, parked := scanTrip(fixes, start, p)
		if parked || end-start+1 >= 2 {
			out = append(out, Boundary{Start: start, End: end, Parked: parked})
		}
		i = next
	}

	return out
}

// scanTrip walks forward from a moving fix until a qualifying halt or the
// end of the window. It returns the trip's last fix and the index where the
// scan resumes, which is past the stationary run that closed the trip.
func scanTrip(fixes []models.GpsFix, start int, p Params) (int, int, bool) {
	n := len(fixes)
	for j := start + 1; j < n; j++ {
		if fixes[j].Moving {
			continue
		}

		last := stationaryRunEnd(fixes, j, p.StationaryRadiusMeters)
		held := fixes[last].Timestamp.Sub(fixes[j].Timestamp)
		if held >= p.MinStopDuration || last == n-1 {
			return j, resumeAfterRun(fixes, j, last), true
		}
	}
	return n - 1, n, false
}

// resumeAfterRun skips the stationary run halt..last. Moving fixes inside
// the run are GPS flicker and are consumed with it, except for the moving
// fixes that close the run, which are the vehicle pulling away.
func resumeAfterRun(fixes []models.GpsFix, halt, last int) int {
	next := last + 1
	for next-1 > halt && fixes[next-1].Moving {
		next--
	}
	return next
}

// stationaryRunEnd returns the last index of the run of fixes that stay
// within radius of fixes[from]
func stationaryRunEnd(fixes []models.GpsFix, from int, radius float64) int {
	anchor := spatial.Point{Lat: fixes[from].Latitude, Lon: fixes[from].Longitude}
	last := from
	for k := from + 1; k < len(fixes); k++ {
		if !spatial.Within(anchor, spatial.Point{Lat: fixes[k].Latitude, Lon: fixes[k].Longitude}, radius) {
			break
		}
		last = k
	}
	return last
}
