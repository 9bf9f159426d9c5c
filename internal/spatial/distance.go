package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers

	// MetersPerMile converts meters to statute miles
	MetersPerMile = 1609.344

	// FormulaDisagreementMeters is the haversine/planar gap above which a
	// comparison is flagged as anomalous
	FormulaDisagreementMeters = 100.0
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PlanarDistance calculates an equirectangular approximation of the distance
// between two points in meters. Degrees are converted to meters and longitude
// is scaled by the cosine of the mean latitude. No antimeridian wrapping.
func PlanarDistance(lat1, lon1, lat2, lon2 float64) float64 {
	metersPerDegree := EarthRadiusMeters * math.Pi / 180
	meanLat := (lat1 + lat2) / 2 * math.Pi / 180

	dx := (lon2 - lon1) * metersPerDegree * math.Cos(meanLat)
	dy := (lat2 - lat1) * metersPerDegree
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceComparison holds both formula results for one coordinate pair
type DistanceComparison struct {
	Haversine float64
	Planar    float64
	// Conservative is the haversine distance, or the larger of the two when
	// the formulas disagree beyond FormulaDisagreementMeters
	Conservative float64
	Anomaly      bool
}

// CompareDistances evaluates both formulas and picks the conservative distance
func CompareDistances(lat1, lon1, lat2, lon2 float64) DistanceComparison {
	h := HaversineDistance(lat1, lon1, lat2, lon2)
	p := PlanarDistance(lat1, lon1, lat2, lon2)

	cmp := DistanceComparison{Haversine: h, Planar: p, Conservative: h}
	if math.Abs(h-p) > FormulaDisagreementMeters {
		cmp.Anomaly = true
		cmp.Conservative = math.Max(h, p)
	}
	return cmp
}

// MetersToMiles converts meters to miles
func MetersToMiles(m float64) float64 {
	return m / MetersPerMile
}
