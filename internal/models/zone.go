package models

// ZoneType classifies a geofence zone
type ZoneType string

// ZoneType constants
const (
	ZoneTypeHomeBase ZoneType = "home_base"
	ZoneTypeClient   ZoneType = "client"
	ZoneTypeSupplier ZoneType = "supplier"
)

// GeofenceZone is a named circular region around a business-meaningful place.
// Residential sites use roughly 100m; large commercial sites 300-1200m.
type GeofenceZone struct {
	ID           int64    `json:"id,omitempty" yaml:"-" db:"id"`
	Name         string   `json:"name" yaml:"name" db:"name"`
	Address      string   `json:"address,omitempty" yaml:"address" db:"address"`
	Latitude     float64  `json:"latitude" yaml:"lat" db:"latitude"`
	Longitude    float64  `json:"longitude" yaml:"lon" db:"longitude"`
	RadiusMeters float64  `json:"radius_meters" yaml:"radius" db:"radius_meters"`
	Type         ZoneType `json:"type" yaml:"type" db:"zone_type"`
}

// HasCoordinates reports whether the zone center is set
func (z GeofenceZone) HasCoordinates() bool {
	return z.Latitude != 0 || z.Longitude != 0
}

// LocationOverride is a hand-curated coordinate→label entry
type LocationOverride struct {
	Latitude  float64 `json:"latitude" yaml:"lat"`
	Longitude float64 `json:"longitude" yaml:"lon"`
	Label     string  `json:"label" yaml:"label"`
}
