package models

import "time"

// LocationSource tags which resolution tier produced a label
type LocationSource string

// LocationSource constants
const (
	SourceCustom      LocationSource = "custom"
	SourceHomeBase    LocationSource = "home_base"
	SourceClient      LocationSource = "client"
	SourcePlacesAPI   LocationSource = "places_api"
	SourceFreeGeocode LocationSource = "free_geocode"
	SourceCoordinates LocationSource = "coordinates"
)

// IsAuthoritative reports whether labels from this source are written to the
// durable cache immediately and never evicted from memory
func (s LocationSource) IsAuthoritative() bool {
	switch s {
	case SourceCustom, SourceHomeBase, SourceClient, SourcePlacesAPI:
		return true
	}
	return false
}

// Valid reports whether s is one of the known sources
func (s LocationSource) Valid() bool {
	return s.IsAuthoritative() || s == SourceFreeGeocode || s == SourceCoordinates
}

// ResolvedLocation is the label produced by the resolution cascade
type ResolvedLocation struct {
	Label    string         `json:"label"`
	Source   LocationSource `json:"source"`
	ZoneName string         `json:"zone_name,omitempty"`
	ZoneType ZoneType       `json:"zone_type,omitempty"`
}

// LocationMatch is returned to alerting collaborators for arrival/departure detection
type LocationMatch struct {
	Type ZoneType `json:"type"` // home_base or client
	Name string   `json:"name"`
}

// CacheSchemaVersion is the current version of persisted cache records
const CacheSchemaVersion = 2

// CacheEntry is a persisted coordinate→label record
type CacheEntry struct {
	Key           string         `json:"key" db:"cache_key"`
	Label         string         `json:"label" db:"label"`
	Source        LocationSource `json:"source" db:"source"`
	Latitude      float64        `json:"latitude" db:"latitude"`
	Longitude     float64        `json:"longitude" db:"longitude"`
	SchemaVersion int            `json:"schema_version" db:"schema_version"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}
