package resolver

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/spatial"
)

// DefaultSanityCeilingMeters bounds how far from a zone center a match may be
const DefaultSanityCeilingMeters = 500.0

// ZoneLoader produces a validated zone list
type ZoneLoader interface {
	Load(ctx context.Context) []models.GeofenceZone
}

// ZoneTable holds the geofence zones. The slice is never mutated after it is
// published; Reload swaps in a new one.
type ZoneTable struct {
	zones  atomic.Pointer[[]models.GeofenceZone]
	loader ZoneLoader
}

// NewZoneTable creates a table holding zones. loader may be nil when the
// table is never reloaded.
func NewZoneTable(loader ZoneLoader, zones []models.GeofenceZone) *ZoneTable {
	t := &ZoneTable{loader: loader}
	t.set(zones)
	return t
}

func (t *ZoneTable) set(zones []models.GeofenceZone) {
	cp := make([]models.GeofenceZone, len(zones))
	copy(cp, zones)
	t.zones.Store(&cp)
}

// Zones returns the current zone list; callers must not modify it
func (t *ZoneTable) Zones() []models.GeofenceZone {
	if p := t.zones.Load(); p != nil {
		return *p
	}
	return nil
}

// Reload fetches zones from the loader and publishes them
func (t *ZoneTable) Reload(ctx context.Context) int {
	if t.loader == nil {
		return len(t.Zones())
	}
	zones := t.loader.Load(ctx)
	t.set(zones)
	log.Printf("[ZoneTable] Reloaded %d zones", len(zones))
	return len(zones)
}

// SanityCeiling is the maximum distance at which a zone may match
func SanityCeiling(radius float64) float64 {
	if radius > DefaultSanityCeilingMeters {
		return 1.5 * radius
	}
	return DefaultSanityCeilingMeters
}

// zoneDistance measures lat/lon against the zone center with both formulas,
// reporting disagreement as a likely configuration error
func zoneDistance(z models.GeofenceZone, lat, lon float64) float64 {
	cmp := spatial.CompareDistances(lat, lon, z.Latitude, z.Longitude)
	if cmp.Anomaly {
		log.Printf("[Resolver] Distance anomaly for zone %q: haversine=%.1fm planar=%.1fm, using %.1fm",
			z.Name, cmp.Haversine, cmp.Planar, cmp.Conservative)
	}
	return cmp.Conservative
}

// MatchZone returns the zone containing lat/lon. When several match, a home
// base wins, otherwise the nearest.
func MatchZone(zones []models.GeofenceZone, lat, lon float64) (*models.GeofenceZone, bool) {
	var (
		best     *models.GeofenceZone
		bestDist float64
	)

	for i := range zones {
		z := &zones[i]
		d := zoneDistance(*z, lat, lon)
		if d > z.RadiusMeters {
			continue
		}
		// Unreachable while SanityCeiling(r) >= r; kept as a backstop.
		if ceiling := SanityCeiling(z.RadiusMeters); d > ceiling {
			log.Printf("[Resolver] Rejecting match for zone %q: %.1fm exceeds sanity ceiling %.1fm", z.Name, d, ceiling)
			continue
		}

		switch {
		case best == nil:
		case z.Type == models.ZoneTypeHomeBase && best.Type != models.ZoneTypeHomeBase:
		case best.Type == models.ZoneTypeHomeBase && z.Type != models.ZoneTypeHomeBase:
			continue
		case d >= bestDist:
			continue
		}
		best, bestDist = z, d
	}

	if best == nil {
		return nil, false
	}
	match := *best
	return &match, true
}
