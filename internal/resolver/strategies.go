package resolver

import (
	"context"
	"fmt"

	"github.com/jengzang/fleet-timeline-backend/internal/geocache"
	"github.com/jengzang/fleet-timeline-backend/internal/geocoder"
	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/quota"
	"github.com/jengzang/fleet-timeline-backend/internal/spatial"
)

const (
	// OverrideRadiusMeters is how close a coordinate must be to an override
	OverrideRadiusMeters = 50.0
	// PlacesSearchRadiusMeters is the nearby search radius for the paid tier
	PlacesSearchRadiusMeters = 45
)

// OverrideStrategy matches the hand-curated coordinate→label table
type OverrideStrategy struct {
	overrides []models.LocationOverride
}

// NewOverrideStrategy creates the custom override tier
func NewOverrideStrategy(overrides []models.LocationOverride) *OverrideStrategy {
	return &OverrideStrategy{overrides: overrides}
}

func (s *OverrideStrategy) Name() string { return "override" }

func (s *OverrideStrategy) Attempt(_ context.Context, q Query) (*models.ResolvedLocation, error) {
	var (
		best     *models.LocationOverride
		bestDist float64
	)
	for i := range s.overrides {
		o := &s.overrides[i]
		d := spatial.HaversineDistance(q.Latitude, q.Longitude, o.Latitude, o.Longitude)
		if d > OverrideRadiusMeters {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = o, d
		}
	}
	if best == nil {
		return nil, nil
	}
	return &models.ResolvedLocation{Label: best.Label, Source: models.SourceCustom}, nil
}

// HomeBaseStrategy checks the home base zone ahead of every other zone
type HomeBaseStrategy struct {
	table *ZoneTable
}

// NewHomeBaseStrategy creates the home base tier
func NewHomeBaseStrategy(table *ZoneTable) *HomeBaseStrategy {
	return &HomeBaseStrategy{table: table}
}

func (s *HomeBaseStrategy) Name() string { return "home_base" }

func (s *HomeBaseStrategy) Attempt(_ context.Context, q Query) (*models.ResolvedLocation, error) {
	var homes []models.GeofenceZone
	for _, z := range s.table.Zones() {
		if z.Type == models.ZoneTypeHomeBase {
			homes = append(homes, z)
		}
	}
	z, ok := MatchZone(homes, q.Latitude, q.Longitude)
	if !ok {
		return nil, nil
	}
	return zoneLocation(*z), nil
}

// ZoneStrategy checks every configured zone
type ZoneStrategy struct {
	table *ZoneTable
}

// NewZoneStrategy creates the client geofence tier
func NewZoneStrategy(table *ZoneTable) *ZoneStrategy {
	return &ZoneStrategy{table: table}
}

func (s *ZoneStrategy) Name() string { return "zone" }

func (s *ZoneStrategy) Attempt(_ context.Context, q Query) (*models.ResolvedLocation, error) {
	z, ok := MatchZone(s.table.Zones(), q.Latitude, q.Longitude)
	if !ok {
		return nil, nil
	}
	return zoneLocation(*z), nil
}

func zoneLocation(z models.GeofenceZone) *models.ResolvedLocation {
	source := models.SourceClient
	if z.Type == models.ZoneTypeHomeBase {
		source = models.SourceHomeBase
	}
	return &models.ResolvedLocation{
		Label:    z.Name,
		Source:   source,
		ZoneName: z.Name,
		ZoneType: z.Type,
	}
}

// CacheStrategy looks up previously resolved labels
type CacheStrategy struct {
	cache *geocache.Cache
}

// NewCacheStrategy creates the durable cache tier
func NewCacheStrategy(cache *geocache.Cache) *CacheStrategy {
	return &CacheStrategy{cache: cache}
}

func (s *CacheStrategy) Name() string { return "cache" }

func (s *CacheStrategy) Attempt(_ context.Context, q Query) (*models.ResolvedLocation, error) {
	e, ok := s.cache.Get(q.Latitude, q.Longitude)
	if !ok || e.Label == "" {
		return nil, nil
	}
	// Zone labels are only served by the zone tiers. A rounded key can
	// straddle a zone edge, and the entry carries no zone type.
	if e.Source == models.SourceHomeBase || e.Source == models.SourceClient {
		return nil, nil
	}
	return &models.ResolvedLocation{Label: e.Label, Source: e.Source}, nil
}

// PlaceSearcher finds businesses near a coordinate
type PlaceSearcher interface {
	NearbyPlaces(ctx context.Context, lat, lon float64, radius uint) ([]geocoder.Place, error)
}

// PlacesStrategy is the rate-limited paid lookup, used only for parked vehicles
type PlacesStrategy struct {
	places PlaceSearcher
	quota  *quota.DailyQuota
}

// NewPlacesStrategy creates the paid place tier
func NewPlacesStrategy(places PlaceSearcher, q *quota.DailyQuota) *PlacesStrategy {
	return &PlacesStrategy{places: places, quota: q}
}

func (s *PlacesStrategy) Name() string { return "places" }

func (s *PlacesStrategy) Attempt(ctx context.Context, q Query) (*models.ResolvedLocation, error) {
	if q.State != StateParked {
		return nil, nil
	}
	// Every attempt counts against the budget, whatever the outcome
	if !s.quota.TryAcquire() {
		return nil, nil
	}

	places, err := s.places.NearbyPlaces(ctx, q.Latitude, q.Longitude, PlacesSearchRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("nearby search failed: %w", err)
	}
	name, ok := geocoder.SelectPlace(places)
	if !ok {
		return nil, nil
	}
	return &models.ResolvedLocation{Label: name, Source: models.SourcePlacesAPI}, nil
}

// ReverseGeocoder turns a coordinate into a street address
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// ReverseGeocodeStrategy is the free street address tier
type ReverseGeocodeStrategy struct {
	geocoder ReverseGeocoder
}

// NewReverseGeocodeStrategy creates the free geocoding tier
func NewReverseGeocodeStrategy(g ReverseGeocoder) *ReverseGeocodeStrategy {
	return &ReverseGeocodeStrategy{geocoder: g}
}

func (s *ReverseGeocodeStrategy) Name() string { return "reverse_geocode" }

func (s *ReverseGeocodeStrategy) Attempt(ctx context.Context, q Query) (*models.ResolvedLocation, error) {
	addr, err := s.geocoder.ReverseGeocode(ctx, q.Latitude, q.Longitude)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode failed: %w", err)
	}
	if addr == "" {
		return nil, nil
	}
	return &models.ResolvedLocation{Label: addr, Source: models.SourceFreeGeocode}, nil
}

// CoordinateStrategy formats the raw coordinate; it always succeeds
type CoordinateStrategy struct{}

func (CoordinateStrategy) Name() string { return "coordinates" }

func (CoordinateStrategy) Attempt(_ context.Context, q Query) (*models.ResolvedLocation, error) {
	return coordinateLocation(q.Latitude, q.Longitude), nil
}

func coordinateLocation(lat, lon float64) *models.ResolvedLocation {
	return &models.ResolvedLocation{
		Label:  fmt.Sprintf("%.5f, %.5f", lat, lon),
		Source: models.SourceCoordinates,
	}
}
