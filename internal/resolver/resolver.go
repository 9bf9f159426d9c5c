// Package resolver turns coordinates into human-readable place labels through
// an ordered cascade of strategies, cheapest and most authoritative first.
package resolver

import (
	"context"
	"log"

	"github.com/jengzang/fleet-timeline-backend/internal/geocache"
	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/quota"
)

// VehicleState is the motion state of the vehicle at the queried coordinate
type VehicleState string

// VehicleState constants
const (
	StateUnknown VehicleState = ""
	StateParked  VehicleState = "parked"
	StateMoving  VehicleState = "moving"
)

// Query is one resolution request
type Query struct {
	Latitude  float64
	Longitude float64
	State     VehicleState
}

// Strategy is one tier of the cascade. A nil location with a nil error means
// the tier has no answer and the next one is tried.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, q Query) (*models.ResolvedLocation, error)
}

// Resolver walks its strategies in order until one produces a label
type Resolver struct {
	strategies []Strategy
	zones      *ZoneTable
	cache      *geocache.Cache
}

// New creates a resolver over an explicit strategy list. cache receives
// write-backs and may be nil; zones backs FindLocationMatch and may be nil.
func New(zones *ZoneTable, cache *geocache.Cache, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, zones: zones, cache: cache}
}

// Dependencies are the collaborators of the standard cascade. Nil Places or
// Geocoder disables that tier.
type Dependencies struct {
	Overrides []models.LocationOverride
	Zones     *ZoneTable
	Cache     *geocache.Cache
	Places    PlaceSearcher
	Quota     *quota.DailyQuota
	Geocoder  ReverseGeocoder
}

// NewCascade builds the standard seven-tier resolver
func NewCascade(d Dependencies) *Resolver {
	strategies := []Strategy{
		NewOverrideStrategy(d.Overrides),
		NewHomeBaseStrategy(d.Zones),
		NewZoneStrategy(d.Zones),
	}
	if d.Cache != nil {
		strategies = append(strategies, NewCacheStrategy(d.Cache))
	}
	if d.Places != nil && d.Quota != nil {
		strategies = append(strategies, NewPlacesStrategy(d.Places, d.Quota))
	}
	if d.Geocoder != nil {
		strategies = append(strategies, NewReverseGeocodeStrategy(d.Geocoder))
	}
	strategies = append(strategies, CoordinateStrategy{})

	return New(d.Zones, d.Cache, strategies...)
}

// Resolve labels a coordinate. It never fails: strategy errors are logged and
// the coordinate text is returned when nothing else answers.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64, state VehicleState) models.ResolvedLocation {
	q := Query{Latitude: lat, Longitude: lon, State: state}

	for _, s := range r.strategies {
		loc, err := s.Attempt(ctx, q)
		if err != nil {
			log.Printf("[Resolver] Strategy %s failed for %.5f,%.5f: %v", s.Name(), lat, lon, err)
			continue
		}
		if loc == nil {
			continue
		}

		if _, fromCache := s.(*CacheStrategy); !fromCache {
			r.writeBack(ctx, lat, lon, *loc)
		}
		return *loc
	}

	return *coordinateLocation(lat, lon)
}

func (r *Resolver) writeBack(ctx context.Context, lat, lon float64, loc models.ResolvedLocation) {
	if r.cache == nil || loc.Source == models.SourceCoordinates {
		return
	}
	if err := r.cache.Put(ctx, lat, lon, loc); err != nil {
		log.Printf("[Resolver] Failed to cache %s label for %.5f,%.5f: %v", loc.Source, lat, lon, err)
	}
}

// FindLocationMatch reports the home base or geofence zone containing the
// coordinate, or nil. Only the zone tiers are consulted.
func (r *Resolver) FindLocationMatch(lat, lon float64) *models.LocationMatch {
	if r.zones == nil {
		return nil
	}
	// MatchZone already ranks a home base above every other zone
	if z, ok := MatchZone(r.zones.Zones(), lat, lon); ok {
		return &models.LocationMatch{Type: z.Type, Name: z.Name}
	}
	return nil
}

// Zones exposes the zone table
func (r *Resolver) Zones() *ZoneTable {
	return r.zones
}
