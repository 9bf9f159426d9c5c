package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/quota"
	"github.com/jengzang/fleet-timeline-backend/internal/resolver"
)

// ErrInvalidZone is returned for zones that cannot be stored
var ErrInvalidZone = errors.New("invalid zone")

// ZoneStore persists operator-managed zones
type ZoneStore interface {
	Upsert(ctx context.Context, z *models.GeofenceZone) error
}

// LocationService exposes zone matching, resolution and zone management
type LocationService struct {
	resolver *resolver.Resolver
	quota    *quota.DailyQuota
	store    ZoneStore
}

// NewLocationService creates a new location service. quota and store may be nil.
func NewLocationService(r *resolver.Resolver, q *quota.DailyQuota, store ZoneStore) *LocationService {
	return &LocationService{resolver: r, quota: q, store: store}
}

// FindLocationMatch returns the home base or client zone containing the coordinate
func (s *LocationService) FindLocationMatch(lat, lon float64) *models.LocationMatch {
	return s.resolver.FindLocationMatch(lat, lon)
}

// Resolve labels a coordinate through the full cascade
func (s *LocationService) Resolve(ctx context.Context, lat, lon float64, state resolver.VehicleState) models.ResolvedLocation {
	return s.resolver.Resolve(ctx, lat, lon, state)
}

// GetZones returns the zone table currently in use
func (s *LocationService) GetZones() []models.GeofenceZone {
	return s.resolver.Zones().Zones()
}

// ReloadZones refreshes the zone table from its sources
func (s *LocationService) ReloadZones(ctx context.Context) int {
	return s.resolver.Zones().Reload(ctx)
}

// SaveZone stores a zone and reloads the table so it takes effect
func (s *LocationService) SaveZone(ctx context.Context, z *models.GeofenceZone) error {
	if s.store == nil {
		return fmt.Errorf("zone storage is not configured")
	}
	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidZone)
	}
	if z.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive", ErrInvalidZone)
	}
	switch z.Type {
	case "":
		z.Type = models.ZoneTypeClient
	case models.ZoneTypeHomeBase, models.ZoneTypeClient, models.ZoneTypeSupplier:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidZone, z.Type)
	}

	if err := s.store.Upsert(ctx, z); err != nil {
		return fmt.Errorf("failed to save zone: %w", err)
	}
	s.resolver.Zones().Reload(ctx)
	return nil
}

// QuotaStatus reports today's paid lookup usage
func (s *LocationService) QuotaStatus() models.QuotaStatus {
	if s.quota == nil {
		return models.QuotaStatus{}
	}
	return models.QuotaStatus{
		Limit:     s.quota.Limit(),
		Used:      s.quota.Used(),
		Remaining: s.quota.Remaining(),
	}
}
