// Package zones loads the geofence zone table from configuration sources,
// falling back to a static seed list when none is available.
package zones

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// LargeRadiusMeters is the radius above which a zone is reported as a likely
// misconfiguration; the biggest commercial sites run to about 1200m
const LargeRadiusMeters = 1200.0

// Source is a zone configuration collaborator
type Source interface {
	Name() string
	Load(ctx context.Context) ([]models.GeofenceZone, error)
}

// Geocoder resolves a street address to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, address string) (float64, float64, error)
}

// FileConfig is the on-disk layout of the zones file
type FileConfig struct {
	Zones     []models.GeofenceZone     `yaml:"zones"`
	Overrides []models.LocationOverride `yaml:"overrides"`
}

// FileSource reads zones and custom overrides from a YAML file
type FileSource struct {
	path string
}

// NewFileSource creates a file source for path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source in logs
func (s *FileSource) Name() string {
	return "file:" + s.path
}

func (s *FileSource) read() (*FileConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zones file: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse zones file: %w", err)
	}
	return &cfg, nil
}

// Load returns the zones declared in the file
func (s *FileSource) Load(_ context.Context) ([]models.GeofenceZone, error) {
	cfg, err := s.read()
	if err != nil {
		return nil, err
	}
	return cfg.Zones, nil
}

// Overrides returns the custom coordinate→label table. A missing file yields
// an empty table.
func (s *FileSource) Overrides() ([]models.LocationOverride, error) {
	cfg, err := s.read()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg.Overrides, nil
}

// SeedZones is the static fallback used when no source yields any zone
func SeedZones() []models.GeofenceZone {
	return []models.GeofenceZone{
		{
			Name:         "Home Base",
			Latitude:     36.1831,
			Longitude:    -94.1695,
			RadiusMeters: 150,
			Type:         models.ZoneTypeHomeBase,
		},
	}
}

// Loader merges zones from its sources in order; later sources replace
// earlier zones with the same name
type Loader struct {
	sources  []Source
	geocoder Geocoder
}

// NewLoader creates a loader. geocoder may be nil, in which case zones
// without coordinates are dropped.
func NewLoader(geocoder Geocoder, sources ...Source) *Loader {
	return &Loader{sources: sources, geocoder: geocoder}
}

// Load returns the validated zone table. It never fails: unavailable sources
// are logged and the seed list is used when nothing else is found.
func (l *Loader) Load(ctx context.Context) []models.GeofenceZone {
	var (
		merged []models.GeofenceZone
		index  = map[string]int{}
	)

	for _, src := range l.sources {
		zones, err := src.Load(ctx)
		if err != nil {
			log.Printf("[ZoneLoader] Source %s unavailable: %v", src.Name(), err)
			continue
		}
		for _, z := range zones {
			key := strings.ToLower(strings.TrimSpace(z.Name))
			if i, ok := index[key]; ok {
				merged[i] = z
				continue
			}
			index[key] = len(merged)
			merged = append(merged, z)
		}
		log.Printf("[ZoneLoader] Loaded %d zones from %s", len(zones), src.Name())
	}

	valid := l.validate(ctx, merged)
	if len(valid) == 0 {
		log.Printf("[ZoneLoader] No zones configured, using seed list")
		return SeedZones()
	}
	return valid
}

func (l *Loader) validate(ctx context.Context, zones []models.GeofenceZone) []models.GeofenceZone {
	valid := make([]models.GeofenceZone, 0, len(zones))
	for _, z := range zones {
		if z.Type == "" {
			z.Type = models.ZoneTypeClient
		}

		if !z.HasCoordinates() {
			if l.geocoder == nil || z.Address == "" {
				log.Printf("[ZoneLoader] Dropping zone %q: no coordinates", z.Name)
				continue
			}
			lat, lon, err := l.geocoder.Geocode(ctx, z.Address)
			if err != nil {
				log.Printf("[ZoneLoader] Dropping zone %q: geocoding %q failed: %v", z.Name, z.Address, err)
				continue
			}
			z.Latitude, z.Longitude = lat, lon
		}

		if z.Latitude < -90 || z.Latitude > 90 || z.Longitude < -180 || z.Longitude > 180 {
			log.Printf("[ZoneLoader] Dropping zone %q: coordinate out of range", z.Name)
			continue
		}
		if z.RadiusMeters <= 0 {
			log.Printf("[ZoneLoader] Dropping zone %q: radius must be positive", z.Name)
			continue
		}
		if z.RadiusMeters > LargeRadiusMeters {
			log.Printf("[ZoneLoader] Zone %q radius %.0fm exceeds %.0fm, check configuration", z.Name, z.RadiusMeters, LargeRadiusMeters)
		}

		valid = append(valid, z)
	}
	return valid
}
