package zones

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

type staticSource struct {
	name  string
	zones []models.GeofenceZone
	err   error
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Load(_ context.Context) ([]models.GeofenceZone, error) {
	return s.zones, s.err
}

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, address string) (float64, float64, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	return m.geocodeFn(ctx, address)
}

const zonesYAML = `
zones:
  - name: Home Base
    lat: 36.1831
    lon: -94.1695
    radius: 150
    type: home_base
  - name: Acme Farms
    address: 500 Client Rd
    lat: 36.1873
    lon: -94.1312
    radius: 100
    type: client
overrides:
  - lat: 36.2001
    lon: -94.1500
    label: Fuel Depot
`

func writeZonesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zones.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource(t *testing.T) {
	src := NewFileSource(writeZonesFile(t, zonesYAML))

	zones, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].Type != models.ZoneTypeHomeBase || zones[1].RadiusMeters != 100 {
		t.Errorf("unexpected zones %+v", zones)
	}

	overrides, err := src.Overrides()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overrides) != 1 || overrides[0].Label != "Fuel Depot" {
		t.Errorf("unexpected overrides %+v", overrides)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
	overrides, err := src.Overrides()
	if err != nil || overrides != nil {
		t.Errorf("expected empty overrides, got %v, %v", overrides, err)
	}
}

func TestLoader_FallsBackToSeed(t *testing.T) {
	loader := NewLoader(nil, &staticSource{name: "broken", err: errors.New("unreachable")})
	zones := loader.Load(context.Background())
	if len(zones) != len(SeedZones()) || zones[0].Type != models.ZoneTypeHomeBase {
		t.Errorf("expected seed zones, got %+v", zones)
	}
}

func TestLoader_MergesByName(t *testing.T) {
	file := &staticSource{name: "file", zones: []models.GeofenceZone{
		{Name: "Acme Farms", Latitude: 36.1873, Longitude: -94.1312, RadiusMeters: 100, Type: models.ZoneTypeClient},
		{Name: "Home Base", Latitude: 36.1831, Longitude: -94.1695, RadiusMeters: 150, Type: models.ZoneTypeHomeBase},
	}}
	db := &staticSource{name: "db", zones: []models.GeofenceZone{
		{Name: "acme farms", Latitude: 36.1873, Longitude: -94.1312, RadiusMeters: 400, Type: models.ZoneTypeClient},
	}}

	zones := NewLoader(nil, file, db).Load(context.Background())
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].RadiusMeters != 400 {
		t.Errorf("expected later source to win, got radius %f", zones[0].RadiusMeters)
	}
}

func TestLoader_ValidatesAndGeocodes(t *testing.T) {
	src := &staticSource{name: "file", zones: []models.GeofenceZone{
		{Name: "No Coords", Address: "500 Client Rd", RadiusMeters: 100},
		{Name: "Unresolvable", Address: "nowhere", RadiusMeters: 100},
		{Name: "Zero Radius", Latitude: 36.1, Longitude: -94.1},
		{Name: "Bad Lat", Latitude: 136.1, Longitude: -94.1, RadiusMeters: 50},
	}}
	geo := &mockGeocoder{geocodeFn: func(_ context.Context, address string) (float64, float64, error) {
		if address == "500 Client Rd" {
			return 36.1873, -94.1312, nil
		}
		return 0, 0, errors.New("not found")
	}}

	zones := NewLoader(geo, src).Load(context.Background())
	if len(zones) != 1 {
		t.Fatalf("expected 1 valid zone, got %+v", zones)
	}
	z := zones[0]
	if z.Name != "No Coords" || z.Latitude != 36.1873 || z.Type != models.ZoneTypeClient {
		t.Errorf("unexpected zone %+v", z)
	}
}
