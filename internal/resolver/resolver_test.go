package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/geocache"
	"github.com/jengzang/fleet-timeline-backend/internal/geocoder"
	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/quota"
)

var (
	homeBase = models.GeofenceZone{Name: "Home Base", Latitude: 36.1831, Longitude: -94.1695, RadiusMeters: 150, Type: models.ZoneTypeHomeBase}
	acme     = models.GeofenceZone{Name: "Acme Farms", Latitude: 36.1873, Longitude: -94.1312, RadiusMeters: 100, Type: models.ZoneTypeClient}
)

type mockPlaces struct {
	calls    int
	nearbyFn func(ctx context.Context, lat, lon float64, radius uint) ([]geocoder.Place, error)
}

func (m *mockPlaces) NearbyPlaces(ctx context.Context, lat, lon float64, radius uint) ([]geocoder.Place, error) {
	m.calls++
	return m.nearbyFn(ctx, lat, lon, radius)
}

type mockGeocoder struct {
	calls     int
	reverseFn func(ctx context.Context, lat, lon float64) (string, error)
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	m.calls++
	return m.reverseFn(ctx, lat, lon)
}

func streetGeocoder() *mockGeocoder {
	return &mockGeocoder{reverseFn: func(_ context.Context, _, _ float64) (string, error) {
		return "12 Main St, Springdale, Arkansas", nil
	}}
}

func newTestResolver(t *testing.T, places PlaceSearcher, q *quota.DailyQuota, geo ReverseGeocoder, zones ...models.GeofenceZone) (*Resolver, *geocache.Cache) {
	t.Helper()
	cache := geocache.New(nil)
	r := NewCascade(Dependencies{
		Overrides: []models.LocationOverride{{Latitude: 36.2001, Longitude: -94.1500, Label: "Fuel Depot"}},
		Zones:     NewZoneTable(nil, zones),
		Cache:     cache,
		Places:    places,
		Quota:     q,
		Geocoder:  geo,
	})
	return r, cache
}

func TestResolve_OverrideWins(t *testing.T) {
	r, _ := newTestResolver(t, nil, nil, streetGeocoder(), homeBase, acme)

	loc := r.Resolve(context.Background(), 36.2002, -94.1501, StateParked)
	if loc.Label != "Fuel Depot" || loc.Source != models.SourceCustom {
		t.Errorf("expected override, got %+v", loc)
	}
}

func TestResolve_HomeBaseBeatsOverlappingClient(t *testing.T) {
	neighbor := models.GeofenceZone{Name: "Neighbor", Latitude: 36.1833, Longitude: -94.1695, RadiusMeters: 200, Type: models.ZoneTypeClient}
	r, _ := newTestResolver(t, nil, nil, nil, neighbor, homeBase)

	loc := r.Resolve(context.Background(), 36.1833, -94.1695, StateParked)
	if loc.Source != models.SourceHomeBase || loc.ZoneName != "Home Base" {
		t.Errorf("expected home base, got %+v", loc)
	}

	match := r.FindLocationMatch(36.1833, -94.1695)
	if match == nil || match.Type != models.ZoneTypeHomeBase {
		t.Errorf("expected home base match, got %+v", match)
	}
}

func TestMatchZone_NearestWins(t *testing.T) {
	wide := models.GeofenceZone{Name: "Wide Ranch", Latitude: 36.1880, Longitude: -94.1312, RadiusMeters: 300, Type: models.ZoneTypeClient}

	z, ok := MatchZone([]models.GeofenceZone{wide, acme}, 36.1873, -94.1312)
	if !ok || z.Name != "Acme Farms" {
		t.Errorf("expected nearest zone, got %+v", z)
	}
}

func TestMatchZone_OutsideRadius(t *testing.T) {
	// ~190m north of Acme Farms
	if _, ok := MatchZone([]models.GeofenceZone{acme}, 36.1890, -94.1312); ok {
		t.Error("expected no match outside radius")
	}
}

func TestMatchZone_MalformedZoneRejected(t *testing.T) {
	bad := acme
	bad.Longitude = 94.1312
	bad.RadiusMeters = 5000
	if _, ok := MatchZone([]models.GeofenceZone{bad}, 36.1873, -94.1312); ok {
		t.Error("expected malformed zone to be rejected")
	}
}

func TestSanityCeiling(t *testing.T) {
	if c := SanityCeiling(100); c != 500 {
		t.Errorf("expected 500, got %f", c)
	}
	if c := SanityCeiling(800); c != 1200 {
		t.Errorf("expected 1200, got %f", c)
	}
	for _, r := range []float64{1, 150, 500, 501, 1200, 5000} {
		if c := SanityCeiling(r); c < r {
			t.Errorf("ceiling %f below radius %f", c, r)
		}
	}
}

func TestResolve_ZoneBeatsStaleCache(t *testing.T) {
	r, cache := newTestResolver(t, nil, nil, nil, homeBase, acme)
	_ = cache.Put(context.Background(), 36.1873, -94.1312, models.ResolvedLocation{Label: "Old Label", Source: models.SourceFreeGeocode})

	loc := r.Resolve(context.Background(), 36.1873, -94.1312, StateParked)
	if loc.Label != "Acme Farms" || loc.Source != models.SourceClient {
		t.Errorf("expected client zone, got %+v", loc)
	}

	e, _ := cache.Get(36.1873, -94.1312)
	if e.Source != models.SourceClient {
		t.Errorf("expected zone match written back, got %+v", e)
	}
}

func TestResolve_CachedZoneLabelNotServedOutsideZone(t *testing.T) {
	r, cache := newTestResolver(t, nil, nil, nil, homeBase, acme)

	inside := r.Resolve(context.Background(), 36.18819, -94.1312, StateParked)
	if inside.Source != models.SourceClient || inside.ZoneType != models.ZoneTypeClient {
		t.Fatalf("expected client zone just inside the radius, got %+v", inside)
	}
	if _, ok := cache.Get(36.18824, -94.1312); !ok {
		t.Fatalf("expected both points to share a cache key")
	}

	outside := r.Resolve(context.Background(), 36.18824, -94.1312, StateParked)
	if outside.Label == "Acme Farms" || outside.Source == models.SourceClient {
		t.Errorf("expected no zone label outside the radius, got %+v", outside)
	}
	if outside.Source != models.SourceCoordinates {
		t.Errorf("expected coordinate fallback, got %+v", outside)
	}
}

func TestResolve_CachedHomeBaseNotServed(t *testing.T) {
	r, cache := newTestResolver(t, nil, nil, nil)
	_ = cache.Put(context.Background(), 36.3000, -94.2000, models.ResolvedLocation{Label: "Home Base", Source: models.SourceHomeBase})

	loc := r.Resolve(context.Background(), 36.3000, -94.2000, StateParked)
	if loc.Source == models.SourceHomeBase {
		t.Errorf("expected cached home base entry to be ignored, got %+v", loc)
	}
}

func TestResolve_CacheHitSkipsExternalTiers(t *testing.T) {
	geo := streetGeocoder()
	r, cache := newTestResolver(t, nil, nil, geo, homeBase)
	_ = cache.Put(context.Background(), 36.3000, -94.2000, models.ResolvedLocation{Label: "Feed Store", Source: models.SourcePlacesAPI})

	loc := r.Resolve(context.Background(), 36.3000, -94.2000, StateParked)
	if loc.Label != "Feed Store" || loc.Source != models.SourcePlacesAPI {
		t.Errorf("expected cached label, got %+v", loc)
	}
	if geo.calls != 0 {
		t.Errorf("expected no geocoder calls, got %d", geo.calls)
	}
}

func TestResolve_PlacesOnlyWhenParked(t *testing.T) {
	places := &mockPlaces{nearbyFn: func(_ context.Context, _, _ float64, radius uint) ([]geocoder.Place, error) {
		if radius != PlacesSearchRadiusMeters {
			t.Errorf("unexpected radius %d", radius)
		}
		return []geocoder.Place{{Name: "Tractor Supply Co", Types: []string{"store"}}}, nil
	}}
	q := quota.NewDailyQuota(10, time.UTC)
	geo := streetGeocoder()
	r, _ := newTestResolver(t, places, q, geo)

	loc := r.Resolve(context.Background(), 36.3000, -94.2000, StateMoving)
	if loc.Source != models.SourceFreeGeocode || places.calls != 0 {
		t.Errorf("expected free geocode while moving, got %+v (places calls %d)", loc, places.calls)
	}

	loc = r.Resolve(context.Background(), 36.4000, -94.3000, StateParked)
	if loc.Label != "Tractor Supply Co" || loc.Source != models.SourcePlacesAPI {
		t.Errorf("expected place label, got %+v", loc)
	}
	if q.Used() != 1 {
		t.Errorf("expected 1 quota unit used, got %d", q.Used())
	}
}

func TestResolve_QuotaCountsFailedAttempts(t *testing.T) {
	places := &mockPlaces{nearbyFn: func(_ context.Context, _, _ float64, _ uint) ([]geocoder.Place, error) {
		return nil, errors.New("OVER_QUERY_LIMIT")
	}}
	q := quota.NewDailyQuota(1, time.UTC)
	geo := streetGeocoder()
	r, _ := newTestResolver(t, places, q, geo)

	loc := r.Resolve(context.Background(), 36.3000, -94.2000, StateParked)
	if loc.Source != models.SourceFreeGeocode {
		t.Errorf("expected fallback to free geocode, got %+v", loc)
	}
	if q.Remaining() != 0 {
		t.Errorf("expected failed attempt to consume quota, remaining %d", q.Remaining())
	}

	r.Resolve(context.Background(), 36.4000, -94.3000, StateParked)
	if places.calls != 1 {
		t.Errorf("expected exhausted quota to skip places, got %d calls", places.calls)
	}
}

func TestResolve_FiltersMinorServicePlaces(t *testing.T) {
	places := &mockPlaces{nearbyFn: func(_ context.Context, _, _ float64, _ uint) ([]geocoder.Place, error) {
		return []geocoder.Place{
			{Name: "Benton County", Types: []string{"administrative_area_level_2", "political"}},
			{Name: "First Bank ATM", Types: []string{"atm", "finance"}},
		}, nil
	}}
	r, _ := newTestResolver(t, places, quota.NewDailyQuota(5, time.UTC), streetGeocoder())

	loc := r.Resolve(context.Background(), 36.3000, -94.2000, StateParked)
	if loc.Source != models.SourceFreeGeocode {
		t.Errorf("expected filtered results to fall through, got %+v", loc)
	}
}

func TestResolve_FailuresDegradeToCoordinates(t *testing.T) {
	geo := &mockGeocoder{reverseFn: func(_ context.Context, _, _ float64) (string, error) {
		return "", errors.New("timeout")
	}}
	r, cache := newTestResolver(t, nil, nil, geo)

	loc := r.Resolve(context.Background(), 36.3, -94.2, StateParked)
	if loc.Label != "36.30000, -94.20000" || loc.Source != models.SourceCoordinates {
		t.Errorf("expected coordinate text, got %+v", loc)
	}
	if cache.Len() != 0 {
		t.Error("coordinate fallback must not be cached")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	geo := streetGeocoder()
	r, cache := newTestResolver(t, nil, nil, geo, homeBase, acme)

	first := r.Resolve(context.Background(), 36.3000, -94.2000, StateParked)
	second := r.Resolve(context.Background(), 36.3000, -94.2000, StateParked)
	if first != second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
	if geo.calls != 1 {
		t.Errorf("expected second lookup served from cache, got %d geocoder calls", geo.calls)
	}
	if e, _ := cache.Get(36.3, -94.2); e.Source != models.SourceFreeGeocode {
		t.Errorf("expected free geocode cache entry, got %+v", e)
	}
}

func TestFindLocationMatch(t *testing.T) {
	r, _ := newTestResolver(t, nil, nil, nil, homeBase, acme)

	m := r.FindLocationMatch(36.1873, -94.1312)
	if m == nil || m.Type != models.ZoneTypeClient || m.Name != "Acme Farms" {
		t.Errorf("unexpected match %+v", m)
	}
	if m := r.FindLocationMatch(36.3, -94.2); m != nil {
		t.Errorf("expected no match, got %+v", m)
	}
}

type fixedLoader struct{ zones []models.GeofenceZone }

func (l fixedLoader) Load(_ context.Context) []models.GeofenceZone { return l.zones }

func TestZoneTable_Reload(t *testing.T) {
	table := NewZoneTable(fixedLoader{zones: []models.GeofenceZone{homeBase, acme}}, []models.GeofenceZone{homeBase})
	before := table.Zones()

	if n := table.Reload(context.Background()); n != 2 {
		t.Fatalf("expected 2 zones after reload, got %d", n)
	}
	if len(before) != 1 {
		t.Error("previously published slice must not change")
	}
	if len(table.Zones()) != 2 {
		t.Error("expected new zones to be visible")
	}
}
