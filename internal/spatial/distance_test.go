package spatial

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	if d := HaversineDistance(36.1831, -94.1695, 36.1831, -94.1695); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}

	// one degree of latitude is ~111.19 km on a 6371 km sphere
	d := HaversineDistance(36.0, -94.0, 37.0, -94.0)
	if math.Abs(d-111195) > 50 {
		t.Errorf("expected ~111195m, got %f", d)
	}
}

func TestPlanarAgreesWithHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"depot to client", 36.1831, -94.1695, 36.1873, -94.1312},
		{"short hop", 36.1831, -94.1695, 36.1835, -94.1690},
		{"equator", 0.0, 10.0, 0.01, 10.02},
		{"southern hemisphere", -33.8688, 151.2093, -33.8568, 151.2153},
		{"ten km", 40.7128, -74.0060, 40.7580, -73.9855},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp := CompareDistances(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if cmp.Anomaly {
				t.Fatalf("unexpected anomaly: haversine=%f planar=%f", cmp.Haversine, cmp.Planar)
			}
			if math.Abs(cmp.Haversine-cmp.Planar) > FormulaDisagreementMeters {
				t.Errorf("formulas disagree: %f vs %f", cmp.Haversine, cmp.Planar)
			}
			if cmp.Conservative != cmp.Haversine {
				t.Errorf("expected haversine distance without anomaly, got %f", cmp.Conservative)
			}
		})
	}
}

func TestCompareDistances_MalformedZone(t *testing.T) {
	// zone center stored with the longitude sign flipped
	cmp := CompareDistances(36.1873, -94.1312, 36.1873, 94.1312)
	if !cmp.Anomaly {
		t.Fatalf("expected anomaly, haversine=%f planar=%f", cmp.Haversine, cmp.Planar)
	}
	want := math.Max(cmp.Haversine, cmp.Planar)
	if cmp.Conservative != want {
		t.Errorf("expected conservative distance %f, got %f", want, cmp.Conservative)
	}
}

func TestPathLength(t *testing.T) {
	if d := PathLength(nil); d != 0 {
		t.Errorf("expected 0 for empty path, got %f", d)
	}
	if d := PathLength([]Point{{36.18, -94.16}}); d != 0 {
		t.Errorf("expected 0 for single point, got %f", d)
	}

	points := []Point{{36.0, -94.0}, {36.5, -94.0}, {37.0, -94.0}}
	direct := HaversineDistance(36.0, -94.0, 37.0, -94.0)
	if d := PathLength(points); math.Abs(d-direct) > 1 {
		t.Errorf("expected %f, got %f", direct, d)
	}
}

func TestMetersToMiles(t *testing.T) {
	if m := MetersToMiles(1609.344); math.Abs(m-1) > 1e-9 {
		t.Errorf("expected 1 mile, got %f", m)
	}
}
