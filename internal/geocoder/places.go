package geocoder

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// Place is one candidate returned by a nearby search
type Place struct {
	Name  string
	Types []string
}

// excludedTypes are administrative/geographic results that never name a business
var excludedTypes = map[string]bool{
	"political":                   true,
	"locality":                    true,
	"sublocality":                 true,
	"neighborhood":                true,
	"route":                       true,
	"street_address":              true,
	"postal_code":                 true,
	"country":                     true,
	"administrative_area_level_1": true,
	"administrative_area_level_2": true,
	"administrative_area_level_3": true,
	"colloquial_area":             true,
	"natural_feature":             true,
	"plus_code":                   true,
}

// minorServiceTypes are kiosks and machines that sit inside other businesses
var minorServiceTypes = map[string]bool{
	"atm":                               true,
	"vending_machine":                   true,
	"electric_vehicle_charging_station": true,
}

var minorServiceNames = []string{"vending", "kiosk", "redbox", "coinstar", "bitcoin", "ice machine", "water machine"}

// recognizedTypes mark an established business and win over generic results
var recognizedTypes = map[string]bool{
	"store":              true,
	"restaurant":         true,
	"gas_station":        true,
	"hardware_store":     true,
	"home_goods_store":   true,
	"car_repair":         true,
	"lodging":            true,
	"supermarket":        true,
	"cafe":               true,
	"bank":               true,
	"pharmacy":           true,
	"church":             true,
	"school":             true,
	"hospital":           true,
	"veterinary_care":    true,
	"storage":            true,
	"general_contractor": true,
	"furniture_store":    true,
	"car_dealer":         true,
}

// SelectPlace picks the best business name from nearby-search results,
// skipping administrative results and minor service kiosks. Results are
// assumed to be ordered by relevance.
func SelectPlace(places []Place) (string, bool) {
	var fallback string
	for _, p := range places {
		name := strings.TrimSpace(p.Name)
		if name == "" || isExcluded(p) || isMinorService(p) {
			continue
		}
		for _, t := range p.Types {
			if recognizedTypes[t] {
				return name, true
			}
		}
		if fallback == "" && hasType(p, "establishment") {
			fallback = name
		}
	}
	return fallback, fallback != ""
}

func isExcluded(p Place) bool {
	for _, t := range p.Types {
		if excludedTypes[t] {
			return true
		}
	}
	return false
}

func isMinorService(p Place) bool {
	for _, t := range p.Types {
		if minorServiceTypes[t] {
			return true
		}
	}
	lower := strings.ToLower(p.Name)
	for _, field := range strings.Fields(lower) {
		if field == "atm" {
			return true
		}
	}
	for _, word := range minorServiceNames {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func hasType(p Place, t string) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// PlacesClient is the paid nearby-places tier backed by the Google Maps API
type PlacesClient struct {
	client *maps.Client
}

// NewPlacesClient creates a Places client for apiKey
func NewPlacesClient(apiKey string) (*PlacesClient, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesClient{client: client}, nil
}

// NearbyPlaces lists places within radius meters of a coordinate
func (c *PlacesClient) NearbyPlaces(ctx context.Context, lat, lon float64, radius uint) ([]Place, error) {
	resp, err := c.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: lat, Lng: lon},
		Radius:   radius,
	})
	if err != nil {
		return nil, fmt.Errorf("nearby search failed: %w", err)
	}

	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, Place{Name: r.Name, Types: r.Types})
	}
	return places, nil
}
