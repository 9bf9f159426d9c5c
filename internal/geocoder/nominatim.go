// Package geocoder wraps the external geocoding providers used by the
// resolution cascade.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoResult is returned when a provider answers without a usable result
var ErrNoResult = errors.New("geocoder: no result")

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimClient is the free reverse/forward geocoding tier
type NominatimClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewNominatimClient creates a client; each request is bounded by timeout
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &NominatimClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type nominatimAddress struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
}

type nominatimReverse struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

type nominatimSearch struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// ReverseGeocode returns a street-level address for a coordinate
func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	var out nominatimReverse
	if err := c.get(ctx, "/reverse", q, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoResult, out.Error)
	}

	if addr := formatStreetAddress(out.Address); addr != "" {
		return addr, nil
	}
	if out.DisplayName != "" {
		return out.DisplayName, nil
	}
	return "", ErrNoResult
}

// Geocode returns the coordinates of a free-form address
func (c *NominatimClient) Geocode(ctx context.Context, address string) (float64, float64, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("q", address)
	q.Set("limit", "1")

	var out []nominatimSearch
	if err := c.get(ctx, "/search", q, &out); err != nil {
		return 0, 0, err
	}
	if len(out) == 0 {
		return 0, 0, ErrNoResult
	}

	lat, err := strconv.ParseFloat(out[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in response: %w", err)
	}
	lon, err := strconv.ParseFloat(out[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in response: %w", err)
	}
	return lat, lon, nil
}

func (c *NominatimClient) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	return nil
}

func formatStreetAddress(a nominatimAddress) string {
	street := strings.TrimSpace(strings.Join(nonEmpty(a.HouseNumber, a.Road), " "))
	locality := a.City
	if locality == "" {
		locality = a.Town
	}
	if locality == "" {
		locality = a.Village
	}
	if street == "" {
		return ""
	}
	return strings.Join(nonEmpty(street, locality, a.State), ", ")
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
