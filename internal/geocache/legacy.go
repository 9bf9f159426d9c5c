package geocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// legacyRecord is the object form found in older cache documents
type legacyRecord struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Label   string `json:"label"`
	Source  string `json:"source"`
}

// ParseLegacy converts an untyped legacy cache document into versioned
// records. Values may be a bare label string or an object with
// address/name/label and an optional source. Entries of unknown provenance
// are tagged free_geocode so they stay evictable.
func ParseLegacy(data []byte, now time.Time) ([]models.CacheEntry, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse legacy cache: %w", err)
	}

	entries := make([]models.CacheEntry, 0, len(doc))
	for rawKey, raw := range doc {
		lat, lon, err := parseLegacyKey(rawKey)
		if err != nil {
			log.Printf("[LegacyCache] Skipping key %q: %v", rawKey, err)
			continue
		}

		label, source := decodeLegacyValue(raw)
		if label == "" {
			log.Printf("[LegacyCache] Skipping key %q: empty label", rawKey)
			continue
		}

		entries = append(entries, models.CacheEntry{
			Key:           Key(lat, lon),
			Label:         label,
			Source:        source,
			Latitude:      lat,
			Longitude:     lon,
			SchemaVersion: models.CacheSchemaVersion,
			UpdatedAt:     now,
		})
	}
	return entries, nil
}

func decodeLegacyValue(raw json.RawMessage) (string, models.LocationSource) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), models.SourceFreeGeocode
	}

	var rec legacyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", ""
	}

	label := rec.Label
	if label == "" {
		label = rec.Name
	}
	if label == "" {
		label = rec.Address
	}

	source := models.LocationSource(rec.Source)
	if !source.Valid() || source == models.SourceCoordinates {
		source = models.SourceFreeGeocode
	}
	return strings.TrimSpace(label), source
}

func parseLegacyKey(key string) (float64, float64, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("expected \"lat,lon\"")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, errors.New("coordinate out of range")
	}
	return lat, lon, nil
}

// MigrateLegacyFile imports a legacy JSON cache file into store and renames
// the file with a .migrated suffix. A missing file is not an error.
func MigrateLegacyFile(ctx context.Context, path string, store Store) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read legacy cache %s: %w", path, err)
	}

	entries, err := ParseLegacy(data, time.Now())
	if err != nil {
		return 0, err
	}

	for _, e := range entries {
		if err := store.Save(ctx, e); err != nil {
			return 0, fmt.Errorf("failed to migrate entry %s: %w", e.Key, err)
		}
	}

	if err := os.Rename(path, path+".migrated"); err != nil {
		return len(entries), fmt.Errorf("failed to rename legacy cache: %w", err)
	}

	log.Printf("[LegacyCache] Migrated %d entries from %s", len(entries), path)
	return len(entries), nil
}
