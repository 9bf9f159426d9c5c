// Package geocache keeps resolved coordinate labels in memory, backed by a
// durable store that is loaded once at startup.
package geocache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// KeyPrecision is the number of decimals kept when rounding coordinates (~11m)
const KeyPrecision = 4

// Key builds the rounded-coordinate cache key
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.*f,%.*f", KeyPrecision, lat, KeyPrecision, lon)
}

// Store is the durable side of the cache. Writes are last-writer-wins.
type Store interface {
	LoadAll(ctx context.Context) ([]models.CacheEntry, error)
	Save(ctx context.Context, entry models.CacheEntry) error
}

// Cache is safe for concurrent use. It is not transactional: two resolvers
// may miss on the same brand-new key and both perform the external lookup.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	store   Store
	now     func() time.Time
}

// New creates an empty cache backed by store (store may be nil for a
// memory-only cache)
func New(store Store) *Cache {
	return &Cache{
		entries: make(map[string]models.CacheEntry),
		store:   store,
		now:     time.Now,
	}
}

// Load replaces the in-memory contents with the store's records
func (c *Cache) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	entries, err := c.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load location cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]models.CacheEntry, len(entries))
	for _, e := range entries {
		c.entries[e.Key] = e
	}

	log.Printf("[LocationCache] Loaded %d entries", len(entries))
	return nil
}

// Get returns the cached entry for a coordinate
func (c *Cache) Get(lat, lon float64) (models.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[Key(lat, lon)]
	return e, ok
}

// Put stores a resolution in memory and writes it through to the durable store
func (c *Cache) Put(ctx context.Context, lat, lon float64, loc models.ResolvedLocation) error {
	entry := models.CacheEntry{
		Key:           Key(lat, lon),
		Label:         loc.Label,
		Source:        loc.Source,
		Latitude:      lat,
		Longitude:     lon,
		SchemaVersion: models.CacheSchemaVersion,
		UpdatedAt:     c.now(),
	}

	c.mu.Lock()
	c.entries[entry.Key] = entry
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist cache entry %s: %w", entry.Key, err)
	}
	return nil
}

// EvictFreeGeocode drops street-address entries from memory only, so nearby
// businesses can be rediscovered by the paid tier. The durable store keeps them.
func (c *Cache) EvictFreeGeocode() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for k, e := range c.entries {
		if e.Source == models.SourceFreeGeocode {
			delete(c.entries, k)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of in-memory entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RunEviction evicts free-geocode entries every interval until ctx is done
func (c *Cache) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.EvictFreeGeocode(); n > 0 {
				log.Printf("[LocationCache] Evicted %d free-geocode entries from memory", n)
			}
		}
	}
}
