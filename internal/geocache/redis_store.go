package geocache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// DefaultRedisHash is the hash holding every cache record
const DefaultRedisHash = "fleet:location_cache"

// hashClient is the subset of the Redis client the store uses
type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// RedisStore persists cache records as JSON values in a single Redis hash
type RedisStore struct {
	client hashClient
	hash   string
}

// NewRedisStore connects to addr and verifies the connection
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return newRedisStore(client, DefaultRedisHash), nil
}

func newRedisStore(client hashClient, hash string) *RedisStore {
	return &RedisStore{client: client, hash: hash}
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// LoadAll reads every record in the hash
func (s *RedisStore) LoadAll(ctx context.Context) ([]models.CacheEntry, error) {
	values, err := s.client.HGetAll(ctx, s.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.hash, err)
	}

	entries := make([]models.CacheEntry, 0, len(values))
	for key, raw := range values {
		var e models.CacheEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Printf("[RedisStore] Skipping unreadable record %s: %v", key, err)
			continue
		}
		e.Key = key
		entries = append(entries, e)
	}
	return entries, nil
}

// Save writes one record
func (s *RedisStore) Save(ctx context.Context, entry models.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return s.client.HSet(ctx, s.hash, entry.Key, data).Err()
}
