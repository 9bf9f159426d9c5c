package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port        string
	DBPath      string
	JWTSecret   string
	AuthEnabled bool
	Timezone    string

	ZonesFile       string
	LegacyCacheFile string
	CacheBackend    string // sqlite or redis
	RedisAddr       string

	NATSURL        string
	NATSFixSubject string

	GoogleMapsAPIKey   string
	PlacesDailyLimit   int
	NominatimURL       string
	NominatimUserAgent string
	GeocodeTimeout     time.Duration

	CacheEvictionInterval         time.Duration
	SuppressIntermediateHomeStops bool
	APIRateLimit                  int // requests per minute per client
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", ":8080"),
		DBPath:      getEnv("DB_PATH", "./data/fleet/fleet.db"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		AuthEnabled: getEnvAsBool("AUTH_ENABLED", false),
		Timezone:    getEnv("TIMEZONE", "America/Chicago"),

		ZonesFile:       getEnv("ZONES_FILE", "./config/zones.yaml"),
		LegacyCacheFile: getEnv("LEGACY_CACHE_FILE", "./data/fleet/location_cache.json"),
		CacheBackend:    getEnv("CACHE_BACKEND", "sqlite"),
		RedisAddr:       getEnv("REDIS_URL", "localhost:6379"),

		NATSURL:        getEnv("NATS_URL", ""),
		NATSFixSubject: getEnv("NATS_FIX_SUBJECT", "fleet.uplink.fixes"),

		GoogleMapsAPIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
		PlacesDailyLimit:   getEnvAsInt("PLACES_DAILY_LIMIT", 200),
		NominatimURL:       getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "fleet-timeline-backend/1.0"),
		GeocodeTimeout:     time.Duration(getEnvAsInt("GEOCODE_TIMEOUT_SECONDS", 10)) * time.Second,

		CacheEvictionInterval:         time.Duration(getEnvAsInt("CACHE_EVICTION_MINUTES", 60)) * time.Minute,
		SuppressIntermediateHomeStops: getEnvAsBool("SUPPRESS_INTERMEDIATE_HOME_STOPS", true),
		APIRateLimit:                  getEnvAsInt("API_RATE_LIMIT", 120),
	}
}

// Location returns the operating timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("[Config] Unknown timezone %q, using UTC: %v", c.Timezone, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
