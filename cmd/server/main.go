package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jengzang/fleet-timeline-backend/internal/api"
	"github.com/jengzang/fleet-timeline-backend/internal/config"
	"github.com/jengzang/fleet-timeline-backend/internal/database"
	"github.com/jengzang/fleet-timeline-backend/internal/geocache"
	"github.com/jengzang/fleet-timeline-backend/internal/geocoder"
	"github.com/jengzang/fleet-timeline-backend/internal/handler"
	"github.com/jengzang/fleet-timeline-backend/internal/ingest"
	"github.com/jengzang/fleet-timeline-backend/internal/middleware"
	"github.com/jengzang/fleet-timeline-backend/internal/quota"
	"github.com/jengzang/fleet-timeline-backend/internal/repository"
	"github.com/jengzang/fleet-timeline-backend/internal/resolver"
	"github.com/jengzang/fleet-timeline-backend/internal/segmentation"
	"github.com/jengzang/fleet-timeline-backend/internal/service"
	"github.com/jengzang/fleet-timeline-backend/internal/zones"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Location cache
	store, closeStore := openCacheStore(cfg, db)
	defer closeStore()

	if n, err := geocache.MigrateLegacyFile(ctx, cfg.LegacyCacheFile, store); err != nil {
		log.Printf("[Main] Legacy cache migration failed: %v", err)
	} else if n > 0 {
		log.Printf("[Main] Migrated %d legacy cache entries", n)
	}

	cache := geocache.New(store)
	if err := cache.Load(ctx); err != nil {
		log.Printf("[Main] Starting with an empty location cache: %v", err)
	}
	go cache.RunEviction(ctx, cfg.CacheEvictionInterval)

	// Geocoders
	nominatim := geocoder.NewNominatimClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.GeocodeTimeout)

	var places resolver.PlaceSearcher
	if cfg.GoogleMapsAPIKey != "" {
		pc, err := geocoder.NewPlacesClient(cfg.GoogleMapsAPIKey)
		if err != nil {
			log.Printf("[Main] Paid place lookups disabled: %v", err)
		} else {
			places = pc
		}
	}

	// Zones
	zoneRepo := repository.NewZoneRepository(db)
	fileSource := zones.NewFileSource(cfg.ZonesFile)
	loader := zones.NewLoader(nominatim, fileSource, zoneRepo)
	table := resolver.NewZoneTable(loader, loader.Load(ctx))

	overrides, err := fileSource.Overrides()
	if err != nil {
		log.Printf("[Main] Ignoring location overrides: %v", err)
	}

	q := quota.NewDailyQuota(cfg.PlacesDailyLimit, cfg.Location())

	res := resolver.NewCascade(resolver.Dependencies{
		Overrides: overrides,
		Zones:     table,
		Cache:     cache,
		Places:    places,
		Quota:     q,
		Geocoder:  nominatim,
	})

	params := segmentation.DefaultParams()
	params.SuppressIntermediateHomeStops = cfg.SuppressIntermediateHomeStops
	engine := segmentation.NewEngine(res, params)

	// Services
	fixRepo := repository.NewFixRepository(db)
	timelineService := service.NewTimelineService(fixRepo, engine)
	locationService := service.NewLocationService(res, q, zoneRepo)
	fixService := service.NewFixService(fixRepo)

	// Fix ingestion from the message bus
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Printf("[Main] NATS unavailable, bus ingestion disabled: %v", err)
		} else {
			defer nc.Close()
			if _, err := ingest.NewSubscriber(fixService).Subscribe(nc, cfg.NATSFixSubject); err != nil {
				log.Printf("[Main] %v", err)
			}
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.APIRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.APIRateLimit, time.Minute)
		go limiter.Run(ctx)
	}

	router := api.SetupRouter(cfg, api.Handlers{
		Timeline: handler.NewTimelineHandler(timelineService),
		Location: handler.NewLocationHandler(locationService),
		Fix:      handler.NewFixHandler(fixService),
	}, limiter)

	srv := &http.Server{Addr: cfg.Port, Handler: router}
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] Shutdown error: %v", err)
	}
}

// openCacheStore selects the durable cache backend, falling back to SQLite
// when Redis cannot be reached
func openCacheStore(cfg *config.Config, db *sql.DB) (geocache.Store, func()) {
	if cfg.CacheBackend == "redis" {
		rs, err := geocache.NewRedisStore(cfg.RedisAddr)
		if err == nil {
			log.Printf("[Main] Location cache backed by Redis at %s", cfg.RedisAddr)
			return rs, func() { _ = rs.Close() }
		}
		log.Printf("[Main] Redis unavailable, using SQLite location cache: %v", err)
	}
	return repository.NewLocationCacheRepository(db), func() {}
}
