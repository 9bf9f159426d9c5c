package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/fleet-timeline-backend/internal/config"
	"github.com/jengzang/fleet-timeline-backend/internal/handler"
	"github.com/jengzang/fleet-timeline-backend/internal/middleware"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Timeline *handler.TimelineHandler
	Location *handler.LocationHandler
	Fix      *handler.FixHandler
}

// SetupRouter builds the gin engine. limiter may be nil to disable rate limiting.
func SetupRouter(cfg *config.Config, h Handlers, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Fleet Timeline API is running",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := r.Group("/api/v1")
	if cfg.AuthEnabled {
		api.Use(middleware.JWTAuth(cfg.JWTSecret))
	}
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter))
	}
	{
		vehicles := api.Group("/vehicles/:vehicle_id")
		{
			vehicles.GET("/timeline", h.Timeline.GetTimeline)
			vehicles.POST("/fixes", h.Fix.IngestFixes)
		}

		locations := api.Group("/locations")
		{
			locations.GET("/match", h.Location.Match)
			locations.GET("/resolve", h.Location.Resolve)
		}

		zones := api.Group("/zones")
		{
			zones.GET("", h.Location.ListZones)
			zones.POST("", h.Location.SaveZone)
			zones.POST("/reload", h.Location.ReloadZones)
		}

		api.GET("/quota", h.Location.GetQuota)
	}

	return r
}
