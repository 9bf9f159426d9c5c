package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/resolver"
	"github.com/jengzang/fleet-timeline-backend/internal/service"
	"github.com/jengzang/fleet-timeline-backend/pkg/response"
)

// LocationHandler handles HTTP requests for zone matching and resolution
type LocationHandler struct {
	service *service.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(service *service.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// Match handles GET /api/v1/locations/match
func (h *LocationHandler) Match(c *gin.Context) {
	lat, lon, err := parseCoordinate(c)
	if err != nil {
		response.BadRequest(c, "Invalid coordinate", err)
		return
	}

	// data is null when no zone contains the coordinate
	response.Success(c, h.service.FindLocationMatch(lat, lon))
}

// Resolve handles GET /api/v1/locations/resolve
func (h *LocationHandler) Resolve(c *gin.Context) {
	lat, lon, err := parseCoordinate(c)
	if err != nil {
		response.BadRequest(c, "Invalid coordinate", err)
		return
	}

	state := resolver.VehicleState(c.Query("state"))
	switch state {
	case resolver.StateUnknown, resolver.StateParked, resolver.StateMoving:
	default:
		response.BadRequest(c, "Invalid vehicle state", fmt.Errorf("unknown state %q", state))
		return
	}

	response.Success(c, h.service.Resolve(c.Request.Context(), lat, lon, state))
}

// ListZones handles GET /api/v1/zones
func (h *LocationHandler) ListZones(c *gin.Context) {
	zones := h.service.GetZones()
	response.Success(c, gin.H{
		"data":  zones,
		"total": len(zones),
	})
}

// SaveZone handles POST /api/v1/zones
func (h *LocationHandler) SaveZone(c *gin.Context) {
	var zone models.GeofenceZone
	if err := c.ShouldBindJSON(&zone); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	if err := h.service.SaveZone(c.Request.Context(), &zone); err != nil {
		if errors.Is(err, service.ErrInvalidZone) {
			response.BadRequest(c, "Invalid zone", err)
			return
		}
		response.InternalError(c, "Failed to save zone", err)
		return
	}

	response.Created(c, zone)
}

// ReloadZones handles POST /api/v1/zones/reload
func (h *LocationHandler) ReloadZones(c *gin.Context) {
	n := h.service.ReloadZones(c.Request.Context())
	response.Success(c, gin.H{"zones": n})
}

// GetQuota handles GET /api/v1/quota
func (h *LocationHandler) GetQuota(c *gin.Context) {
	response.Success(c, h.service.QuotaStatus())
}

func parseCoordinate(c *gin.Context) (float64, float64, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("lat must be a number in [-90, 90]")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("lon must be a number in [-180, 180]")
	}
	return lat, lon, nil
}
