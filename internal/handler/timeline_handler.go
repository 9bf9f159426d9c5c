package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/service"
	"github.com/jengzang/fleet-timeline-backend/pkg/response"
)

// TimelineHandler handles HTTP requests for vehicle timelines
type TimelineHandler struct {
	service *service.TimelineService
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(service *service.TimelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

// GetTimeline handles GET /api/v1/vehicles/:vehicle_id/timeline
func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	vehicleID := strings.TrimSpace(c.Param("vehicle_id"))
	if vehicleID == "" {
		response.BadRequest(c, "Invalid vehicle ID", nil)
		return
	}

	var filter models.TimelineFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	start, err := parseTime(filter.Start)
	if err != nil {
		response.BadRequest(c, "Invalid start time", err)
		return
	}
	end, err := parseTime(filter.End)
	if err != nil {
		response.BadRequest(c, "Invalid end time", err)
		return
	}

	timeline, err := h.service.GetTimeline(c.Request.Context(), vehicleID, start, end)
	if errors.Is(err, service.ErrInvalidWindow) {
		response.BadRequest(c, "Invalid time window", err)
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to build timeline", err)
		return
	}

	response.Success(c, timeline)
}

// parseTime accepts unix seconds or RFC3339
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected unix seconds or RFC3339, got %q", s)
	}
	return t, nil
}
