package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/service"
	"github.com/jengzang/fleet-timeline-backend/pkg/response"
)

// FixHandler handles HTTP ingestion of GPS fixes
type FixHandler struct {
	service *service.FixService
}

// NewFixHandler creates a new fix handler
func NewFixHandler(service *service.FixService) *FixHandler {
	return &FixHandler{service: service}
}

// IngestFixes handles POST /api/v1/vehicles/:vehicle_id/fixes
func (h *FixHandler) IngestFixes(c *gin.Context) {
	var batch models.FixBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), c.Param("vehicle_id"), batch.Fixes)
	if errors.Is(err, service.ErrMissingVehicle) {
		response.BadRequest(c, "Invalid vehicle ID", err)
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to store fixes", err)
		return
	}

	response.Created(c, result)
}
