package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/segmentation"
)

// ErrInvalidWindow is returned when a query window does not end after it starts
var ErrInvalidWindow = errors.New("end must be after start")

// FixSource is the point source for a vehicle's fixes
type FixSource interface {
	GetFixes(ctx context.Context, filter models.FixFilter) ([]models.GpsFix, error)
}

// TimelineService builds the trips/stops view of a vehicle
type TimelineService struct {
	fixes  FixSource
	engine *segmentation.Engine
}

// NewTimelineService creates a new timeline service
func NewTimelineService(fixes FixSource, engine *segmentation.Engine) *TimelineService {
	return &TimelineService{fixes: fixes, engine: engine}
}

// GetTimeline returns the trips, stops and summary of vehicleID over
// [start, end). An unavailable point source yields an empty timeline.
func (s *TimelineService) GetTimeline(ctx context.Context, vehicleID string, start, end time.Time) (*models.Timeline, error) {
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}

	fixes, err := s.fixes.GetFixes(ctx, models.FixFilter{VehicleID: vehicleID, Start: start, End: end})
	if err != nil {
		log.Printf("[TimelineService] Point source unavailable for %s: %v", vehicleID, err)
		fixes = nil
	}

	trips, stops := s.engine.Build(ctx, vehicleID, fixes, end)
	return &models.Timeline{
		VehicleID: vehicleID,
		Trips:     trips,
		Stops:     stops,
		Summary:   segmentation.Summarize(trips, stops),
	}, nil
}
