package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// ErrMissingVehicle is returned when a batch has no vehicle ID
var ErrMissingVehicle = errors.New("vehicle_id is required")

// FixSink stores ingested fixes
type FixSink interface {
	InsertFixes(ctx context.Context, fixes []models.GpsFix) (int, error)
}

// FixService validates and stores fixes from the ingestion collaborators
type FixService struct {
	sink FixSink
}

// NewFixService creates a new fix service
func NewFixService(sink FixSink) *FixService {
	return &FixService{sink: sink}
}

// Ingest stores fixes for vehicleID. Fixes with an out of range coordinate or
// no timestamp are skipped; duplicates are ignored by the store.
func (s *FixService) Ingest(ctx context.Context, vehicleID string, fixes []models.GpsFix) (*models.IngestResult, error) {
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return nil, ErrMissingVehicle
	}

	result := &models.IngestResult{Received: len(fixes)}
	valid := make([]models.GpsFix, 0, len(fixes))
	for _, f := range fixes {
		if !validFix(f) {
			continue
		}
		f.VehicleID = vehicleID
		f.Timestamp = f.Timestamp.UTC()
		valid = append(valid, f)
	}
	result.Accepted = len(valid)
	if skipped := result.Received - result.Accepted; skipped > 0 {
		log.Printf("[FixService] Skipped %d invalid fixes for %s", skipped, vehicleID)
	}
	if len(valid) == 0 {
		return result, nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	stored, err := s.sink.InsertFixes(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to store fixes: %w", err)
	}
	result.Stored = stored
	return result, nil
}

func validFix(f models.GpsFix) bool {
	if f.Timestamp.IsZero() {
		return false
	}
	if f.Latitude < -90 || f.Latitude > 90 || f.Longitude < -180 || f.Longitude > 180 {
		return false
	}
	return !(f.Latitude == 0 && f.Longitude == 0)
}
