package segmentation

import (
	"time"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
	"github.com/jengzang/fleet-timeline-backend/internal/spatial"
)

// OutlierThresholds bounds what a service vehicle can plausibly report
type OutlierThresholds struct {
	MaxSpeedMPH   float64       // reported speed above this is a bad sample
	JumpDistanceM float64       // a move this far...
	JumpTime      time.Duration // ...within this long is a teleport
}

// DefaultOutlierThresholds are tuned for road vehicles
var DefaultOutlierThresholds = OutlierThresholds{
	MaxSpeedMPH:   120,
	JumpDistanceM: 1000,
	JumpTime:      10 * time.Second,
}

// FilterOutliers returns the fixes that pass the excessive speed and jump
// rules. Jumps are measured from the last kept fix. The input is not modified.
func FilterOutliers(fixes []models.GpsFix, t OutlierThresholds) []models.GpsFix {
	kept := make([]models.GpsFix, 0, len(fixes))

	for _, f := range fixes {
		if f.Speed != nil && *f.Speed > t.MaxSpeedMPH {
			continue
		}

		if n := len(kept); n > 0 {
			prev := kept[n-1]
			dt := f.Timestamp.Sub(prev.Timestamp)
			d := spatial.HaversineDistance(prev.Latitude, prev.Longitude, f.Latitude, f.Longitude)
			if dt >= 0 && dt <= t.JumpTime && d >= t.JumpDistanceM {
				continue
			}
		}

		kept = append(kept, f)
	}

	return kept
}
