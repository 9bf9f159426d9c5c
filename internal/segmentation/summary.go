package segmentation

import "github.com/jengzang/fleet-timeline-backend/internal/models"

// Summarize aggregates trips and stops into the timeline summary
func Summarize(trips []models.Trip, stops []models.Stop) models.TimelineSummary {
	var s models.TimelineSummary

	for _, t := range trips {
		s.TotalDistanceMiles += t.DistanceMiles
		s.MovingMinutes += t.DurationMinutes
		if t.BatteryUsedPct != nil {
			s.BatteryUsedPct += *t.BatteryUsedPct
		}
		if t.MaxSpeed > s.MaxSpeed {
			s.MaxSpeed = t.MaxSpeed
		}
	}

	for _, st := range stops {
		s.StoppedMinutes += st.DurationMinutes
		if st.Classification == models.StopClientVisit {
			s.ClientVisitCount++
		}
	}

	s.TotalDurationMinutes = s.MovingMinutes + s.StoppedMinutes
	if s.MovingMinutes > 0 {
		s.AvgSpeed = s.TotalDistanceMiles / (s.MovingMinutes / 60)
	}
	return s
}
