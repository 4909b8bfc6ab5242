package services

import (
	"math"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
)

const day = 24 * time.Hour

// daysSince counts whole days elapsed between t and now, rounding down.
func daysSince(t, now time.Time) int {
	return int(math.Floor(float64(now.Sub(t)) / float64(day)))
}

// DaysOverdue reports how many whole days past its interval a plant is.
// Zero or negative means it is not due yet.
func DaysOverdue(p models.Plant, now time.Time) int {
	return daysSince(p.LastWatered, now) - p.WateringInterval
}

// NextWateringDue is the moment a plant becomes due again.
func NextWateringDue(p models.Plant) time.Time {
	return p.LastWatered.Add(time.Duration(p.WateringInterval) * day)
}

// ComputeStreakDays counts the plants watered within the last day.
func ComputeStreakDays(plants []models.Plant, now time.Time) int {
	n := 0
	for _, p := range plants {
		if daysSince(p.LastWatered, now) == 0 {
			n++
		}
	}
	return n
}

// PlantStatus is a plant together with its derived watering schedule.
type PlantStatus struct {
	models.Plant
	DaysOverdue     int       `json:"days_overdue"`
	NextWateringDue time.Time `json:"next_watering_due"`
}

// Describe attaches the watering schedule to a plant.
func Describe(p models.Plant, now time.Time) PlantStatus {
	return PlantStatus{
		Plant:           p,
		DaysOverdue:     DaysOverdue(p, now),
		NextWateringDue: NextWateringDue(p),
	}
}
