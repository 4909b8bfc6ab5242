package services

import (
	"testing"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDaysOverdue(t *testing.T) {
	p := models.Plant{LastWatered: testNow, WateringInterval: 7}

	assert.Equal(t, -7, DaysOverdue(p, testNow))
	assert.Equal(t, -7, DaysOverdue(p, testNow.Add(23*time.Hour)))
	assert.Equal(t, 0, DaysOverdue(p, testNow.Add(7*day)))
	assert.Equal(t, 3, DaysOverdue(p, testNow.Add(10*day+5*time.Hour)))
}

func TestNextWateringDue(t *testing.T) {
	p := models.Plant{LastWatered: testNow, WateringInterval: 3}
	assert.True(t, NextWateringDue(p).Equal(testNow.Add(3*day)))
}

func TestComputeStreakDays(t *testing.T) {
	plants := []models.Plant{
		{LastWatered: testNow.Add(-2 * time.Hour)},
		{LastWatered: testNow.Add(-3 * day)},
	}
	assert.Equal(t, 1, ComputeStreakDays(plants, testNow))
	assert.Equal(t, 0, ComputeStreakDays(nil, testNow))
}

func TestDescribe(t *testing.T) {
	p := models.Plant{Name: "Fern", LastWatered: testNow, WateringInterval: 2}
	status := Describe(p, testNow.Add(5*day))
	assert.Equal(t, "Fern", status.Name)
	assert.Equal(t, 3, status.DaysOverdue)
	assert.True(t, status.NextWateringDue.Equal(testNow.Add(2*day)))
}
