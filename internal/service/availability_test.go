package service

import (
	"testing"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestCalculateAvailability(t *testing.T) {
	storages := []domain.WaterStorage{
		{StorageID: "st-1", SystemID: "sys-1", Name: "Tank A", CapacityLiters: 500, CurrentVolumeLiters: 120},
		{StorageID: "st-2", SystemID: "sys-1", Name: "Tank B", CapacityLiters: 200, CurrentVolumeLiters: 80.5},
	}
	latest := map[string]domain.SensorReading{
		"sensor-1": {SensorID: "sensor-1", DistanceCm: 40, WaterLevel: fptr(12.5)},
		"sensor-2": {SensorID: "sensor-2", DistanceCm: 10, WaterLevel: fptr(3)},
		"sensor-3": {SensorID: "sensor-3", DistanceCm: 5}, // no water_level
	}

	result := CalculateAvailability(storages, latest)

	assert.InDelta(t, 200.5, result.AvailableLiters, 1e-9)
	assert.InDelta(t, 15.5, result.FogCaptureLiters, 1e-9)
	assert.Len(t, result.Breakdown, 2)
	assert.Equal(t, "st-1", result.Breakdown[0].StorageID)
}

func TestCalculateAvailabilityEmpty(t *testing.T) {
	result := CalculateAvailability(nil, nil)

	assert.Zero(t, result.AvailableLiters)
	assert.Zero(t, result.FogCaptureLiters)
	assert.Empty(t, result.Breakdown)
}
