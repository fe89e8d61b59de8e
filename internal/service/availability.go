package service

import (
	"github.com/omarioz/BiyoKaab/internal/domain"
)

// StorageBreakdown is one storage's slice of the availability figure, for
// presentation only.
type StorageBreakdown struct {
	StorageID           string  `json:"storage_id"`
	SystemID            string  `json:"system_id"`
	Name                string  `json:"name"`
	CurrentVolumeLiters float64 `json:"current_volume_liters"`
	CapacityLiters      float64 `json:"capacity_liters"`
}

// Availability is the aggregated available-water figure for an owner.
type Availability struct {
	AvailableLiters  float64            `json:"available_liters"`
	FogCaptureLiters float64            `json:"fog_capture_liters"`
	Breakdown        []StorageBreakdown `json:"breakdown"`
}

// CalculateAvailability sums current storage volumes and adds the latest
// per-sensor water_level captures. Each sensor contributes at most one
// reading (the most recent), never its history; sensors without readings
// or without a water_level contribute zero.
func CalculateAvailability(storages []domain.WaterStorage, latestReadings map[string]domain.SensorReading) Availability {
	result := Availability{Breakdown: make([]StorageBreakdown, 0, len(storages))}

	for _, storage := range storages {
		result.AvailableLiters += storage.CurrentVolumeLiters
		result.Breakdown = append(result.Breakdown, StorageBreakdown{
			StorageID:           storage.StorageID,
			SystemID:            storage.SystemID,
			Name:                storage.Name,
			CurrentVolumeLiters: storage.CurrentVolumeLiters,
			CapacityLiters:      storage.CapacityLiters,
		})
	}

	for _, reading := range latestReadings {
		if reading.WaterLevel != nil {
			result.FogCaptureLiters += *reading.WaterLevel
		}
	}

	return result
}
