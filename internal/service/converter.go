package service

import (
	"math"

	"github.com/omarioz/BiyoKaab/internal/domain"
)

// TankLevel is the result of converting a distance measurement against tank
// geometry.
type TankLevel struct {
	PercentFull   float64 `json:"percent_full"`
	VolumeL       float64 `json:"volume_l"`
	WaterHeightCm float64 `json:"water_height_cm"`
}

// ConvertLevel turns a raw ultrasonic distance (sensor at the top of the
// tank, measuring down to the water surface) into a fill state.
//
// The water height is tankHeight - distance, clamped to [0, tankHeight]:
// distance >= height reads as an empty tank, and a negative distance is
// sensor noise treated as a full tank. Fill state never leaves [0, 100].
// tankHeightCm <= 0 is a configuration error, not an input error.
func ConvertLevel(distanceCm, tankHeightCm, tankCapacityL float64) (TankLevel, error) {
	if tankHeightCm <= 0 {
		return TankLevel{}, domain.ErrTankGeometry
	}

	waterHeight := tankHeightCm - distanceCm
	if waterHeight < 0 {
		waterHeight = 0
	}
	if waterHeight > tankHeightCm {
		waterHeight = tankHeightCm
	}

	percent := (waterHeight / tankHeightCm) * 100
	percent = math.Max(0, math.Min(100, percent))

	return TankLevel{
		PercentFull:   percent,
		VolumeL:       (percent / 100) * tankCapacityL,
		WaterHeightCm: waterHeight,
	}, nil
}

// round1 rounds to one decimal place, matching the presentation precision
// of device status responses.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places. Used for output only; comparisons
// always run on unrounded values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
