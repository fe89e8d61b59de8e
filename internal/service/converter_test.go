package service

import (
	"testing"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLevel(t *testing.T) {
	tests := []struct {
		name        string
		distanceCm  float64
		heightCm    float64
		capacityL   float64
		wantPercent float64
		wantVolume  float64
		wantHeight  float64
	}{
		{
			name:       "half full",
			distanceCm: 50, heightCm: 100, capacityL: 200,
			wantPercent: 50, wantVolume: 100, wantHeight: 50,
		},
		{
			name:       "distance equals height reads empty",
			distanceCm: 100, heightCm: 100, capacityL: 200,
			wantPercent: 0, wantVolume: 0, wantHeight: 0,
		},
		{
			name:       "distance beyond height clamps to empty",
			distanceCm: 250, heightCm: 100, capacityL: 200,
			wantPercent: 0, wantVolume: 0, wantHeight: 0,
		},
		{
			name:       "zero distance reads full",
			distanceCm: 0, heightCm: 100, capacityL: 200,
			wantPercent: 100, wantVolume: 200, wantHeight: 100,
		},
		{
			name:       "negative distance clamps to full",
			distanceCm: -10, heightCm: 100, capacityL: 200,
			wantPercent: 100, wantVolume: 200, wantHeight: 100,
		},
		{
			name:       "non-default geometry",
			distanceCm: 30, heightCm: 150, capacityL: 500,
			wantPercent: 80, wantVolume: 400, wantHeight: 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ConvertLevel(tt.distanceCm, tt.heightCm, tt.capacityL)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPercent, level.PercentFull, 1e-9)
			assert.InDelta(t, tt.wantVolume, level.VolumeL, 1e-9)
			assert.InDelta(t, tt.wantHeight, level.WaterHeightCm, 1e-9)
		})
	}
}

func TestConvertLevelInvalidGeometry(t *testing.T) {
	_, err := ConvertLevel(50, 0, 200)
	assert.ErrorIs(t, err, domain.ErrTankGeometry)

	_, err = ConvertLevel(50, -10, 200)
	assert.ErrorIs(t, err, domain.ErrTankGeometry)
}
