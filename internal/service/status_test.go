package service

import (
	"context"
	"testing"

	"github.com/omarioz/BiyoKaab/internal/config"
	"github.com/omarioz/BiyoKaab/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStatusFixture(tanks map[string]config.TankConfig) (*StatusService, *fakeSensorStore) {
	sensors := newFakeSensorStore()
	cfg := &config.Config{Tanks: tanks}
	return NewStatusService(sensors, cfg, zap.NewNop()), sensors
}

func TestDeviceStatusWithDefaultGeometry(t *testing.T) {
	svc, sensors := newStatusFixture(nil)
	sensors.sensors["tank-01"] = &domain.Sensor{SensorID: "s-1", DeviceID: "tank-01"}
	sensors.readings = append(sensors.readings, domain.SensorReading{
		ID: 1, SensorID: "s-1", DistanceCm: 25,
	})

	status, err := svc.Status(context.Background(), "tank-01")
	require.NoError(t, err)

	require.NotNil(t, status.Level)
	// Defaults: 100 cm tank, 200 L capacity. 25 cm air gap leaves 75%.
	assert.InDelta(t, 75, status.Level.PercentFull, 1e-9)
	assert.InDelta(t, 150, status.Level.VolumeL, 1e-9)
}

func TestDeviceStatusWithConfiguredGeometry(t *testing.T) {
	svc, sensors := newStatusFixture(map[string]config.TankConfig{
		"tank-02": {TankHeightCm: 200, TankCapacityL: 1000},
	})
	sensors.sensors["tank-02"] = &domain.Sensor{SensorID: "s-2", DeviceID: "tank-02"}
	sensors.readings = append(sensors.readings, domain.SensorReading{
		ID: 1, SensorID: "s-2", DistanceCm: 50,
	})

	status, err := svc.Status(context.Background(), "tank-02")
	require.NoError(t, err)

	require.NotNil(t, status.Level)
	assert.InDelta(t, 75, status.Level.PercentFull, 1e-9)
	assert.InDelta(t, 750, status.Level.VolumeL, 1e-9)
}

func TestDeviceStatusInvalidGeometryReturnsRawReading(t *testing.T) {
	svc, sensors := newStatusFixture(map[string]config.TankConfig{
		"tank-03": {TankHeightCm: 0, TankCapacityL: 500},
	})
	sensors.sensors["tank-03"] = &domain.Sensor{SensorID: "s-3", DeviceID: "tank-03"}
	sensors.readings = append(sensors.readings, domain.SensorReading{
		ID: 1, SensorID: "s-3", DistanceCm: 40,
	})

	status, err := svc.Status(context.Background(), "tank-03")
	require.NoError(t, err)

	assert.Nil(t, status.Level)
	require.NotNil(t, status.Reading)
	assert.InDelta(t, 40, status.Reading.DistanceCm, 1e-9)
}

func TestDeviceStatusUnknownDevice(t *testing.T) {
	svc, _ := newStatusFixture(nil)

	_, err := svc.Status(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrSensorNotFound)
}

func TestDeviceStatusNoReadings(t *testing.T) {
	svc, sensors := newStatusFixture(nil)
	sensors.sensors["tank-04"] = &domain.Sensor{SensorID: "s-4", DeviceID: "tank-04"}

	_, err := svc.Status(context.Background(), "tank-04")
	assert.ErrorIs(t, err, domain.ErrNoReadings)
}

func TestDeviceHistory(t *testing.T) {
	svc, sensors := newStatusFixture(nil)
	sensors.sensors["tank-05"] = &domain.Sensor{SensorID: "s-5", DeviceID: "tank-05"}
	for i := 1; i <= 5; i++ {
		sensors.readings = append(sensors.readings, domain.SensorReading{
			ID: int64(i), SensorID: "s-5", DistanceCm: float64(i * 10),
		})
	}

	sensor, readings, err := svc.History(context.Background(), "tank-05", 3)
	require.NoError(t, err)

	assert.Equal(t, "s-5", sensor.SensorID)
	require.Len(t, readings, 3)
	// Newest first.
	assert.InDelta(t, 50, readings[0].DistanceCm, 1e-9)
	assert.InDelta(t, 30, readings[2].DistanceCm, 1e-9)
}
