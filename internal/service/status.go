package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/config"
	"github.com/omarioz/BiyoKaab/internal/domain"

	"go.uber.org/zap"
)

// DeviceStatus is the latest known state of one device.
type DeviceStatus struct {
	Sensor  *domain.Sensor
	Reading *domain.SensorReading
	// Level is nil when the configured geometry is invalid; the raw reading
	// is still returned so the device is observable.
	Level *TankLevel
}

// StatusService answers device status and history queries.
type StatusService struct {
	sensors SensorStore
	cfg     *config.Config
	logger  *zap.Logger
}

// NewStatusService creates a status service.
func NewStatusService(sensors SensorStore, cfg *config.Config, logger *zap.Logger) *StatusService {
	return &StatusService{sensors: sensors, cfg: cfg, logger: logger}
}

// Status returns the latest reading for a device with its derived tank level.
// Unknown devices return domain.ErrSensorNotFound; known devices with no
// readings yet return domain.ErrNoReadings.
func (s *StatusService) Status(ctx context.Context, deviceID string) (*DeviceStatus, error) {
	sensor, err := s.sensors.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	reading, err := s.sensors.LatestReading(ctx, sensor.SensorID)
	if err != nil {
		return nil, err
	}

	status := &DeviceStatus{Sensor: sensor, Reading: reading}

	tank := s.cfg.TankFor(deviceID)
	level, err := ConvertLevel(reading.DistanceCm, tank.TankHeightCm, tank.TankCapacityL)
	if err != nil {
		if errors.Is(err, domain.ErrTankGeometry) {
			s.logger.Warn("Invalid tank geometry, returning raw reading only",
				zap.String("device_id", deviceID),
				zap.Float64("tank_height_cm", tank.TankHeightCm),
			)
			return status, nil
		}
		return nil, fmt.Errorf("failed to convert level for %s: %w", deviceID, err)
	}
	level.PercentFull = round1(level.PercentFull)
	level.VolumeL = round1(level.VolumeL)
	level.WaterHeightCm = round1(level.WaterHeightCm)
	status.Level = &level

	return status, nil
}

// History returns recent readings for a device, newest first. limit <= 0 uses
// the repository default; the repository enforces the hard cap.
func (s *StatusService) History(ctx context.Context, deviceID string, limit int) (*domain.Sensor, []domain.SensorReading, error) {
	sensor, err := s.sensors.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, nil, err
	}
	readings, err := s.sensors.History(ctx, sensor.SensorID, limit)
	if err != nil {
		return nil, nil, err
	}
	return sensor, readings, nil
}
