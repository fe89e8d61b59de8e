package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"go.uber.org/zap"
)

// Required telemetry payload keys.
const (
	keyDeviceID   = "device_id"
	keyDistanceCm = "distance_cm"
)

// IngestService validates and persists raw telemetry. It is the single
// ingestion path: the MQTT consumer and the HTTP ingest endpoint both call
// Ingest, so unknown devices are auto-created identically everywhere.
//
// Delivery is at-least-once and the service does not deduplicate: repeated
// delivery of the same physical event yields one reading row per delivery.
type IngestService struct {
	sensors SensorStore
	logger  *zap.Logger
}

// NewIngestService creates an ingest service.
func NewIngestService(sensors SensorStore, logger *zap.Logger) *IngestService {
	return &IngestService{sensors: sensors, logger: logger}
}

// Ingest processes one raw message. source names the ingress (MQTT topic or
// HTTP endpoint) and is recorded on auto-created sensors for audit.
//
// Errors: malformed payloads, missing required keys and type-coercion
// failures return *domain.ValidationError; insert failures return
// *domain.PersistenceError. Either way no reading row is written unless
// exactly one is.
func (s *IngestService) Ingest(ctx context.Context, source string, payload []byte) (*domain.SensorReading, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("malformed payload: %v", err)}
	}

	var missing []string
	for _, key := range []string{keyDeviceID, keyDistanceCm} {
		if _, ok := data[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Missing: missing}
	}

	deviceID, err := coerceString(data[keyDeviceID])
	if err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("device_id: %v", err)}
	}
	distanceCm, err := coerceFloat(data[keyDistanceCm])
	if err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("distance_cm: %v", err)}
	}

	reading := &domain.SensorReading{DistanceCm: distanceCm}
	optional := map[string]**float64{
		"water_level":   &reading.WaterLevel,
		"humidity":      &reading.Humidity,
		"temperature":   &reading.Temperature,
		"soil_moisture": &reading.SoilMoisture,
	}
	for key, target := range optional {
		raw, ok := data[key]
		if !ok || raw == nil {
			continue
		}
		v, err := coerceFloat(raw)
		if err != nil {
			return nil, &domain.ValidationError{Reason: fmt.Sprintf("%s: %v", key, err)}
		}
		value := v
		*target = &value
	}
	if raw, ok := data["motion_detected"]; ok && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			return nil, &domain.ValidationError{Reason: "motion_detected: expected boolean"}
		}
		reading.MotionDetected = b
	}

	sensor, created, err := s.sensors.GetOrCreateByDeviceID(ctx, deviceID,
		fmt.Sprintf("Auto-created from %s", source))
	if err != nil {
		return nil, &domain.PersistenceError{Context: deviceID, Err: err}
	}
	if created {
		s.logger.Info("Registered new sensor from telemetry",
			zap.String("device_id", deviceID),
			zap.String("source", source),
		)
	}

	reading.SensorID = sensor.SensorID
	if err := s.sensors.InsertReading(ctx, reading); err != nil {
		s.logger.Error("Failed to persist reading",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return nil, &domain.PersistenceError{Context: deviceID, Err: err}
	}

	return reading, nil
}

// coerceString accepts strings and JSON numbers for identifier fields.
func coerceString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", fmt.Errorf("empty string")
		}
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

// coerceFloat accepts JSON numbers and numeric strings for measurements.
func coerceFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
