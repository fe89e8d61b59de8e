package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxHistoryReadings bounds sensor history queries.
const MaxHistoryReadings = 200

// SensorsRepository persists sensors and their readings.
type SensorsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSensorsRepository creates a sensors repository.
func NewSensorsRepository(db *sql.DB, logger *zap.Logger) *SensorsRepository {
	return &SensorsRepository{db: db, logger: logger}
}

// GetByDeviceID returns the sensor for a device_id or domain.ErrSensorNotFound.
func (r *SensorsRepository) GetByDeviceID(ctx context.Context, deviceID string) (*domain.Sensor, error) {
	query := `
		SELECT sensor_id, device_id, system_id, description
		FROM sensors
		WHERE device_id = $1
	`

	var s domain.Sensor
	var systemID sql.NullString
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&s.SensorID,
		&s.DeviceID,
		&systemID,
		&s.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSensorNotFound
		}
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}
	if systemID.Valid {
		s.SystemID = &systemID.String
	}
	return &s, nil
}

// GetOrCreateByDeviceID resolves a sensor, auto-creating it with no system
// link when the device has never been seen. The same path serves every
// ingress, so the auto-create policy cannot diverge between transports.
// Returns the sensor and whether it was created by this call.
func (r *SensorsRepository) GetOrCreateByDeviceID(ctx context.Context, deviceID, description string) (*domain.Sensor, bool, error) {
	sensor, err := r.GetByDeviceID(ctx, deviceID)
	if err == nil {
		return sensor, false, nil
	}
	if !errors.Is(err, domain.ErrSensorNotFound) {
		return nil, false, err
	}

	insert := `
		INSERT INTO sensors (sensor_id, device_id, system_id, description)
		VALUES ($1, $2, NULL, $3)
		ON CONFLICT (device_id) DO NOTHING
		RETURNING sensor_id
	`

	var sensorID string
	err = r.db.QueryRowContext(ctx, insert, uuid.New().String(), deviceID, description).Scan(&sensorID)
	if err == nil {
		r.logger.Info("Auto-created sensor",
			zap.String("device_id", deviceID),
			zap.String("sensor_id", sensorID),
		)
		return &domain.Sensor{
			SensorID:    sensorID,
			DeviceID:    deviceID,
			Description: description,
		}, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create sensor: %w", err)
	}

	// Lost a create race with a concurrent ingestion; the row exists now.
	sensor, err = r.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, false, err
	}
	return sensor, false, nil
}

// InsertReading appends one reading inside a short transaction.
// recorded_at is set by the database at write time. Rows are never updated
// or deduplicated: at-least-once delivery of the same physical event yields
// one row per delivery.
func (r *SensorsRepository) InsertReading(ctx context.Context, reading *domain.SensorReading) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sensor_readings
			(sensor_id, recorded_at, distance_cm, water_level, humidity, temperature, soil_moisture, motion_detected)
		VALUES ($1, NOW(), $2, $3, $4, $5, $6, $7)
		RETURNING id, recorded_at
	`

	err = tx.QueryRowContext(ctx, query,
		reading.SensorID,
		reading.DistanceCm,
		nullFloat(reading.WaterLevel),
		nullFloat(reading.Humidity),
		nullFloat(reading.Temperature),
		nullFloat(reading.SoilMoisture),
		reading.MotionDetected,
	).Scan(&reading.ID, &reading.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reading: %w", err)
	}
	return nil
}

// LatestReading returns the most recent reading for a sensor, timestamp
// descending with insertion order breaking ties.
func (r *SensorsRepository) LatestReading(ctx context.Context, sensorID string) (*domain.SensorReading, error) {
	query := `
		SELECT id, sensor_id, recorded_at, distance_cm, water_level, humidity, temperature, soil_moisture, motion_detected
		FROM sensor_readings
		WHERE sensor_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`

	reading, err := scanReading(r.db.QueryRowContext(ctx, query, sensorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoReadings
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return reading, nil
}

// History returns up to limit readings for a sensor, most recent first.
// limit is clamped to MaxHistoryReadings.
func (r *SensorsRepository) History(ctx context.Context, sensorID string, limit int) ([]domain.SensorReading, error) {
	if limit <= 0 || limit > MaxHistoryReadings {
		limit = MaxHistoryReadings
	}

	query := `
		SELECT id, sensor_id, recorded_at, distance_cm, water_level, humidity, temperature, soil_moisture, motion_detected
		FROM sensor_readings
		WHERE sensor_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	out := []domain.SensorReading{}
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		out = append(out, *reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return out, nil
}

// LatestPerSensorForOwner returns the single most recent reading of every
// sensor attached to the owner's water systems, keyed by sensor_id.
// Sensors with no readings are simply absent from the map.
func (r *SensorsRepository) LatestPerSensorForOwner(ctx context.Context, ownerID string) (map[string]domain.SensorReading, error) {
	query := `
		SELECT DISTINCT ON (sr.sensor_id)
			sr.id, sr.sensor_id, sr.recorded_at, sr.distance_cm, sr.water_level,
			sr.humidity, sr.temperature, sr.soil_moisture, sr.motion_detected
		FROM sensor_readings sr
		JOIN sensors s ON sr.sensor_id = s.sensor_id
		JOIN water_systems ws ON s.system_id = ws.system_id
		WHERE ws.owner_id = $1
		ORDER BY sr.sensor_id, sr.recorded_at DESC, sr.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest readings: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.SensorReading{}
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		out[reading.SensorID] = *reading
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latest readings: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*domain.SensorReading, error) {
	var reading domain.SensorReading
	var waterLevel, humidity, temperature, soilMoisture sql.NullFloat64

	err := row.Scan(
		&reading.ID,
		&reading.SensorID,
		&reading.RecordedAt,
		&reading.DistanceCm,
		&waterLevel,
		&humidity,
		&temperature,
		&soilMoisture,
		&reading.MotionDetected,
	)
	if err != nil {
		return nil, err
	}

	if waterLevel.Valid {
		reading.WaterLevel = &waterLevel.Float64
	}
	if humidity.Valid {
		reading.Humidity = &humidity.Float64
	}
	if temperature.Valid {
		reading.Temperature = &temperature.Float64
	}
	if soilMoisture.Valid {
		reading.SoilMoisture = &soilMoisture.Float64
	}
	return &reading, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
