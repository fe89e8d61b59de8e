package domain

import "time"

// Sensor is one telemetry device (maps to the sensors table).
// system_id is nullable: devices auto-created from ingestion have no system
// link until an operator assigns one.
type Sensor struct {
	SensorID    string  `db:"sensor_id"` // UUID, PRIMARY KEY
	DeviceID    string  `db:"device_id"` // VARCHAR(64), NOT NULL, UNIQUE
	SystemID    *string `db:"system_id"`
	Description string  `db:"description"`
}

// SensorReading is one timestamped telemetry sample (maps to the
// sensor_readings table). Rows are append-only; id is a bigserial so the
// most recently inserted row wins timestamp ties.
type SensorReading struct {
	ID             int64     `db:"id"` // BIGSERIAL, PRIMARY KEY
	SensorID       string    `db:"sensor_id"`
	RecordedAt     time.Time `db:"recorded_at"` // set at write time
	DistanceCm     float64   `db:"distance_cm"` // primary measurement
	WaterLevel     *float64  `db:"water_level"`
	Humidity       *float64  `db:"humidity"`
	Temperature    *float64  `db:"temperature"`
	SoilMoisture   *float64  `db:"soil_moisture"`
	MotionDetected bool      `db:"motion_detected"`
}

// ToJSON converts a reading for HTTP responses.
func (r *SensorReading) ToJSON() map[string]any {
	m := map[string]any{
		"id":              r.ID,
		"sensor_id":       r.SensorID,
		"recorded_at":     r.RecordedAt.UTC().Format(time.RFC3339),
		"distance_cm":     r.DistanceCm,
		"motion_detected": r.MotionDetected,
	}
	if r.WaterLevel != nil {
		m["water_level"] = *r.WaterLevel
	} else {
		m["water_level"] = nil
	}
	if r.Humidity != nil {
		m["humidity"] = *r.Humidity
	} else {
		m["humidity"] = nil
	}
	if r.Temperature != nil {
		m["temperature"] = *r.Temperature
	} else {
		m["temperature"] = nil
	}
	if r.SoilMoisture != nil {
		m["soil_moisture"] = *r.SoilMoisture
	} else {
		m["soil_moisture"] = nil
	}
	return m
}
