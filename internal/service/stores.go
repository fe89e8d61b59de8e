package service

import (
	"context"

	"github.com/omarioz/BiyoKaab/internal/domain"
)

// Typed repository interfaces consumed by the service layer. The core never
// issues ad hoc joins; every cross-relation query lives behind one of these.

// SensorStore persists sensors and readings.
type SensorStore interface {
	GetByDeviceID(ctx context.Context, deviceID string) (*domain.Sensor, error)
	GetOrCreateByDeviceID(ctx context.Context, deviceID, description string) (*domain.Sensor, bool, error)
	InsertReading(ctx context.Context, reading *domain.SensorReading) error
	LatestReading(ctx context.Context, sensorID string) (*domain.SensorReading, error)
	History(ctx context.Context, sensorID string, limit int) ([]domain.SensorReading, error)
	LatestPerSensorForOwner(ctx context.Context, ownerID string) (map[string]domain.SensorReading, error)
}

// ProfileStore resolves user profiles.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// SystemStore reads water systems and storages per owner.
type SystemStore interface {
	SystemsForOwner(ctx context.Context, ownerID string) ([]domain.WaterSystem, error)
	StoragesForOwner(ctx context.Context, ownerID string) ([]domain.WaterStorage, error)
}

// DemandStore reads demand units per owner.
type DemandStore interface {
	UnitsForOwner(ctx context.Context, ownerID string) ([]domain.WaterDemandUnit, error)
}

// ClimateStore reads and writes climate snapshots.
type ClimateStore interface {
	LatestForLocation(ctx context.Context, locationID string) (*domain.ClimateSnapshot, error)
	Insert(ctx context.Context, snapshot *domain.ClimateSnapshot) error
}

// PlanStore manages the plan lifecycle.
type PlanStore interface {
	ActiveForOwner(ctx context.Context, ownerID string) (*domain.WaterPlan, error)
	SwapActive(ctx context.Context, plan *domain.WaterPlan) error
}
