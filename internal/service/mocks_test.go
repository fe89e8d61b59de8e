package service

import (
	"context"
	"time"

	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/store"
)

// In-memory store fakes shared by the service tests.

type fakeSensorStore struct {
	sensors      map[string]*domain.Sensor // by device_id
	readings     []domain.SensorReading
	latest       map[string]domain.SensorReading // per owner lookup result
	insertErr    error
	getOrCreates int
	nextID       int64
}

func newFakeSensorStore() *fakeSensorStore {
	return &fakeSensorStore{sensors: map[string]*domain.Sensor{}}
}

func (f *fakeSensorStore) GetByDeviceID(_ context.Context, deviceID string) (*domain.Sensor, error) {
	if s, ok := f.sensors[deviceID]; ok {
		return s, nil
	}
	return nil, domain.ErrSensorNotFound
}

func (f *fakeSensorStore) GetOrCreateByDeviceID(_ context.Context, deviceID, description string) (*domain.Sensor, bool, error) {
	f.getOrCreates++
	if s, ok := f.sensors[deviceID]; ok {
		return s, false, nil
	}
	s := &domain.Sensor{
		SensorID:    "sensor-" + deviceID,
		DeviceID:    deviceID,
		Description: description,
	}
	f.sensors[deviceID] = s
	return s, true, nil
}

func (f *fakeSensorStore) InsertReading(_ context.Context, reading *domain.SensorReading) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	reading.ID = f.nextID
	reading.RecordedAt = time.Now().UTC()
	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeSensorStore) LatestReading(_ context.Context, sensorID string) (*domain.SensorReading, error) {
	for i := len(f.readings) - 1; i >= 0; i-- {
		if f.readings[i].SensorID == sensorID {
			r := f.readings[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNoReadings
}

func (f *fakeSensorStore) History(_ context.Context, sensorID string, limit int) ([]domain.SensorReading, error) {
	var out []domain.SensorReading
	for i := len(f.readings) - 1; i >= 0 && len(out) < limit; i-- {
		if f.readings[i].SensorID == sensorID {
			out = append(out, f.readings[i])
		}
	}
	return out, nil
}

func (f *fakeSensorStore) LatestPerSensorForOwner(_ context.Context, _ string) (map[string]domain.SensorReading, error) {
	return f.latest, nil
}

type fakeProfileStore struct {
	profiles map[string]*domain.UserProfile // by user_id
}

func (f *fakeProfileStore) GetByUserID(_ context.Context, userID string) (*domain.UserProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrProfileNotFound
}

type fakeSystemStore struct {
	systems  []domain.WaterSystem
	storages []domain.WaterStorage
}

func (f *fakeSystemStore) SystemsForOwner(_ context.Context, _ string) ([]domain.WaterSystem, error) {
	return f.systems, nil
}

func (f *fakeSystemStore) StoragesForOwner(_ context.Context, _ string) ([]domain.WaterStorage, error) {
	return f.storages, nil
}

type fakeDemandStore struct {
	units []domain.WaterDemandUnit
}

func (f *fakeDemandStore) UnitsForOwner(_ context.Context, _ string) ([]domain.WaterDemandUnit, error) {
	return f.units, nil
}

type fakeClimateStore struct {
	snapshot *domain.ClimateSnapshot
	inserted []domain.ClimateSnapshot
}

func (f *fakeClimateStore) LatestForLocation(_ context.Context, _ string) (*domain.ClimateSnapshot, error) {
	return f.snapshot, nil
}

func (f *fakeClimateStore) Insert(_ context.Context, snapshot *domain.ClimateSnapshot) error {
	f.inserted = append(f.inserted, *snapshot)
	return nil
}

type fakePlanStore struct {
	active  *domain.WaterPlan
	swapErr error
	swapped []domain.WaterPlan
}

func (f *fakePlanStore) ActiveForOwner(_ context.Context, _ string) (*domain.WaterPlan, error) {
	if f.active == nil {
		return nil, domain.ErrNoActivePlan
	}
	return f.active, nil
}

func (f *fakePlanStore) SwapActive(_ context.Context, plan *domain.WaterPlan) error {
	if f.swapErr != nil {
		return f.swapErr
	}
	plan.PlanID = "plan-new"
	plan.CreatedAt = time.Now().UTC()
	f.swapped = append(f.swapped, *plan)
	f.active = plan
	return nil
}

type fakeGenerator struct {
	planText string
	reply    string
	err      error
	calls    int
	lastCtx  *ChatContext
}

func (f *fakeGenerator) GeneratePlan(_ context.Context, _ PlanContext) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.planText, nil
}

func (f *fakeGenerator) Chat(_ context.Context, _ []ChatMessage, cc *ChatContext) (string, error) {
	f.calls++
	f.lastCtx = cc
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeKV struct {
	data    map[string]string
	getErr  error
	setErr  error
	sets    int
	deletes int
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", store.ErrMiss
}

func (f *fakeKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.deletes++
	delete(f.data, key)
	return nil
}
