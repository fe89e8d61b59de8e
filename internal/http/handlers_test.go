package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/omarioz/BiyoKaab/internal/config"
	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Minimal store fakes for exercising handlers end to end.

type stubSensorStore struct {
	sensors  map[string]*domain.Sensor
	readings []domain.SensorReading
}

func (s *stubSensorStore) GetByDeviceID(_ context.Context, deviceID string) (*domain.Sensor, error) {
	if sensor, ok := s.sensors[deviceID]; ok {
		return sensor, nil
	}
	return nil, domain.ErrSensorNotFound
}

func (s *stubSensorStore) GetOrCreateByDeviceID(_ context.Context, deviceID, description string) (*domain.Sensor, bool, error) {
	if sensor, ok := s.sensors[deviceID]; ok {
		return sensor, false, nil
	}
	sensor := &domain.Sensor{SensorID: "sensor-" + deviceID, DeviceID: deviceID, Description: description}
	s.sensors[deviceID] = sensor
	return sensor, true, nil
}

func (s *stubSensorStore) InsertReading(_ context.Context, reading *domain.SensorReading) error {
	reading.ID = int64(len(s.readings) + 1)
	reading.RecordedAt = time.Now().UTC()
	s.readings = append(s.readings, *reading)
	return nil
}

func (s *stubSensorStore) LatestReading(_ context.Context, sensorID string) (*domain.SensorReading, error) {
	for i := len(s.readings) - 1; i >= 0; i-- {
		if s.readings[i].SensorID == sensorID {
			r := s.readings[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNoReadings
}

func (s *stubSensorStore) History(_ context.Context, sensorID string, limit int) ([]domain.SensorReading, error) {
	var out []domain.SensorReading
	for i := len(s.readings) - 1; i >= 0 && len(out) < limit; i-- {
		if s.readings[i].SensorID == sensorID {
			out = append(out, s.readings[i])
		}
	}
	return out, nil
}

func (s *stubSensorStore) LatestPerSensorForOwner(_ context.Context, _ string) (map[string]domain.SensorReading, error) {
	return nil, nil
}

type stubProfileStore struct {
	profiles map[string]*domain.UserProfile
}

func (s *stubProfileStore) GetByUserID(_ context.Context, userID string) (*domain.UserProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrProfileNotFound
}

type stubSystemStore struct{}

func (stubSystemStore) SystemsForOwner(_ context.Context, _ string) ([]domain.WaterSystem, error) {
	return nil, nil
}

func (stubSystemStore) StoragesForOwner(_ context.Context, _ string) ([]domain.WaterStorage, error) {
	return []domain.WaterStorage{
		{StorageID: "st-1", SystemID: "sys-1", Name: "Tank", CapacityLiters: 400, CurrentVolumeLiters: 100},
	}, nil
}

type stubDemandStore struct{}

func (stubDemandStore) UnitsForOwner(_ context.Context, _ string) ([]domain.WaterDemandUnit, error) {
	return []domain.WaterDemandUnit{
		{Category: domain.DemandCategoryHuman, Name: "Family", Count: 2, DailyNeedLiters: 25},
	}, nil
}

type stubClimateStore struct{}

func (stubClimateStore) LatestForLocation(_ context.Context, _ string) (*domain.ClimateSnapshot, error) {
	return nil, nil
}

func (stubClimateStore) Insert(_ context.Context, _ *domain.ClimateSnapshot) error { return nil }

type stubPlanStore struct {
	active  *domain.WaterPlan
	swapErr error
}

func (s *stubPlanStore) ActiveForOwner(_ context.Context, _ string) (*domain.WaterPlan, error) {
	if s.active == nil {
		return nil, domain.ErrNoActivePlan
	}
	return s.active, nil
}

func (s *stubPlanStore) SwapActive(_ context.Context, plan *domain.WaterPlan) error {
	if s.swapErr != nil {
		return s.swapErr
	}
	plan.PlanID = "plan-new"
	plan.CreatedAt = time.Now().UTC()
	s.active = plan
	return nil
}

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) GeneratePlan(_ context.Context, _ service.PlanContext) (string, error) {
	return g.text, g.err
}

func (g *stubGenerator) Chat(_ context.Context, _ []service.ChatMessage, _ *service.ChatContext) (string, error) {
	return g.text, g.err
}

type testAPI struct {
	router  *Router
	sensors *stubSensorStore
	plans   *stubPlanStore
	gen     *stubGenerator
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	sensors := &stubSensorStore{sensors: map[string]*domain.Sensor{}}
	profiles := &stubProfileStore{profiles: map[string]*domain.UserProfile{
		"user-1": {ProfileID: "prof-1", UserID: "user-1", UserType: domain.UserTypeFarmer},
	}}
	plans := &stubPlanStore{}
	gen := &stubGenerator{text: "Qorshe biyo."}

	cfg := &config.Config{}
	cfg.Dashboard.CacheKeyPrefix = "biyokaab:dashboard:"
	cfg.Dashboard.CacheTTL = time.Second

	ingestSvc := service.NewIngestService(sensors, logger)
	statusSvc := service.NewStatusService(sensors, cfg, logger)
	dashboardSvc := service.NewDashboardService(
		profiles, stubSystemStore{}, sensors, stubDemandStore{}, stubClimateStore{}, nil, cfg, logger)
	plannerSvc := service.NewPlannerService(
		profiles, stubSystemStore{}, sensors, stubDemandStore{}, stubClimateStore{}, plans,
		gen, time.Second, logger)

	router := NewRouter(logger)
	router.RegisterWaterRoutes(
		NewIngestHandler(ingestSvc, logger),
		NewDeviceHandler(statusSvc, logger),
		NewDashboardHandler(dashboardSvc, logger),
		NewPlanHandler(plannerSvc, 7, logger),
	)

	return &testAPI{router: router, sensors: sensors, plans: plans, gen: gen}
}

func doRequest(t *testing.T, router *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result[map[string]any] {
	t.Helper()
	var out Result[map[string]any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIngestEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodPost, "/water/api/v1/ingest",
		`{"device_id":"tank-01","distance_cm":40}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	out := decodeResult(t, rec)
	assert.Equal(t, ResultSuccess, out.Code)
	assert.Equal(t, "sensor-tank-01", out.Result["sensor_id"])
	assert.Len(t, api.sensors.readings, 1)
}

func TestIngestEndpointRejectsInvalidPayload(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodPost, "/water/api/v1/ingest",
		`{"device_id":"tank-01"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeResult(t, rec)
	assert.Equal(t, ResultError, out.Code)
	assert.Contains(t, out.Message, "distance_cm")
	assert.Empty(t, api.sensors.readings)
}

func TestIngestEndpointMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/ingest", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDeviceStatusEndpoint(t *testing.T) {
	api := newTestAPI(t)
	doRequest(t, api.router, http.MethodPost, "/water/api/v1/ingest",
		`{"device_id":"tank-01","distance_cm":25}`)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/devices/status?device_id=tank-01", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResult(t, rec)
	level, ok := out.Result["level"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 75, level["percent_full"].(float64), 1e-9)
	assert.InDelta(t, 150, level["volume_l"].(float64), 1e-9)
}

func TestDeviceStatusEndpointUnknownDevice(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/devices/status?device_id=ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceStatusEndpointRequiresDeviceID(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/devices/status", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestReadingEndpoint(t *testing.T) {
	api := newTestAPI(t)
	doRequest(t, api.router, http.MethodPost, "/water/api/v1/ingest",
		`{"device_id":"tank-01","distance_cm":33}`)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/readings/latest?device_id=tank-01", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResult(t, rec)
	assert.InDelta(t, 33, out.Result["distance_cm"].(float64), 1e-9)
}

func TestDeviceHistoryEndpoint(t *testing.T) {
	api := newTestAPI(t)
	for i := 0; i < 3; i++ {
		doRequest(t, api.router, http.MethodPost, "/water/api/v1/ingest",
			`{"device_id":"tank-01","distance_cm":30}`)
	}

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/sensors/history?device_id=tank-01&limit=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResult(t, rec)
	assert.InDelta(t, 2, out.Result["count"].(float64), 1e-9)
}

func TestDeviceHistoryExportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	doRequest(t, api.router, http.MethodPost, "/water/api/v1/ingest",
		`{"device_id":"tank-01","distance_cm":30}`)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/sensors/history/export?device_id=tank-01", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tank-01")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestDashboardEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/dashboard?user_id=user-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResult(t, rec)
	availability, ok := out.Result["availability"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 100, availability["available_liters"].(float64), 1e-9)
	demand, ok := out.Result["demand"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 50, demand["total_daily_liters"].(float64), 1e-9)
	storages, ok := out.Result["storages"].([]any)
	require.True(t, ok)
	require.Len(t, storages, 1)
	storage, ok := storages[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "st-1", storage["storage_id"])
	assert.InDelta(t, 400, storage["capacity_liters"].(float64), 1e-9)
	assert.InDelta(t, 100, storage["current_volume_liters"].(float64), 1e-9)
}

func TestDashboardEndpointRequiresUserID(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/dashboard", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePlanEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodPost, "/water/api/v1/plans/generate",
		`{"user_id":"user-1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	out := decodeResult(t, rec)
	assert.Equal(t, "Qorshe biyo.", out.Result["plan_text"])
	assert.Equal(t, domain.PlanStatusActive, out.Result["status"])
	require.NotNil(t, api.plans.active)
}

func TestGeneratePlanEndpointConflict(t *testing.T) {
	api := newTestAPI(t)
	api.plans.swapErr = domain.ErrPlanConflict

	rec := doRequest(t, api.router, http.MethodPost, "/water/api/v1/plans/generate",
		`{"user_id":"user-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGeneratePlanEndpointGeneratorFailure(t *testing.T) {
	api := newTestAPI(t)
	api.gen.err = assert.AnError

	rec := doRequest(t, api.router, http.MethodPost, "/water/api/v1/plans/generate",
		`{"user_id":"user-1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, api.plans.active)
}

func TestActivePlanEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodGet, "/water/api/v1/plans/active?user_id=user-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	doRequest(t, api.router, http.MethodPost, "/water/api/v1/plans/generate", `{"user_id":"user-1"}`)

	rec = doRequest(t, api.router, http.MethodGet, "/water/api/v1/plans/active?user_id=user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResult(t, rec)
	assert.Equal(t, "plan-new", out.Result["plan_id"])
}

func TestChatEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.gen.text = "Waan ku caawin karaa."

	rec := doRequest(t, api.router, http.MethodPost, "/water/api/v1/ai/chat",
		`{"user_id":"user-1","messages":[{"role":"user","content":"Hello"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResult(t, rec)
	assert.Equal(t, "Waan ku caawin karaa.", out.Result["message"])
	assert.Equal(t, "assistant", out.Result["role"])
}

func TestChatEndpointRequiresMessages(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(t, api.router, http.MethodPost, "/water/api/v1/ai/chat",
		`{"user_id":"user-1","messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
