package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/service"

	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// DeviceHandler serves per-device status, latest reading and history.
type DeviceHandler struct {
	status *service.StatusService
	logger *zap.Logger
}

func NewDeviceHandler(status *service.StatusService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{status: status, logger: logger}
}

func requireDeviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_id query parameter is required"))
		return "", false
	}
	return deviceID, true
}

// Status handles GET /water/api/v1/devices/status?device_id=...
func (h *DeviceHandler) Status(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDeviceID(w, r)
	if !ok {
		return
	}

	status, err := h.status.Status(r.Context(), deviceID)
	if err != nil {
		h.writeStatusError(w, deviceID, err)
		return
	}

	body := map[string]any{
		"device_id": status.Sensor.DeviceID,
		"sensor_id": status.Sensor.SensorID,
		"reading":   status.Reading.ToJSON(),
	}
	if status.Level != nil {
		body["level"] = status.Level
	} else {
		body["level"] = nil
		body["level_unavailable_reason"] = "invalid tank geometry"
	}

	writeJSON(w, http.StatusOK, Ok(body))
}

// LatestReading handles GET /water/api/v1/readings/latest?device_id=...
// and returns the raw reading without level conversion.
func (h *DeviceHandler) LatestReading(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDeviceID(w, r)
	if !ok {
		return
	}

	status, err := h.status.Status(r.Context(), deviceID)
	if err != nil {
		h.writeStatusError(w, deviceID, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(status.Reading.ToJSON()))
}

// History handles GET /water/api/v1/sensors/history?device_id=&limit=N.
func (h *DeviceHandler) History(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDeviceID(w, r)
	if !ok {
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), defaultHistoryLimit)

	sensor, readings, err := h.status.History(r.Context(), deviceID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrSensorNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("device not found"))
			return
		}
		h.logger.Error("Failed to load device history",
			zap.String("device_id", deviceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load history"))
		return
	}

	items := make([]map[string]any, 0, len(readings))
	for i := range readings {
		items = append(items, readings[i].ToJSON())
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"device_id": sensor.DeviceID,
		"sensor_id": sensor.SensorID,
		"count":     len(items),
		"readings":  items,
	}))
}

// ExportHistory handles GET /water/api/v1/sensors/history/export?device_id=
// and streams the readings as an Excel workbook.
func (h *DeviceHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := requireDeviceID(w, r)
	if !ok {
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), maxExportRows)

	_, readings, err := h.status.History(r.Context(), deviceID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrSensorNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("device not found"))
			return
		}
		h.logger.Error("Failed to load history for export",
			zap.String("device_id", deviceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load history"))
		return
	}

	data, err := GenerateHistoryExport(deviceID, readings)
	if err != nil {
		h.logger.Error("Failed to generate history export",
			zap.String("device_id", deviceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("readings_%s_%s.xlsx", deviceID, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *DeviceHandler) writeStatusError(w http.ResponseWriter, deviceID string, err error) {
	switch {
	case errors.Is(err, domain.ErrSensorNotFound):
		writeJSON(w, http.StatusNotFound, Fail("device not found"))
	case errors.Is(err, domain.ErrNoReadings):
		writeJSON(w, http.StatusNotFound, Fail("no readings for device"))
	default:
		h.logger.Error("Failed to load device status",
			zap.String("device_id", deviceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to load device status"))
	}
}
