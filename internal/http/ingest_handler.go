package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/service"

	"go.uber.org/zap"
)

const maxIngestBody = 64 * 1024

// IngestHandler accepts telemetry over HTTP. It shares the ingest service
// with the MQTT consumer, so both paths validate and auto-create identically.
type IngestHandler struct {
	ingest *service.IngestService
	logger *zap.Logger
}

func NewIngestHandler(ingest *service.IngestService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{ingest: ingest, logger: logger}
}

// Ingest handles POST /water/api/v1/ingest.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to read request body"))
		return
	}

	reading, err := h.ingest.Ingest(r.Context(), "http:"+r.URL.Path, payload)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, Fail(verr.Error()))
			return
		}
		h.logger.Error("HTTP ingest failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to store reading"))
		return
	}

	writeJSON(w, http.StatusCreated, Ok(reading.ToJSON()))
}
