package httpapi

import (
	"errors"
	"net/http"

	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/service"

	"go.uber.org/zap"
)

// DashboardHandler serves the per-user overview.
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Summary handles GET /water/api/v1/dashboard?user_id=...
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("user_id is required"))
		return
	}

	summary, err := h.dashboard.Summary(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeJSON(w, http.StatusBadRequest, Fail("user_id missing or not found"))
			return
		}
		h.logger.Error("Failed to build dashboard summary",
			zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to build dashboard"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(summary))
}
