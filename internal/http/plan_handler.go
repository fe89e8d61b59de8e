package httpapi

import (
	"errors"
	"net/http"

	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/service"

	"go.uber.org/zap"
)

const maxPlanBody = 256 * 1024

// PlanHandler serves plan generation, the active plan and assistant chat.
type PlanHandler struct {
	planner            *service.PlannerService
	defaultHorizonDays int
	logger             *zap.Logger
}

func NewPlanHandler(planner *service.PlannerService, defaultHorizonDays int, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		planner:            planner,
		defaultHorizonDays: defaultHorizonDays,
		logger:             logger,
	}
}

// Generate handles POST /water/api/v1/plans/generate.
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string `json:"user_id"`
		HorizonDays int    `json:"horizon_days"`
	}
	if err := readBodyJSON(r, maxPlanBody, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if body.UserID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("user_id is required"))
		return
	}
	horizonDays := body.HorizonDays
	if horizonDays <= 0 {
		horizonDays = h.defaultHorizonDays
	}

	plan, err := h.planner.Generate(r.Context(), body.UserID, horizonDays)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			writeJSON(w, http.StatusBadRequest, Fail("user_id missing or not found"))
		case errors.Is(err, domain.ErrPlanConflict):
			writeJSON(w, http.StatusConflict, Fail("another plan generation is in progress"))
		case errors.Is(err, domain.ErrPlannerFailed):
			writeJSON(w, http.StatusInternalServerError, Fail("failed to generate plan"))
		default:
			h.logger.Error("Plan generation failed",
				zap.String("user_id", body.UserID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to generate plan"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, Ok(plan.ToJSON()))
}

// Active handles GET /water/api/v1/plans/active?user_id=...
func (h *PlanHandler) Active(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("user_id is required"))
		return
	}

	plan, err := h.planner.Active(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			writeJSON(w, http.StatusBadRequest, Fail("user_id missing or not found"))
		case errors.Is(err, domain.ErrNoActivePlan):
			writeJSON(w, http.StatusNotFound, Fail("no active plan"))
		default:
			h.logger.Error("Failed to load active plan",
				zap.String("user_id", userID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to load plan"))
		}
		return
	}

	writeJSON(w, http.StatusOK, Ok(plan.ToJSON()))
}

// Chat handles POST /water/api/v1/ai/chat.
func (h *PlanHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID   string                `json:"user_id"`
		Messages []service.ChatMessage `json:"messages"`
	}
	if err := readBodyJSON(r, maxPlanBody, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	reply, err := h.planner.Chat(r.Context(), body.UserID, body.Messages)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, Fail(verr.Error()))
			return
		}
		h.logger.Error("Chat request failed",
			zap.String("user_id", body.UserID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate response"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]string{
		"message": reply,
		"role":    "assistant",
	}))
}
