package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"go.uber.org/zap"
)

// PlanContext is the pre-computed context handed to the text generator. The
// generator receives aggregates only; it never sees raw sensor rows.
type PlanContext struct {
	Profile     *domain.UserProfile
	Systems     []domain.WaterSystem
	Storages    []domain.WaterStorage
	DemandUnits []domain.WaterDemandUnit
	Climate     *domain.ClimateSnapshot
	Demand      Demand
	HorizonDays int
}

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatContext is the system-state summary attached to chat conversations.
type ChatContext struct {
	AvailableLiters   float64
	DailyDemandLiters float64
	StorageCapacity   float64
	ClimateInfo       string
}

// PlanGenerator produces plan text and chat replies from prepared context.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, pc PlanContext) (string, error)
	Chat(ctx context.Context, messages []ChatMessage, cc *ChatContext) (string, error)
}

// disabledGenerator stands in when no text generation backend is configured.
// Plan and chat requests fail cleanly; the rest of the API keeps working.
type disabledGenerator struct{}

func (disabledGenerator) GeneratePlan(context.Context, PlanContext) (string, error) {
	return "", fmt.Errorf("text generation not configured")
}

func (disabledGenerator) Chat(context.Context, []ChatMessage, *ChatContext) (string, error) {
	return "", fmt.Errorf("text generation not configured")
}

// NewDisabledGenerator returns a PlanGenerator that rejects every request.
func NewDisabledGenerator() PlanGenerator { return disabledGenerator{} }

// defaultPriorityRules is recorded on every generated plan.
var defaultPriorityRules = json.RawMessage(`{"order":["human","livestock","crop"],"notes":"Preserve drinking water first; ration irrigation based on rainfall outlook."}`)

// PlannerService orchestrates plan generation: load context, call the
// generator, then atomically swap the active plan. The generator is called
// before any database mutation, so a generation failure (including timeout)
// leaves the plan history untouched.
type PlannerService struct {
	profiles  ProfileStore
	systems   SystemStore
	sensors   SensorStore
	demand    DemandStore
	climate   ClimateStore
	plans     PlanStore
	generator PlanGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewPlannerService creates a planner service. timeout bounds each generator
// call.
func NewPlannerService(
	profiles ProfileStore,
	systems SystemStore,
	sensors SensorStore,
	demand DemandStore,
	climate ClimateStore,
	plans PlanStore,
	generator PlanGenerator,
	timeout time.Duration,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		profiles:  profiles,
		systems:   systems,
		sensors:   sensors,
		demand:    demand,
		climate:   climate,
		plans:     plans,
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Generate produces a new plan for a user over horizonDays and makes it the
// single active plan. Errors: unknown user returns domain.ErrProfileNotFound;
// generator failure wraps domain.ErrPlannerFailed with no state change;
// losing a concurrent swap returns domain.ErrPlanConflict.
func (s *PlannerService) Generate(ctx context.Context, userID string, horizonDays int) (*domain.WaterPlan, error) {
	pc, err := s.loadContext(ctx, userID, horizonDays)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	planText, err := s.generator.GeneratePlan(genCtx, *pc)
	if err != nil {
		s.logger.Error("Plan generation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrPlannerFailed, err)
	}

	today := truncateToDate(time.Now().UTC())
	plan := &domain.WaterPlan{
		OwnerID:       pc.Profile.ProfileID,
		PlanText:      planText,
		DateStart:     today,
		DateEnd:       today.AddDate(0, 0, horizonDays),
		PriorityRules: defaultPriorityRules,
		Status:        domain.PlanStatusActive,
	}
	if len(pc.Systems) > 0 {
		systemID := pc.Systems[0].SystemID
		plan.SystemID = &systemID
	}

	if err := s.plans.SwapActive(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("Generated new water plan",
		zap.String("user_id", userID),
		zap.String("plan_id", plan.PlanID),
		zap.Int("horizon_days", horizonDays),
	)
	return plan, nil
}

// Active returns the user's active plan, or domain.ErrNoActivePlan.
func (s *PlannerService) Active(ctx context.Context, userID string) (*domain.WaterPlan, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.plans.ActiveForOwner(ctx, profile.ProfileID)
}

// Chat relays a conversation to the generator with a best-effort state
// summary. A missing profile or failed context load does not fail the chat;
// the conversation proceeds without context.
func (s *PlannerService) Chat(ctx context.Context, userID string, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", &domain.ValidationError{Reason: "messages array is required"}
	}
	for _, msg := range messages {
		if msg.Role == "" || strings.TrimSpace(msg.Content) == "" {
			return "", &domain.ValidationError{Reason: "each message must have role and non-empty content"}
		}
	}

	cc := s.buildChatContext(ctx, userID)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	reply, err := s.generator.Chat(genCtx, messages, cc)
	if err != nil {
		s.logger.Error("Chat generation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", domain.ErrPlannerFailed, err)
	}
	return reply, nil
}

func (s *PlannerService) loadContext(ctx context.Context, userID string, horizonDays int) (*PlanContext, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	systems, err := s.systems.SystemsForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load systems: %w", err)
	}
	storages, err := s.systems.StoragesForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load storages: %w", err)
	}
	units, err := s.demand.UnitsForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand units: %w", err)
	}

	var snapshot *domain.ClimateSnapshot
	if profile.LocationID != nil {
		snapshot, err = s.climate.LatestForLocation(ctx, *profile.LocationID)
		if err != nil {
			s.logger.Warn("Failed to load climate snapshot for plan",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			snapshot = nil
		}
	}

	return &PlanContext{
		Profile:     profile,
		Systems:     systems,
		Storages:    storages,
		DemandUnits: units,
		Climate:     snapshot,
		Demand:      CalculateDailyDemand(units),
		HorizonDays: horizonDays,
	}, nil
}

// buildChatContext assembles the chat state summary. Any failure yields nil.
func (s *PlannerService) buildChatContext(ctx context.Context, userID string) *ChatContext {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil
	}

	storages, err := s.systems.StoragesForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil
	}
	latest, err := s.sensors.LatestPerSensorForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil
	}
	units, err := s.demand.UnitsForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil
	}

	availability := CalculateAvailability(storages, latest)
	demand := CalculateDailyDemand(units)

	var capacity float64
	for _, storage := range storages {
		capacity += storage.CapacityLiters
	}

	climateInfo := "Not available"
	if profile.LocationID != nil {
		if snapshot, err := s.climate.LatestForLocation(ctx, *profile.LocationID); err == nil && snapshot != nil {
			climateInfo = fmt.Sprintf("%s season, %d days until rainfall",
				snapshot.Season, snapshot.DaysUntilRainfall)
		}
	}

	return &ChatContext{
		AvailableLiters:   availability.AvailableLiters,
		DailyDemandLiters: demand.TotalDailyLiters,
		StorageCapacity:   capacity,
		ClimateInfo:       climateInfo,
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
