package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/config"
	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/internal/store"

	"go.uber.org/zap"
)

// DashboardSummary is the full per-owner overview.
type DashboardSummary struct {
	Profile      map[string]any   `json:"profile"`
	Storages     []map[string]any `json:"storages"`
	Availability Availability     `json:"availability"`
	Demand       Demand           `json:"demand"`
	Constraints  Constraints      `json:"constraints"`
}

// DashboardService assembles the owner summary with a read-through cache.
// The cache is an optimization only: any cache failure degrades to a direct
// computation and the request still succeeds.
type DashboardService struct {
	profiles ProfileStore
	systems  SystemStore
	sensors  SensorStore
	demand   DemandStore
	climate  ClimateStore
	cache    store.KV
	cfg      *config.Config
	logger   *zap.Logger
}

// NewDashboardService creates a dashboard service. cache may be nil, in which
// case every request computes from the database.
func NewDashboardService(
	profiles ProfileStore,
	systems SystemStore,
	sensors SensorStore,
	demand DemandStore,
	climate ClimateStore,
	cache store.KV,
	cfg *config.Config,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		profiles: profiles,
		systems:  systems,
		sensors:  sensors,
		demand:   demand,
		climate:  climate,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

// Summary returns the availability, demand and constraint view for a user.
// Unknown users return domain.ErrProfileNotFound.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	cacheKey := s.cfg.Dashboard.CacheKeyPrefix + userID

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var summary DashboardSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
			s.logger.Warn("Discarding unreadable dashboard cache entry",
				zap.String("user_id", userID))
		} else if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Dashboard cache read failed, computing directly",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	summary, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(encoded), s.cfg.Dashboard.CacheTTL); err != nil {
				s.logger.Warn("Dashboard cache write failed",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
		}
	}

	return summary, nil
}

func (s *DashboardService) compute(ctx context.Context, userID string) (*DashboardSummary, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	storages, err := s.systems.StoragesForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load storages: %w", err)
	}
	latest, err := s.sensors.LatestPerSensorForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest readings: %w", err)
	}
	units, err := s.demand.UnitsForOwner(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand units: %w", err)
	}

	var snapshot *domain.ClimateSnapshot
	if profile.LocationID != nil {
		snapshot, err = s.climate.LatestForLocation(ctx, *profile.LocationID)
		if err != nil {
			// Climate is advisory. The summary is still valid without it.
			s.logger.Warn("Failed to load climate snapshot",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			snapshot = nil
		}
	}

	availability := CalculateAvailability(storages, latest)
	demand := CalculateDailyDemand(units)
	constraints := EvaluateConstraints(availability.AvailableLiters, demand.TotalDailyLiters, snapshot)

	storageItems := make([]map[string]any, 0, len(storages))
	for i := range storages {
		storageItems = append(storageItems, storages[i].ToJSON())
	}

	return &DashboardSummary{
		Profile: map[string]any{
			"profile_id": profile.ProfileID,
			"user_type":  profile.UserType,
		},
		Storages:     storageItems,
		Availability: availability,
		Demand:       demand,
		Constraints:  constraints,
	}, nil
}
