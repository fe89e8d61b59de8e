package service

import (
	"context"
	"fmt"
	"time"

	"github.com/omarioz/BiyoKaab/internal/domain"
	"github.com/omarioz/BiyoKaab/pkg/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// swalimForecast is the FAO SWALIM rainfall forecast payload.
type swalimForecast struct {
	Season            string `json:"season"`
	DaysUntilRainfall int    `json:"days_until_rainfall"`
}

// ClimateFetcher pulls rainfall forecasts from FAO SWALIM and persists them
// as climate snapshots. The most recent snapshot per location wins.
type ClimateFetcher struct {
	httpClient *resty.Client
	climate    ClimateStore
	logger     *zap.Logger
}

// NewClimateFetcher creates a fetcher against the configured SWALIM base URL.
func NewClimateFetcher(cfg config.ClimateConfig, climate ClimateStore, logger *zap.Logger) *ClimateFetcher {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &ClimateFetcher{
		httpClient: client,
		climate:    climate,
		logger:     logger,
	}
}

// Refresh fetches the forecast for one location and stores it as a new
// snapshot. Unknown seasons from the feed are rejected before persisting.
func (f *ClimateFetcher) Refresh(ctx context.Context, locationID, region string) (*domain.ClimateSnapshot, error) {
	var forecast swalimForecast
	resp, err := f.httpClient.R().
		SetContext(ctx).
		SetQueryParam("region", region).
		SetResult(&forecast).
		Get("/v1/rainfall/forecast")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rainfall forecast: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rainfall forecast request failed: status %d", resp.StatusCode())
	}

	if !validSeason(forecast.Season) {
		return nil, fmt.Errorf("unknown season in forecast: %q", forecast.Season)
	}
	if forecast.DaysUntilRainfall < 0 {
		return nil, fmt.Errorf("negative days_until_rainfall in forecast: %d", forecast.DaysUntilRainfall)
	}

	snapshot := &domain.ClimateSnapshot{
		LocationID:        locationID,
		Season:            forecast.Season,
		DaysUntilRainfall: forecast.DaysUntilRainfall,
		Source:            "FAO_SWALIM",
	}
	if err := f.climate.Insert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store climate snapshot: %w", err)
	}

	f.logger.Info("Refreshed climate snapshot",
		zap.String("location_id", locationID),
		zap.String("season", snapshot.Season),
		zap.Int("days_until_rainfall", snapshot.DaysUntilRainfall),
	)
	return snapshot, nil
}

// LocationStore enumerates locations needing forecasts.
type LocationStore interface {
	All(ctx context.Context) ([]domain.Location, error)
}

// RefreshAll fetches forecasts for every known location. One failing
// location does not stop the sweep.
func (f *ClimateFetcher) RefreshAll(ctx context.Context, locations LocationStore) {
	all, err := locations.All(ctx)
	if err != nil {
		f.logger.Error("Failed to list locations for climate refresh", zap.Error(err))
		return
	}

	for _, loc := range all {
		if _, err := f.Refresh(ctx, loc.LocationID, loc.Region); err != nil {
			f.logger.Warn("Climate refresh failed for location",
				zap.String("location_id", loc.LocationID),
				zap.String("region", loc.Region),
				zap.Error(err),
			)
		}
	}
}

// Run refreshes all locations on interval until ctx is cancelled. The first
// sweep happens immediately.
func (f *ClimateFetcher) Run(ctx context.Context, locations LocationStore, interval time.Duration) {
	f.RefreshAll(ctx, locations)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.RefreshAll(ctx, locations)
		}
	}
}

func validSeason(s string) bool {
	switch s {
	case domain.SeasonXagaa, domain.SeasonGu, domain.SeasonDayr:
		return true
	}
	return false
}
