package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClimateRepository persists climate snapshots. The most recent snapshot
// per location is authoritative.
type ClimateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClimateRepository creates a climate repository.
func NewClimateRepository(db *sql.DB, logger *zap.Logger) *ClimateRepository {
	return &ClimateRepository{db: db, logger: logger}
}

// LatestForLocation returns the newest snapshot for a location, or nil when
// no snapshot exists (absence of climate data is not an error).
func (r *ClimateRepository) LatestForLocation(ctx context.Context, locationID string) (*domain.ClimateSnapshot, error) {
	query := `
		SELECT snapshot_id, location_id, season, days_until_rainfall, source, recorded_at
		FROM climate_snapshots
		WHERE location_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var s domain.ClimateSnapshot
	err := r.db.QueryRowContext(ctx, query, locationID).Scan(
		&s.SnapshotID,
		&s.LocationID,
		&s.Season,
		&s.DaysUntilRainfall,
		&s.Source,
		&s.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get climate snapshot: %w", err)
	}
	return &s, nil
}

// Insert stores a new snapshot fetched from the climate feed.
func (r *ClimateRepository) Insert(ctx context.Context, s *domain.ClimateSnapshot) error {
	if s.SnapshotID == "" {
		s.SnapshotID = uuid.New().String()
	}

	query := `
		INSERT INTO climate_snapshots (snapshot_id, location_id, season, days_until_rainfall, source, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING recorded_at
	`

	err := r.db.QueryRowContext(ctx, query,
		s.SnapshotID,
		s.LocationID,
		s.Season,
		s.DaysUntilRainfall,
		s.Source,
	).Scan(&s.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert climate snapshot: %w", err)
	}

	r.logger.Info("Stored climate snapshot",
		zap.String("location_id", s.LocationID),
		zap.String("season", s.Season),
		zap.Int("days_until_rainfall", s.DaysUntilRainfall),
	)
	return nil
}
