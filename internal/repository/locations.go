package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"go.uber.org/zap"
)

// LocationsRepository reads locations. Used by the climate refresher to
// enumerate places that need a rainfall forecast.
type LocationsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLocationsRepository creates a locations repository.
func NewLocationsRepository(db *sql.DB, logger *zap.Logger) *LocationsRepository {
	return &LocationsRepository{db: db, logger: logger}
}

// All lists every location.
func (r *LocationsRepository) All(ctx context.Context) ([]domain.Location, error) {
	query := `
		SELECT location_id, name, region, latitude, longitude, description
		FROM locations
		ORDER BY region, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	out := []domain.Location{}
	for rows.Next() {
		var loc domain.Location
		var lat, lon sql.NullFloat64
		var description sql.NullString
		if err := rows.Scan(&loc.LocationID, &loc.Name, &loc.Region, &lat, &lon, &description); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		if lat.Valid {
			loc.Latitude = &lat.Float64
		}
		if lon.Valid {
			loc.Longitude = &lon.Float64
		}
		if description.Valid {
			loc.Description = description.String
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}
	return out, nil
}
