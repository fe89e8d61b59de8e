package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"go.uber.org/zap"
)

// DemandRepository reads water demand units.
type DemandRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDemandRepository creates a demand repository.
func NewDemandRepository(db *sql.DB, logger *zap.Logger) *DemandRepository {
	return &DemandRepository{db: db, logger: logger}
}

// UnitsForOwner lists the owner's demand units. The category CHECK
// constraint on the table guarantees only the three named categories appear.
func (r *DemandRepository) UnitsForOwner(ctx context.Context, ownerID string) ([]domain.WaterDemandUnit, error) {
	query := `
		SELECT unit_id, owner_id, category, name, count, area_hectares, daily_need_liters
		FROM water_demand_units
		WHERE owner_id = $1
		ORDER BY category, name
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query demand units: %w", err)
	}
	defer rows.Close()

	out := []domain.WaterDemandUnit{}
	for rows.Next() {
		var u domain.WaterDemandUnit
		var area sql.NullFloat64
		if err := rows.Scan(&u.UnitID, &u.OwnerID, &u.Category, &u.Name, &u.Count, &area, &u.DailyNeedLiters); err != nil {
			return nil, fmt.Errorf("failed to scan demand unit: %w", err)
		}
		if area.Valid {
			u.AreaHectares = &area.Float64
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate demand units: %w", err)
	}
	return out, nil
}
