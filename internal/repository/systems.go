package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"go.uber.org/zap"
)

// SystemsRepository reads water systems and their storages. All queries are
// owner-scoped; the core never issues ad hoc joins itself.
type SystemsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSystemsRepository creates a systems repository.
func NewSystemsRepository(db *sql.DB, logger *zap.Logger) *SystemsRepository {
	return &SystemsRepository{db: db, logger: logger}
}

// SystemsForOwner lists the owner's water systems.
func (r *SystemsRepository) SystemsForOwner(ctx context.Context, ownerID string) ([]domain.WaterSystem, error) {
	query := `
		SELECT system_id, name, system_type, owner_id, location_id
		FROM water_systems
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	defer rows.Close()

	out := []domain.WaterSystem{}
	for rows.Next() {
		var s domain.WaterSystem
		var locationID sql.NullString
		if err := rows.Scan(&s.SystemID, &s.Name, &s.SystemType, &s.OwnerID, &locationID); err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		if locationID.Valid {
			s.LocationID = &locationID.String
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate systems: %w", err)
	}
	return out, nil
}

// StoragesForOwner lists every storage in the owner's systems.
func (r *SystemsRepository) StoragesForOwner(ctx context.Context, ownerID string) ([]domain.WaterStorage, error) {
	query := `
		SELECT st.storage_id, st.system_id, st.name, st.capacity_liters, st.current_volume_liters
		FROM water_storages st
		JOIN water_systems ws ON st.system_id = ws.system_id
		WHERE ws.owner_id = $1
		ORDER BY st.name
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query storages: %w", err)
	}
	defer rows.Close()

	out := []domain.WaterStorage{}
	for rows.Next() {
		var st domain.WaterStorage
		if err := rows.Scan(&st.StorageID, &st.SystemID, &st.Name, &st.CapacityLiters, &st.CurrentVolumeLiters); err != nil {
			return nil, fmt.Errorf("failed to scan storage: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate storages: %w", err)
	}
	return out, nil
}
