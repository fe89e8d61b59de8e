package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"go.uber.org/zap"
)

// ProfilesRepository resolves user profiles by external user id.
type ProfilesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfilesRepository creates a profiles repository.
func NewProfilesRepository(db *sql.DB, logger *zap.Logger) *ProfilesRepository {
	return &ProfilesRepository{db: db, logger: logger}
}

// GetByUserID returns the profile for an external user id or
// domain.ErrProfileNotFound.
func (r *ProfilesRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `
		SELECT profile_id, user_id, user_type, location_id, fog_system_type
		FROM user_profiles
		WHERE user_id = $1
	`

	var p domain.UserProfile
	var locationID sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ProfileID,
		&p.UserID,
		&p.UserType,
		&locationID,
		&p.FogSystemType,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if locationID.Valid {
		p.LocationID = &locationID.String
	}
	return &p, nil
}
