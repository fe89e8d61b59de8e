package domain

// User types.
const (
	UserTypeFarmer = "farmer"
	UserTypeNomad  = "nomad"
)

// UserProfile is the owner of water systems, demand units and plans
// (maps to the user_profiles table).
type UserProfile struct {
	ProfileID     string  `db:"profile_id"` // UUID, PRIMARY KEY
	UserID        string  `db:"user_id"`    // external auth user id, UNIQUE
	UserType      string  `db:"user_type"`  // farmer | nomad
	LocationID    *string `db:"location_id"`
	FogSystemType string  `db:"fog_system_type"`
}
