package domain

// Location is a named place a water system or user profile is tied to
// (maps to the locations table).
type Location struct {
	LocationID  string   `db:"location_id"` // UUID, PRIMARY KEY
	Name        string   `db:"name"`        // VARCHAR(120), NOT NULL
	Region      string   `db:"region"`      // VARCHAR(120), NOT NULL
	Latitude    *float64 `db:"latitude"`    // nullable
	Longitude   *float64 `db:"longitude"`   // nullable
	Description string   `db:"description"` // TEXT
}
