package domain

import "time"

// Somali seasons used by the climate feed.
const (
	SeasonXagaa = "xagaa"
	SeasonGu    = "gu"
	SeasonDayr  = "dayr"
)

// ClimateSnapshot is one climate observation for a location (maps to the
// climate_snapshots table). The most recent snapshot per location is
// authoritative.
type ClimateSnapshot struct {
	SnapshotID        string    `db:"snapshot_id"` // UUID, PRIMARY KEY
	LocationID        string    `db:"location_id"`
	Season            string    `db:"season"`              // xagaa | gu | dayr
	DaysUntilRainfall int       `db:"days_until_rainfall"` // >= 0
	Source            string    `db:"source"`              // default 'FAO_SWALIM'
	RecordedAt        time.Time `db:"recorded_at"`
}
