package domain

// Water system types.
const (
	SystemTypePortableFogNet = "portable_fog_net"
	SystemTypeFixedFogNet    = "fixed_fog_net"
)

// WaterSystem is a named fog-net installation owned by a profile
// (maps to the water_systems table).
type WaterSystem struct {
	SystemID   string  `db:"system_id"` // UUID, PRIMARY KEY
	Name       string  `db:"name"`      // VARCHAR(120), NOT NULL
	SystemType string  `db:"system_type"`
	OwnerID    string  `db:"owner_id"` // user_profiles.profile_id, NOT NULL
	LocationID *string `db:"location_id"`
}

// WaterStorage is a tank belonging to a water system (maps to the
// water_storages table). current_volume_liters is maintained independently
// of sensor readings; device status derives volume at read time instead.
type WaterStorage struct {
	StorageID           string  `db:"storage_id"` // UUID, PRIMARY KEY
	SystemID            string  `db:"system_id"`  // NOT NULL
	Name                string  `db:"name"`       // default 'Tank'
	CapacityLiters      float64 `db:"capacity_liters"`
	CurrentVolumeLiters float64 `db:"current_volume_liters"`
}

// ToJSON converts a storage row for HTTP responses.
func (s *WaterStorage) ToJSON() map[string]any {
	return map[string]any{
		"storage_id":            s.StorageID,
		"system_id":             s.SystemID,
		"name":                  s.Name,
		"capacity_liters":       s.CapacityLiters,
		"current_volume_liters": s.CurrentVolumeLiters,
	}
}
