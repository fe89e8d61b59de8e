package domain

// Demand categories. The category column is constrained to these values at
// the data-model boundary; aggregation assumes the invariant holds.
const (
	DemandCategoryHuman     = "human"
	DemandCategoryLivestock = "livestock"
	DemandCategoryCrop      = "crop"
)

// ValidDemandCategory reports whether c is one of the three named categories.
func ValidDemandCategory(c string) bool {
	switch c {
	case DemandCategoryHuman, DemandCategoryLivestock, DemandCategoryCrop:
		return true
	}
	return false
}

// WaterDemandUnit is one consumer group owned by a profile (maps to the
// water_demand_units table). Daily contribution = daily_need_liters * count.
type WaterDemandUnit struct {
	UnitID          string   `db:"unit_id"` // UUID, PRIMARY KEY
	OwnerID         string   `db:"owner_id"`
	Category        string   `db:"category"` // human | livestock | crop
	Name            string   `db:"name"`
	Count           int      `db:"count"` // >= 1
	AreaHectares    *float64 `db:"area_hectares"`
	DailyNeedLiters float64  `db:"daily_need_liters"`
}
