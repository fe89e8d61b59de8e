package service

import (
	"github.com/omarioz/BiyoKaab/internal/domain"
)

// DemandTotals holds per-category daily demand in liters.
type DemandTotals struct {
	Human     float64 `json:"human"`
	Livestock float64 `json:"livestock"`
	Crop      float64 `json:"crop"`
}

// Demand is the aggregated daily water need for an owner.
type Demand struct {
	Totals           DemandTotals `json:"totals"`
	TotalDailyLiters float64      `json:"total_daily_liters"`
}

// CalculateDailyDemand accumulates daily_need_liters * count into the bucket
// matching each unit's category. Categories are constrained to the three
// named values at the data-model boundary, so no unknown bucket exists here.
func CalculateDailyDemand(units []domain.WaterDemandUnit) Demand {
	var d Demand
	for _, unit := range units {
		contribution := unit.DailyNeedLiters * float64(unit.Count)
		switch unit.Category {
		case domain.DemandCategoryHuman:
			d.Totals.Human += contribution
		case domain.DemandCategoryLivestock:
			d.Totals.Livestock += contribution
		case domain.DemandCategoryCrop:
			d.Totals.Crop += contribution
		}
	}
	d.TotalDailyLiters = d.Totals.Human + d.Totals.Livestock + d.Totals.Crop
	return d
}
