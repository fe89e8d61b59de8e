package service

import (
	"github.com/omarioz/BiyoKaab/internal/domain"
)

// Risk levels, from best to worst.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Constraints is the supply-risk evaluation for an owner.
type Constraints struct {
	DaysOfSupply      float64 `json:"days_of_supply"` // rounded for output
	RiskLevel         string  `json:"risk_level"`
	DaysUntilRainfall *int    `json:"days_until_rainfall"`
	Season            *string `json:"season"`
}

// EvaluateConstraints combines availability, demand and climate into a
// days-of-supply figure and a risk classification. Zero demand means "no
// measurable demand" (days_of_supply 0), not a division error. The reported
// days_of_supply is rounded to two decimals; classification uses the
// unrounded value.
func EvaluateConstraints(availableLiters, dailyDemandLiters float64, climate *domain.ClimateSnapshot) Constraints {
	var daysOfSupply float64
	if dailyDemandLiters > 0 {
		daysOfSupply = availableLiters / dailyDemandLiters
	}

	result := Constraints{
		DaysOfSupply: round2(daysOfSupply),
		RiskLevel:    classifyRisk(daysOfSupply, climate),
	}
	if climate != nil {
		days := climate.DaysUntilRainfall
		season := climate.Season
		result.DaysUntilRainfall = &days
		result.Season = &season
	}
	return result
}

func classifyRisk(daysOfSupply float64, climate *domain.ClimateSnapshot) string {
	if climate == nil {
		switch {
		case daysOfSupply < 3:
			return RiskCritical
		case daysOfSupply < 7:
			return RiskHigh
		default:
			return RiskModerate
		}
	}

	if daysOfSupply < float64(climate.DaysUntilRainfall) {
		if daysOfSupply < 5 {
			return RiskHigh
		}
		return RiskModerate
	}
	return RiskLow
}
