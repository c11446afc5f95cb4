// Package selecting scores candidate plans against frozen feature
// statistics and chooses one. The selector is a pure function:
// score(candidates, intent) -> ranked [ScoredPlan]. Normalization
// constants are compile-time, never recomputed from input, per the
// frozen-statistics design note.
package selecting

// featureStat is a frozen (mean, std) pair used for z-score
// normalization.
type featureStat struct {
	Mean, Std float64
}

// Frozen statistics for the four aggregate features, named constants
// that must never be recomputed at runtime.
var (
	statCost       = featureStat{Mean: 3500, Std: 1800}
	statTravelTime = featureStat{Mean: 1800, Std: 600}
	statThemeMatch = featureStat{Mean: 0.6, Std: 0.3}
	statIndoorPref = featureStat{Mean: 0, Std: 1}
)

func (s featureStat) zscore(v float64) float64 {
	if s.Std == 0 {
		return 0
	}
	return (v - s.Mean) / s.Std
}

// Fixed score weights other than the budget-aware cost weight.
const (
	weightTravel = -0.5
	weightTheme  = 1.5
	weightIndoor = 0.3
)

// baselinePerDayCents is the per-day spend the budget-aware cost
// weight bands against.
const baselinePerDayCents = 23000

// costWeight implements the budget-aware banding from §4.3: ratio of
// per-day budget to the baseline selects a coarse cost weight, more
// negative when the trip is tight and positive (rewarding spend) when
// the budget is generous.
func costWeight(budgetCents int64, tripDays int) float64 {
	if tripDays <= 0 {
		tripDays = 1
	}
	perDay := float64(budgetCents) / float64(tripDays)
	ratio := perDay / baselinePerDayCents

	switch {
	case ratio < 1.0:
		return -1.5
	case ratio < 1.5:
		return -1.0
	case ratio < 3.0:
		return -0.3
	default:
		return 0.5
	}
}
