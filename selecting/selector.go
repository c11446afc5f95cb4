package selecting

import (
	"context"
	"sort"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/logging"
)

// aggregateFeatures is the per-candidate rollup across every
// ChoiceFeatures in every slot, computed before normalization.
type aggregateFeatures struct {
	CostCents       int64
	TravelTimeMean  float64
	ThemeMatch      float64
	IndoorPrefMean  float64
}

func aggregate(plan core.Plan) aggregateFeatures {
	var (
		totalCost       int64
		travelSum       float64
		travelCount     int
		uniqueThemes    = map[string]struct{}{}
		indoorSum       float64
		indoorCount     int
	)

	for _, day := range plan.Days {
		for _, slot := range day.Slots {
			f := slot.Selected().Features
			totalCost += f.CostCents
			if f.HasTravel {
				travelSum += float64(f.TravelTime)
				travelCount++
			}
			for _, t := range f.Themes {
				uniqueThemes[t] = struct{}{}
			}
			indoorSum += f.Indoor.Score()
			indoorCount++
		}
	}

	travelMean := 0.0
	if travelCount > 0 {
		travelMean = travelSum / float64(travelCount)
	}
	indoorMean := 0.0
	if indoorCount > 0 {
		indoorMean = indoorSum / float64(indoorCount)
	}

	return aggregateFeatures{
		CostCents:      totalCost,
		TravelTimeMean: travelMean,
		ThemeMatch:     float64(len(uniqueThemes)) / 5.0,
		IndoorPrefMean: indoorMean,
	}
}

// ScoredPlan pairs a candidate with its computed score and the
// aggregate feature vector used to compute it, for score-vector
// logging.
type ScoredPlan struct {
	Plan      core.Plan
	Score     float64
	Features  aggregateFeatures
	CostW     float64
}

// Score ranks candidates descending by final score and logs the
// chosen plan's feature vector plus up to two discarded ones,
// including the cost weight used, per §4.3.
func Score(ctx context.Context, candidates []core.Plan, intent core.Intent, log logging.Logger) []ScoredPlan {
	if log == nil {
		log = logging.NoOp{}
	}
	tripDays := intent.Window.Days()
	w := costWeight(intent.BudgetCents, tripDays)

	scored := make([]ScoredPlan, 0, len(candidates))
	for _, c := range candidates {
		agg := aggregate(c)
		zCost := statCost.zscore(float64(agg.CostCents))
		zTravel := statTravelTime.zscore(agg.TravelTimeMean)
		zTheme := statThemeMatch.zscore(agg.ThemeMatch)
		zIndoor := statIndoorPref.zscore(agg.IndoorPrefMean)

		score := w*zCost + weightTravel*zTravel + weightTheme*zTheme + weightIndoor*zIndoor
		scored = append(scored, ScoredPlan{Plan: c, Score: score, Features: agg, CostW: w})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	logScoreVectors(ctx, scored, log)
	return scored
}

func logScoreVectors(ctx context.Context, scored []ScoredPlan, log logging.Logger) {
	if len(scored) == 0 {
		return
	}
	log.InfoWithContext(ctx, "selector chose plan", map[string]interface{}{
		"variant":      scored[0].Plan.Variant,
		"score":        scored[0].Score,
		"cost_weight":  scored[0].CostW,
		"cost_cents":   scored[0].Features.CostCents,
		"travel_time":  scored[0].Features.TravelTimeMean,
		"theme_match":  scored[0].Features.ThemeMatch,
		"indoor_pref":  scored[0].Features.IndoorPrefMean,
	})
	discarded := scored[1:]
	if len(discarded) > 2 {
		discarded = discarded[:2]
	}
	for _, d := range discarded {
		log.DebugWithContext(ctx, "selector discarded plan", map[string]interface{}{
			"variant":     d.Plan.Variant,
			"score":       d.Score,
			"cost_weight": d.CostW,
			"cost_cents":  d.Features.CostCents,
			"travel_time": d.Features.TravelTimeMean,
			"theme_match": d.Features.ThemeMatch,
			"indoor_pref": d.Features.IndoorPrefMean,
		})
	}
}
