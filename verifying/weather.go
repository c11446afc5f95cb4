package verifying

import (
	"context"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

// Thresholds classifying a day's weather as bad enough to constrain
// outdoor activity, named explicitly in §4.5.
const (
	precipThreshold = 0.60
	windThresholdKMH = 30.0
)

// Weather classifies each day with known forecast as bad or not, and
// for bad days checks every slot's indoor tri-state: false is
// blocking, unknown is advisory, true produces nothing.
func Weather(ctx context.Context, rs *core.RunState, m metrics.Facade) []core.Violation {
	plan := rs.SelectedPlan
	if plan == nil {
		return nil
	}

	var violations []core.Violation

	for _, day := range plan.Days {
		key := rs.Intent.City + ":" + day.Date.Format("2006-01-02")
		wd, ok := rs.Weather[key]
		if !ok {
			continue
		}
		bad := wd.PrecipProb >= precipThreshold || wd.WindKMH >= windThresholdKMH
		if !bad {
			continue
		}

		for _, slot := range day.Slots {
			sel := slot.Selected()
			switch sel.Features.Indoor {
			case core.No:
				violations = append(violations, core.Violation{
					Kind:     core.ViolationWeatherUnsuitable,
					NodeRef:  sel.OptionRef,
					Blocking: true,
					Details:  map[string]interface{}{"reason": "outdoor_activity_bad_weather"},
				})
				m.IncWeatherBlocking(ctx)
				m.IncViolation(ctx, string(core.ViolationWeatherUnsuitable))
			case core.Unknown:
				violations = append(violations, core.Violation{
					Kind:     core.ViolationWeatherUnsuitable,
					NodeRef:  sel.OptionRef,
					Blocking: false,
					Details:  map[string]interface{}{"reason": "uncertain_weather"},
				})
				m.IncWeatherAdvisory(ctx)
				m.IncViolation(ctx, string(core.ViolationWeatherUnsuitable))
			case core.Yes:
				// No violation.
			}
		}
	}

	return violations
}
