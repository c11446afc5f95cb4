package verifying

import (
	"context"
	"time"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

// kidFriendlyCutoff is the local time after which an ending slot
// counts as a late-night activity for kid_friendly intents.
const kidFriendlyCutoff = 20 * time.Hour

// themeCoverageFloor is the minimum fraction of attraction slots that
// must share a theme with the intent before the theme preference is
// considered satisfied.
const themeCoverageFloor = 0.50

// Preferences checks must-have (blocking) and nice-to-have (advisory)
// constraints named in §4.5.
func Preferences(ctx context.Context, rs *core.RunState, m metrics.Facade) []core.Violation {
	plan := rs.SelectedPlan
	if plan == nil {
		return nil
	}
	prefs := rs.Intent.Preferences

	var violations []core.Violation

	if prefs.AvoidOvernight {
		for _, day := range plan.Days {
			for _, slot := range day.Slots {
				sel := slot.Selected()
				if sel.Kind != core.ChoiceFlight {
					continue
				}
				if fl, ok := rs.Flights[sel.OptionRef]; ok && fl.Overnight {
					violations = append(violations, core.Violation{
						Kind:     core.ViolationPrefViolated,
						NodeRef:  sel.OptionRef,
						Blocking: true,
						Details:  map[string]interface{}{"pref": "avoid_overnight"},
					})
					m.IncPrefViolation(ctx, "avoid_overnight")
					m.IncViolation(ctx, string(core.ViolationPrefViolated))
				}
			}
		}
	}

	if prefs.KidFriendly {
		for _, day := range plan.Days {
			for _, slot := range day.Slots {
				sel := slot.Selected()
				if slot.Window.End > kidFriendlyCutoff {
					violations = append(violations, core.Violation{
						Kind:     core.ViolationPrefViolated,
						NodeRef:  sel.OptionRef,
						Blocking: true,
						Details:  map[string]interface{}{"pref": "kid_friendly", "reason": "late_night_activity"},
					})
					m.IncPrefViolation(ctx, "kid_friendly")
					m.IncViolation(ctx, string(core.ViolationPrefViolated))
				}

				if sel.Kind == core.ChoiceAttraction {
					switch sel.Features.KidFriendly {
					case core.No:
						violations = append(violations, core.Violation{
							Kind:     core.ViolationPrefViolated,
							NodeRef:  sel.OptionRef,
							Blocking: true,
							Details:  map[string]interface{}{"pref": "kid_friendly", "reason": "not_kid_friendly"},
						})
						m.IncPrefViolation(ctx, "kid_friendly")
						m.IncViolation(ctx, string(core.ViolationPrefViolated))
					case core.Unknown:
						violations = append(violations, core.Violation{
							Kind:     core.ViolationPrefViolated,
							NodeRef:  sel.OptionRef,
							Blocking: false,
							Details:  map[string]interface{}{"pref": "kid_friendly", "reason": "unknown_kid_friendliness"},
						})
						m.IncPrefViolation(ctx, "kid_friendly")
						m.IncViolation(ctx, string(core.ViolationPrefViolated))
					}
				}
			}
		}
	}

	if len(prefs.Themes) > 0 {
		wanted := map[string]struct{}{}
		for _, t := range prefs.Themes {
			wanted[t] = struct{}{}
		}
		var attractionSlots, matching int
		for _, day := range plan.Days {
			for _, slot := range day.Slots {
				sel := slot.Selected()
				if sel.Kind != core.ChoiceAttraction {
					continue
				}
				attractionSlots++
				for _, t := range sel.Features.Themes {
					if _, ok := wanted[t]; ok {
						matching++
						break
					}
				}
			}
		}
		if attractionSlots > 0 && float64(matching)/float64(attractionSlots) < themeCoverageFloor {
			violations = append(violations, core.Violation{
				Kind:     core.ViolationPrefViolated,
				NodeRef:  "themes",
				Blocking: false,
				Details: map[string]interface{}{
					"pref":     "themes",
					"matching": matching,
					"total":    attractionSlots,
				},
			})
			m.IncPrefViolation(ctx, "themes")
			m.IncViolation(ctx, string(core.ViolationPrefViolated))
		}
	}

	return violations
}
