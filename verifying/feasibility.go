package verifying

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/itsneelabh/voyager-core/config"
	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

func zoneLocation(zone string) *time.Location {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func toInstant(date time.Time, offset time.Duration, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).Add(offset)
}

// Feasibility checks per-day slot ordering, required gaps, venue
// opening hours, and the last-train cutoff, all using zone-aware
// instants so DST transitions do not corrupt gap arithmetic.
func Feasibility(ctx context.Context, rs *core.RunState, m metrics.Facade, cfg *config.Settings) []core.Violation {
	plan := rs.SelectedPlan
	if plan == nil {
		return nil
	}
	if cfg == nil {
		cfg = config.Default()
	}
	loc := zoneLocation(rs.Intent.Window.Zone)

	var violations []core.Violation

	for _, day := range plan.Days {
		slots := append([]core.Slot(nil), day.Slots...)
		sort.Slice(slots, func(i, j int) bool { return slots[i].Window.Start < slots[j].Window.Start })

		for i, slot := range slots {
			sel := slot.Selected()

			if v, ok := checkVenueHours(rs, day, slot, loc); !ok {
				violations = append(violations, v)
				m.IncFeasibilityViolation(ctx, "venue_closed")
			}

			if i+1 < len(slots) {
				next := slots[i+1]
				required := requiredBufferMinutes(rs, sel, plan.Assumptions.TransitBufferMin, cfg)
				end := toInstant(day.Date, slot.Window.End, loc)
				nextStart := toInstant(day.Date, next.Window.Start, loc)
				gap := nextStart.Sub(end)
				if gap < time.Duration(required)*time.Minute {
					violations = append(violations, core.Violation{
						Kind:    core.ViolationTimingInfeasible,
						NodeRef: sel.OptionRef,
						Blocking: true,
						Details: map[string]interface{}{
							"reason":            "insufficient_gap",
							"required_minutes":  required,
							"actual_minutes":    gap.Minutes(),
						},
					})
					m.IncFeasibilityViolation(ctx, "insufficient_gap")
				}
			}
		}

		if len(slots) > 0 {
			last := slots[len(slots)-1]
			end := toInstant(day.Date, last.Window.End, loc)
			cutoff := toInstant(day.Date, cfg.LastTrainCutoff, loc)
			bufferedCutoff := cutoff.Add(-time.Duration(plan.Assumptions.TransitBufferMin) * time.Minute)
			if end.After(bufferedCutoff) {
				violations = append(violations, core.Violation{
					Kind:     core.ViolationTimingInfeasible,
					NodeRef:  "last_train_missed",
					Blocking: true,
					Details: map[string]interface{}{
						"reason": "last_train_missed",
					},
				})
				m.IncFeasibilityViolation(ctx, "last_train_missed")
			}
		}
	}

	return violations
}

// requiredBufferMinutes picks the gap required after sel's slot: the
// airport buffer after a flight, the configured museum buffer after a
// museum attraction, otherwise the plan's transit buffer.
func requiredBufferMinutes(rs *core.RunState, sel core.Choice, transitBufferMin int, cfg *config.Settings) int {
	if sel.Kind == core.ChoiceFlight {
		return transitBufferAirport(rs)
	}
	if sel.Kind == core.ChoiceAttraction {
		if att, ok := rs.Attractions[sel.OptionRef]; ok && strings.Contains(strings.ToLower(att.Name), "museum") {
			return int(cfg.MuseumBufferMin.Minutes())
		}
	}
	return transitBufferMin
}

func transitBufferAirport(rs *core.RunState) int {
	if rs.SelectedPlan != nil {
		return rs.SelectedPlan.Assumptions.AirportBufferMin
	}
	return 120
}

// checkVenueHours verifies that some opening window on the slot's
// weekday fully contains [start,end] in the intent's timezone. A
// missing key or empty list counts as closed.
func checkVenueHours(rs *core.RunState, day core.DayPlan, slot core.Slot, loc *time.Location) (core.Violation, bool) {
	sel := slot.Selected()
	if sel.Kind != core.ChoiceAttraction || sel.OptionRef == "" {
		return core.Violation{}, true
	}
	att, ok := rs.Attractions[sel.OptionRef]
	if !ok {
		return core.Violation{}, true
	}

	weekday := int(day.Date.In(loc).Weekday())
	// time.Weekday: Sunday=0..Saturday=6; spec indexes 0=Monday..6=Sunday.
	idx := (weekday + 6) % 7
	windows := att.OpeningHours[idx]
	if len(windows) == 0 {
		return closedViolation(sel.OptionRef), false
	}
	for _, w := range windows {
		if slot.Window.Start >= w.Open && slot.Window.End <= w.Close {
			return core.Violation{}, true
		}
	}
	return closedViolation(sel.OptionRef), false
}

func closedViolation(ref string) core.Violation {
	return core.Violation{
		Kind:     core.ViolationVenueClosed,
		NodeRef:  ref,
		Blocking: true,
		Details:  map[string]interface{}{"reason": "outside_opening_hours"},
	}
}
