// Package synthesizing assembles the final Itinerary from a Plan and
// the RunState's resolved tool-result dictionaries, enforcing the
// "no evidence, no claim" discipline: a citation is only emitted when
// the underlying option_ref resolves to a concrete record.
package synthesizing

import (
	"context"
	"fmt"
	"time"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

// Synthesize builds rs.Itinerary from rs.SelectedPlan, observing
// synthesis latency and citation coverage.
func Synthesize(ctx context.Context, rs *core.RunState, m metrics.Facade, clock func() time.Time) *core.Itinerary {
	start := clock()
	plan := rs.SelectedPlan

	it := &core.Itinerary{
		ItineraryID: rs.TraceID,
		Intent:      rs.Intent,
	}

	if plan == nil {
		m.ObserveSynthesisLatency(ctx, msSince(clock, start))
		return it
	}

	claims := 0
	citations := 0
	seenLodging := map[string]bool{}

	var flightsCents, lodgingCents, attractionsCents, transitCents int64
	lodgingNights := map[string]int{}

	for _, day := range plan.Days {
		di := core.DayItinerary{Date: day.Date}
		for _, slot := range day.Slots {
			sel := slot.Selected()
			activity, citation := resolveActivity(rs, sel, slot.Window)
			di.Activities = append(di.Activities, activity)
			claims++
			if citation != nil {
				if sel.Kind == core.ChoiceLodging {
					if seenLodging[sel.OptionRef] {
						citation = nil
					} else {
						seenLodging[sel.OptionRef] = true
					}
				}
				if citation != nil {
					it.Citations = append(it.Citations, *citation)
					citations++
				}
			}

			switch sel.Kind {
			case core.ChoiceFlight:
				flightsCents += sel.Features.CostCents
			case core.ChoiceLodging:
				lodgingCents += sel.Features.CostCents
				lodgingNights[sel.OptionRef]++
			case core.ChoiceAttraction:
				attractionsCents += sel.Features.CostCents
			case core.ChoiceTransit:
				transitCents += sel.Features.CostCents
			}
		}
		it.Days = append(it.Days, di)
	}

	// Recompute lodging cost from resolved records when available:
	// price_per_night * nights counted per option_ref occurrence.
	if recomputed, ok := recomputeLodgingCost(rs, lodgingNights); ok {
		lodgingCents = recomputed
	}

	for _, day := range plan.Days {
		key := rs.Intent.City + ":" + day.Date.Format("2006-01-02")
		if wd, ok := rs.Weather[key]; ok {
			it.Citations = append(it.Citations, core.Citation{
				Claim:      fmt.Sprintf("Weather forecast for %s: %.0f%% precipitation chance", day.Date.Format("2006-01-02"), wd.PrecipProb*100),
				Provenance: wd.Provenance,
			})
			citations++
			claims++
		}
	}

	numDays := int64(len(plan.Days))
	dailySpend := plan.Assumptions.DailySpendCents * numDays
	it.CostBreakdown = core.CostBreakdown{
		FlightsCents:     flightsCents,
		LodgingCents:     lodgingCents,
		AttractionsCents: attractionsCents,
		TransitCents:     transitCents,
		DailySpendCents:  dailySpend,
		TotalCents:       flightsCents + lodgingCents + attractionsCents + transitCents + dailySpend,
		Currency:         "Estimated in USD cents; FX rates are approximate.",
	}

	it.Decisions = buildDecisions(rs)

	m.ObserveSynthesisLatency(ctx, msSince(clock, start))
	m.ObserveCitationCoverage(ctx, citations, claims)

	return it
}

func resolveActivity(rs *core.RunState, sel core.Choice, window core.TimeWindow) (core.Activity, *core.Citation) {
	switch sel.Kind {
	case core.ChoiceAttraction:
		if att, ok := rs.Attractions[sel.OptionRef]; ok && att.Name != "" {
			return core.Activity{
					OptionRef: sel.OptionRef,
					Kind:      sel.Kind,
					Name:      att.Name,
					Notes:     att.Notes,
					Window:    window,
				}, &core.Citation{
					Claim:      fmt.Sprintf("%s is open during the scheduled window", att.Name),
					Provenance: att.Provenance,
				}
		}
	case core.ChoiceFlight:
		if fl, ok := rs.Flights[sel.OptionRef]; ok {
			return core.Activity{
					OptionRef: sel.OptionRef,
					Kind:      sel.Kind,
					Name:      fmt.Sprintf("Flight %s to %s", fl.Origin, fl.Destination),
					Window:    window,
				}, &core.Citation{
					Claim:      fmt.Sprintf("Flight from %s to %s confirmed", fl.Origin, fl.Destination),
					Provenance: fl.Provenance,
				}
		}
	case core.ChoiceLodging:
		if lo, ok := rs.Lodgings[sel.OptionRef]; ok {
			return core.Activity{
					OptionRef: sel.OptionRef,
					Kind:      sel.Kind,
					Name:      lo.Name,
					Window:    window,
				}, &core.Citation{
					Claim:      fmt.Sprintf("Staying at %s", lo.Name),
					Provenance: lo.Provenance,
				}
		}
	case core.ChoiceTransit:
		if tl, ok := rs.Transit[sel.OptionRef]; ok {
			return core.Activity{
					OptionRef: sel.OptionRef,
					Kind:      sel.Kind,
					Name:      fmt.Sprintf("Transit via %s", tl.Mode),
					Window:    window,
				}, &core.Citation{
					Claim:      fmt.Sprintf("Transit leg via %s confirmed", tl.Mode),
					Provenance: tl.Provenance,
				}
		}
	}

	// No evidence, no claim: generic activity from features only.
	return core.Activity{
		OptionRef: sel.OptionRef,
		Kind:      sel.Kind,
		Name:      genericName(sel.Kind),
		Notes:     fmt.Sprintf("Estimated cost: %d cents", sel.Features.CostCents),
		Window:    window,
	}, nil
}

func genericName(kind core.ChoiceKind) string {
	switch kind {
	case core.ChoiceFlight:
		return "Flight (details pending)"
	case core.ChoiceLodging:
		return "Lodging (details pending)"
	case core.ChoiceAttraction:
		return "Local activity"
	case core.ChoiceTransit:
		return "Transit leg"
	default:
		return "Scheduled activity"
	}
}

func recomputeLodgingCost(rs *core.RunState, nights map[string]int) (int64, bool) {
	if len(nights) == 0 {
		return 0, false
	}
	var total int64
	resolved := false
	for ref, n := range nights {
		if lo, ok := rs.Lodgings[ref]; ok {
			total += lo.PricePerNight * int64(n)
			resolved = true
		}
	}
	return total, resolved
}

func buildDecisions(rs *core.RunState) []core.Decision {
	var decisions []core.Decision

	if len(rs.Candidates) > 1 {
		var alts []string
		for _, c := range rs.Candidates {
			alts = append(alts, c.Variant)
		}
		selected := ""
		if rs.SelectedPlan != nil {
			selected = rs.SelectedPlan.Variant
		}
		decisions = append(decisions, core.Decision{
			Stage:        "selector",
			Rationale:    "chose the highest-scoring candidate plan",
			Alternatives: alts,
			Selected:     selected,
		})
	} else {
		selected := ""
		if rs.SelectedPlan != nil {
			selected = rs.SelectedPlan.Variant
		}
		decisions = append(decisions, core.Decision{
			Stage:     "planner",
			Rationale: "single candidate plan produced",
			Selected:  selected,
		})
	}

	if rs.Repair.MovesApplied > 0 {
		decisions = append(decisions, core.Decision{
			Stage:     "repair",
			Rationale: fmt.Sprintf("applied %d repair move(s) across %d cycle(s)", rs.Repair.MovesApplied, rs.Repair.CyclesRun),
			Selected:  "repaired_plan",
		})
	}

	return decisions
}

func msSince(clock func() time.Time, start time.Time) float64 {
	return float64(clock().Sub(start)) / float64(time.Millisecond)
}
