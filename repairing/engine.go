// Package repairing implements the bounded, deterministic plan
// mutator: repair(plan, violations) -> {plan_after, diffs, remaining,
// cycles_run, moves_applied, reuse_ratio, success}. The 2-moves x
// 3-cycles cap and the reuse-ratio contract are enforced as hard
// stops, per the repair-bounds design note.
package repairing

import (
	"context"
	"time"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

const (
	maxMovesPerCycle = 2
	maxCycles        = 3
)

// MoveKind tags a repair edit.
type MoveKind string

const (
	MoveChangeHotelTier MoveKind = "change_hotel_tier"
	MoveReplaceSlot     MoveKind = "replace_slot"
	MoveReorderSlots    MoveKind = "reorder_slots"
	MoveSwapAirport     MoveKind = "swap_airport"
)

// RepairDiff records one applied move for the streamed event log and
// the synthesizer's decision records.
type RepairDiff struct {
	Move        MoveKind
	DayIndex    int
	SlotIndex   *int
	OldValue    string
	NewValue    string
	CostDelta   int64
	MinuteDelta int
	Reason      string
	Provenance  core.Provenance
}

// Reverifier re-runs the verifier suite against a candidate plan,
// returning the violations that remain. The engine's default shipped
// behavior does not require one: it uses the "assume fixed by
// relevant diff" heuristic instead. Supplying a Reverifier lets a
// caller opt into re-running verifiers between cycles instead.
type Reverifier func(ctx context.Context, plan core.Plan) []core.Violation

// Result is the repair engine's complete output for one invocation.
type Result struct {
	PlanAfter    core.Plan
	Diffs        []RepairDiff
	Remaining    []core.Violation
	CyclesRun    int
	MovesApplied int
	ReuseRatio   float64
	Success      bool
}

// Engine runs the bounded repair loop.
type Engine struct {
	Metrics    metrics.Facade
	Reverifier Reverifier // optional; nil uses the default heuristic
}

// Repair mutates a deep copy of plan to address violations, honoring
// the per-cycle and total-cycle budgets.
func (e *Engine) Repair(ctx context.Context, plan core.Plan, violations []core.Violation) Result {
	m := e.Metrics
	if m == nil {
		m = metrics.NoOp{}
	}
	m.IncRepairAttempt(ctx)

	if len(plan.Days) == 0 {
		blocking := countBlocking(violations)
		return Result{PlanAfter: plan, Remaining: violations, ReuseRatio: 1.0, Success: blocking == 0}
	}

	before := plan.DeepCopy()
	after := plan.DeepCopy()
	remaining := append([]core.Violation(nil), violations...)

	var diffs []RepairDiff
	cyclesRun := 0
	movesApplied := 0

	for cycle := 0; cycle < maxCycles; cycle++ {
		cyclesRun++
		cycleDiffs := e.runCycle(&after, remaining)
		if len(cycleDiffs) == 0 {
			break
		}
		diffs = append(diffs, cycleDiffs...)
		movesApplied += len(cycleDiffs)

		if e.Reverifier != nil {
			remaining = e.Reverifier(ctx, after)
		} else {
			remaining = filterFixed(remaining, cycleDiffs)
		}
	}

	reuseRatio := computeReuseRatio(before, after)
	success := countBlocking(remaining) == 0

	m.ObserveRepairCycles(ctx, cyclesRun)
	m.ObserveRepairMoves(ctx, movesApplied)
	m.ObserveRepairReuseRatio(ctx, reuseRatio)
	if success {
		m.IncRepairSuccess(ctx)
	}

	return Result{
		PlanAfter:    after,
		Diffs:        diffs,
		Remaining:    remaining,
		CyclesRun:    cyclesRun,
		MovesApplied: movesApplied,
		ReuseRatio:   reuseRatio,
		Success:      success,
	}
}

// runCycle applies eligible moves in priority order (budget, weather,
// timing, venue_closed, preference) up to maxMovesPerCycle.
func (e *Engine) runCycle(plan *core.Plan, violations []core.Violation) []RepairDiff {
	var diffs []RepairDiff

	priority := []core.ViolationKind{
		core.ViolationBudgetExceeded,
		core.ViolationWeatherUnsuitable,
		core.ViolationTimingInfeasible,
		core.ViolationVenueClosed,
		core.ViolationPrefViolated,
	}

	for _, kind := range priority {
		if len(diffs) >= maxMovesPerCycle {
			break
		}
		for _, v := range violations {
			if v.Kind != kind {
				continue
			}
			var diff *RepairDiff
			switch kind {
			case core.ViolationBudgetExceeded:
				diff = tryFixBudget(plan)
			case core.ViolationWeatherUnsuitable:
				diff = tryFixWeather(plan, v)
			}
			if diff != nil {
				diffs = append(diffs, *diff)
				break // at most one move per category per cycle
			}
			if len(diffs) >= maxMovesPerCycle {
				break
			}
		}
	}

	return diffs
}

func countBlocking(violations []core.Violation) int {
	n := 0
	for _, v := range violations {
		if v.Blocking {
			n++
		}
	}
	return n
}

// computeReuseRatio is the fraction of slot positions whose selected
// option_ref is unchanged between before and after. With no days,
// returns 1.0.
func computeReuseRatio(before, after core.Plan) float64 {
	total := 0
	unchanged := 0
	for di := range before.Days {
		if di >= len(after.Days) {
			continue
		}
		bd, ad := before.Days[di], after.Days[di]
		for si := range bd.Slots {
			if si >= len(ad.Slots) {
				continue
			}
			total++
			if bd.Slots[si].Selected().OptionRef == ad.Slots[si].Selected().OptionRef {
				unchanged++
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(unchanged) / float64(total)
}

// filterFixed removes violations the cycle's diffs are assumed to have
// addressed: budget violations are considered fixed by any
// change_hotel_tier diff, weather by any replace_slot diff. This is
// the "assume fixed by relevant diff" heuristic the design note flags
// as optimistic; callers wanting the stricter behavior should supply a
// Reverifier instead.
func filterFixed(violations []core.Violation, diffs []RepairDiff) []core.Violation {
	fixedBudget := false
	fixedWeather := false
	for _, d := range diffs {
		switch d.Move {
		case MoveChangeHotelTier:
			fixedBudget = true
		case MoveReplaceSlot:
			fixedWeather = true
		}
	}

	var out []core.Violation
	for _, v := range violations {
		if v.Kind == core.ViolationBudgetExceeded && fixedBudget {
			continue
		}
		if v.Kind == core.ViolationWeatherUnsuitable && fixedWeather {
			continue
		}
		out = append(out, v)
	}
	return out
}

const hotelDiscountFactor = 0.80

// tryFixBudget downgrades the first lodging slot's selected cost by
// 20%, producing a new Choice with a distinct option_ref.
func tryFixBudget(plan *core.Plan) *RepairDiff {
	for di := range plan.Days {
		for si := range plan.Days[di].Slots {
			slot := &plan.Days[di].Slots[si]
			if slot.Selected().Kind != core.ChoiceLodging {
				continue
			}
			old := slot.Choices[0]
			newCost := int64(float64(old.Features.CostCents) * hotelDiscountFactor)
			newChoice := old
			newChoice.OptionRef = old.OptionRef + "_downgraded"
			newChoice.Features.CostCents = newCost
			newChoice.Provenance = core.Provenance{Source: core.SourceRepair, FetchedAt: time.Now()}
			slot.Choices[0] = newChoice

			idx := si
			return &RepairDiff{
				Move:      MoveChangeHotelTier,
				DayIndex:  di,
				SlotIndex: &idx,
				OldValue:  old.OptionRef,
				NewValue:  newChoice.OptionRef,
				CostDelta: newCost - old.Features.CostCents,
				Reason:    "downgraded lodging tier to reduce cost",
				Provenance: newChoice.Provenance,
			}
		}
	}
	return nil
}

// tryFixWeather swaps the selected choice referenced by a weather
// violation for an indoor alternative, copying features but marking
// indoor=true.
func tryFixWeather(plan *core.Plan, v core.Violation) *RepairDiff {
	for di := range plan.Days {
		for si := range plan.Days[di].Slots {
			slot := &plan.Days[di].Slots[si]
			old := slot.Choices[0]
			if old.OptionRef != v.NodeRef || !old.Features.Indoor.IsNo() {
				continue
			}
			newChoice := old
			newChoice.OptionRef = old.OptionRef + "_indoor"
			newChoice.Features.Indoor = core.Yes
			newChoice.Provenance = core.Provenance{Source: core.SourceRepair, FetchedAt: time.Now()}
			slot.Choices[0] = newChoice

			idx := si
			return &RepairDiff{
				Move:      MoveReplaceSlot,
				DayIndex:  di,
				SlotIndex: &idx,
				OldValue:  old.OptionRef,
				NewValue:  newChoice.OptionRef,
				Reason:    "swapped to indoor alternative for bad weather",
				Provenance: newChoice.Provenance,
			}
		}
	}
	return nil
}
