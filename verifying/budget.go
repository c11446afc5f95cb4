// Package verifying runs the four blocking/advisory verifiers over a
// selected Plan and its resolved tool-result records: budget,
// feasibility, weather, preferences, in that order, concatenating
// their violations onto the RunState.
package verifying

import (
	"context"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

// budgetSlippage is the 10% tolerance named in §4.5: a violation fires
// only when total cost exceeds budget by more than this fraction.
const budgetSlippage = 1.10

// Budget sums selected-choice costs by category plus the daily spend
// estimate, and fires a single blocking violation when the total
// exceeds budget * 1.10.
func Budget(ctx context.Context, rs *core.RunState, m metrics.Facade) []core.Violation {
	plan := rs.SelectedPlan
	if plan == nil {
		return nil
	}

	var flights, lodging, attractions, transit int64
	for _, day := range plan.Days {
		for _, slot := range day.Slots {
			sel := slot.Selected()
			switch sel.Kind {
			case core.ChoiceFlight:
				flights += sel.Features.CostCents
			case core.ChoiceLodging:
				lodging += sel.Features.CostCents
			case core.ChoiceAttraction:
				attractions += sel.Features.CostCents
			case core.ChoiceTransit:
				transit += sel.Features.CostCents
			}
		}
	}

	numDays := int64(len(plan.Days))
	dailySpend := plan.Assumptions.DailySpendCents * numDays
	total := flights + lodging + attractions + transit + dailySpend

	m.ObserveBudgetDelta(ctx, rs.Intent.BudgetCents, total)

	threshold := int64(float64(rs.Intent.BudgetCents) * budgetSlippage)
	if total <= threshold {
		return nil
	}

	overBy := total - rs.Intent.BudgetCents
	m.IncViolation(ctx, string(core.ViolationBudgetExceeded))

	return []core.Violation{{
		Kind:     core.ViolationBudgetExceeded,
		NodeRef:  "budget",
		Blocking: true,
		Details: map[string]interface{}{
			"flights_cents":     flights,
			"lodging_cents":     lodging,
			"attractions_cents": attractions,
			"transit_cents":     transit,
			"daily_spend_cents": dailySpend,
			"total_cents":       total,
			"budget_cents":      rs.Intent.BudgetCents,
			"over_by_usd_cents": overBy,
		},
	}}
}
