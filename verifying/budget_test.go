package verifying

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

func rsWithPlanCost(budgetCents int64, attractionCostCents int64, dailySpendCents int64, days int) *core.RunState {
	p := &core.Plan{Assumptions: core.Assumptions{DailySpendCents: dailySpendCents}}
	for i := 0; i < days; i++ {
		p.Days = append(p.Days, core.DayPlan{
			Slots: []core.Slot{
				{Choices: []core.Choice{{Kind: core.ChoiceAttraction, Features: core.ChoiceFeatures{CostCents: attractionCostCents}}}},
			},
		})
	}
	rs := core.NewRunState("t", "o", "u", 1, core.Intent{BudgetCents: budgetCents})
	rs.SelectedPlan = p
	return rs
}

func TestBudgetNoViolationWithinSlippage(t *testing.T) {
	rs := rsWithPlanCost(100000, 1000, 5000, 10) // total = 10*1000 + 10*5000 = 60000, well under budget
	v := Budget(context.Background(), rs, metrics.NoOp{})
	assert.Empty(t, v)
}

func TestBudgetViolationJustOverSlippage(t *testing.T) {
	// budget 10000, total must exceed 11000 to fire.
	rs := rsWithPlanCost(10000, 6000, 0, 2) // total = 12000 > 11000
	v := Budget(context.Background(), rs, metrics.NoOp{})
	require.Len(t, v, 1)
	assert.Equal(t, core.ViolationBudgetExceeded, v[0].Kind)
	assert.True(t, v[0].Blocking)
}

func TestBudgetNoViolationExactlyAtSlippageBoundary(t *testing.T) {
	// total == budget * 1.10 exactly must NOT fire (only fires when total exceeds the threshold).
	rs := rsWithPlanCost(10000, 11000, 0, 1) // total = 11000 = 10000*1.10
	v := Budget(context.Background(), rs, metrics.NoOp{})
	assert.Empty(t, v)
}

func TestBudgetNilPlanReturnsNoViolations(t *testing.T) {
	rs := core.NewRunState("t", "o", "u", 1, core.Intent{})
	v := Budget(context.Background(), rs, metrics.NoOp{})
	assert.Nil(t, v)
}

func TestBudgetSumsAllCategories(t *testing.T) {
	rs := core.NewRunState("t", "o", "u", 1, core.Intent{BudgetCents: 1000000})
	rs.SelectedPlan = &core.Plan{
		Days: []core.DayPlan{
			{
				Slots: []core.Slot{
					{Choices: []core.Choice{{Kind: core.ChoiceFlight, Features: core.ChoiceFeatures{CostCents: 20000}}}},
					{Choices: []core.Choice{{Kind: core.ChoiceLodging, Features: core.ChoiceFeatures{CostCents: 15000}}}},
					{Choices: []core.Choice{{Kind: core.ChoiceTransit, Features: core.ChoiceFeatures{CostCents: 500}}}},
				},
			},
		},
	}
	v := Budget(context.Background(), rs, metrics.NoOp{})
	assert.Empty(t, v)
}
