package selecting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/voyager-core/core"
)

func planWithCost(variant string, costCents int64, themes []string) core.Plan {
	return core.Plan{
		Variant: variant,
		Days: []core.DayPlan{
			{
				Slots: []core.Slot{
					{
						Window: core.TimeWindow{Start: 9 * time.Hour, End: 10 * time.Hour},
						Choices: []core.Choice{
							{
								Kind: core.ChoiceAttraction,
								Features: core.ChoiceFeatures{
									CostCents: costCents,
									Themes:    themes,
									Indoor:    core.Yes,
								},
							},
						},
					},
				},
			},
		},
	}
}

func sampleSelectorIntent(budgetCents int64) core.Intent {
	return core.Intent{
		BudgetCents: budgetCents,
		Window: core.DateWindow{
			Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
			Zone:  "UTC",
		},
	}
}

func TestScoreRanksCheaperPlanHigherUnderTightBudget(t *testing.T) {
	cheap := planWithCost("cost-conscious", 2000, []string{"art"})
	pricey := planWithCost("experience", 20000, []string{"art"})

	scored := Score(context.Background(), []core.Plan{pricey, cheap}, sampleSelectorIntent(40000), nil)

	require.Len(t, scored, 2)
	assert.Equal(t, "cost-conscious", scored[0].Plan.Variant, "tight budget must favor the cheaper candidate")
}

func TestScorePreservesStableOrderOnTies(t *testing.T) {
	a := planWithCost("a", 3500, []string{"art"})
	b := planWithCost("b", 3500, []string{"art"})

	scored := Score(context.Background(), []core.Plan{a, b}, sampleSelectorIntent(40000), nil)
	require.Len(t, scored, 2)
	assert.Equal(t, "a", scored[0].Plan.Variant)
	assert.Equal(t, "b", scored[1].Plan.Variant)
}

func TestScoreHandlesEmptyCandidateList(t *testing.T) {
	scored := Score(context.Background(), nil, sampleSelectorIntent(40000), nil)
	assert.Empty(t, scored)
}

func TestScoreNilLoggerDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Score(context.Background(), []core.Plan{planWithCost("solo", 1000, nil)}, sampleSelectorIntent(40000), nil)
	})
}

func TestAggregateThemeMatchCountsUniqueThemesOnly(t *testing.T) {
	plan := core.Plan{
		Days: []core.DayPlan{
			{
				Slots: []core.Slot{
					{Choices: []core.Choice{{Features: core.ChoiceFeatures{Themes: []string{"art", "art"}}}}},
					{Choices: []core.Choice{{Features: core.ChoiceFeatures{Themes: []string{"food"}}}}},
				},
			},
		},
	}
	agg := aggregate(plan)
	assert.InDelta(t, 2.0/5.0, agg.ThemeMatch, 0.0001)
}
