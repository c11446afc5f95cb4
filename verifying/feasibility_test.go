package verifying

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/voyager-core/config"
	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

func rsForFeasibility(zone string) *core.RunState {
	rs := core.NewRunState("t", "o", "u", 1, core.Intent{
		Window: core.DateWindow{Zone: zone},
	})
	return rs
}

func dayOn(year int, month time.Month, day int) core.DayPlan {
	return core.DayPlan{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func museumWithAllDayHours(ref, name string) core.Attraction {
	allDay := []core.OpenWindow{{Open: 0, Close: 24 * time.Hour}}
	return core.Attraction{
		OptionRef:    ref,
		Name:         name,
		OpeningHours: core.OpeningHours{allDay, allDay, allDay, allDay, allDay, allDay, allDay},
	}
}

func TestFeasibilityMuseumRequiresTwentyMinuteBuffer(t *testing.T) {
	rs := rsForFeasibility("UTC")
	rs.Attractions["museum:1"] = museumWithAllDayHours("museum:1", "City Museum")
	rs.Attractions["other"] = museumWithAllDayHours("other", "Plaza")

	day := dayOn(2025, 6, 2) // Monday
	day.Slots = []core.Slot{
		{Window: core.TimeWindow{Start: 9 * time.Hour, End: 10 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "museum:1"}}},
		{Window: core.TimeWindow{Start: 10*time.Hour + 15*time.Minute, End: 11 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "other"}}},
	}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{day}}

	v := Feasibility(context.Background(), rs, metrics.NoOp{}, config.Default())
	require.Len(t, v, 1)
	assert.Equal(t, "insufficient_gap", v[0].Details["reason"])
}

func TestFeasibilityMuseumSufficientBufferNoViolation(t *testing.T) {
	rs := rsForFeasibility("UTC")
	rs.Attractions["museum:1"] = museumWithAllDayHours("museum:1", "City Museum")
	rs.Attractions["other"] = museumWithAllDayHours("other", "Plaza")

	day := dayOn(2025, 6, 2)
	day.Slots = []core.Slot{
		{Window: core.TimeWindow{Start: 9 * time.Hour, End: 10 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "museum:1"}}},
		{Window: core.TimeWindow{Start: 10*time.Hour + 20*time.Minute, End: 11 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "other"}}},
	}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{day}}

	v := Feasibility(context.Background(), rs, metrics.NoOp{}, config.Default())
	assert.Empty(t, v)
}

func TestFeasibilitySplitHoursVenueAccepted(t *testing.T) {
	rs := rsForFeasibility("UTC")
	rs.Attractions["venue:1"] = core.Attraction{
		OptionRef: "venue:1",
		OpeningHours: core.OpeningHours{
			0: {{Open: 9 * time.Hour, Close: 12 * time.Hour}, {Open: 14 * time.Hour, Close: 18 * time.Hour}},
		},
	}
	day := dayOn(2025, 6, 2) // Monday -> idx 0
	day.Slots = []core.Slot{
		{Window: core.TimeWindow{Start: 14*time.Hour + 30*time.Minute, End: 16 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "venue:1"}}},
	}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{day}}

	v := Feasibility(context.Background(), rs, metrics.NoOp{}, config.Default())
	assert.Empty(t, v)
}

func TestFeasibilitySplitHoursVenueRejectedDuringGap(t *testing.T) {
	rs := rsForFeasibility("UTC")
	rs.Attractions["venue:1"] = core.Attraction{
		OptionRef: "venue:1",
		OpeningHours: core.OpeningHours{
			0: {{Open: 9 * time.Hour, Close: 12 * time.Hour}, {Open: 14 * time.Hour, Close: 18 * time.Hour}},
		},
	}
	day := dayOn(2025, 6, 2) // Monday -> idx 0
	day.Slots = []core.Slot{
		{Window: core.TimeWindow{Start: 12*time.Hour + 30*time.Minute, End: 13 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "venue:1"}}},
	}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{day}}

	v := Feasibility(context.Background(), rs, metrics.NoOp{}, config.Default())
	require.NotEmpty(t, v)
	assert.Equal(t, core.ViolationVenueClosed, v[0].Kind)
}

func TestFeasibilityLastTrainCutoffViolation(t *testing.T) {
	rs := rsForFeasibility("UTC")
	day := dayOn(2025, 6, 2)
	day.Slots = []core.Slot{
		{Window: core.TimeWindow{Start: 22 * time.Hour, End: 23*time.Hour + 29*time.Minute}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "late"}}},
	}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{day}, Assumptions: core.Assumptions{TransitBufferMin: 15}}

	v := Feasibility(context.Background(), rs, metrics.NoOp{}, config.Default())
	require.NotEmpty(t, v)
	found := false
	for _, viol := range v {
		if viol.Details["reason"] == "last_train_missed" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFeasibilityFlightRequiresAirportBuffer(t *testing.T) {
	rs := rsForFeasibility("UTC")
	day := dayOn(2025, 6, 2)
	day.Slots = []core.Slot{
		{Window: core.TimeWindow{Start: 9 * time.Hour, End: 10 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceFlight, OptionRef: "fl1"}}},
		{Window: core.TimeWindow{Start: 10*time.Hour + 30*time.Minute, End: 11 * time.Hour}, Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "x"}}},
	}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{day}, Assumptions: core.Assumptions{AirportBufferMin: 120}}

	v := Feasibility(context.Background(), rs, metrics.NoOp{}, config.Default())
	require.NotEmpty(t, v)
	assert.Equal(t, "insufficient_gap", v[0].Details["reason"])
	assert.Equal(t, 120, v[0].Details["required_minutes"])
}

func TestFeasibilityNilPlanReturnsNoViolations(t *testing.T) {
	rs := rsForFeasibility("UTC")
	v := Feasibility(context.Background(), rs, metrics.NoOp{}, config.Default())
	assert.Nil(t, v)
}
