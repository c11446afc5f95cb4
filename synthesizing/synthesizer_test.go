package synthesizing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSynthesizeNilPlanReturnsBareItinerary(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))
	require.NotNil(t, it)
	assert.Equal(t, "trace1", it.ItineraryID)
	assert.Empty(t, it.Days)
}

func TestSynthesizeResolvedAttractionProducesNameAndCitation(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	rs.Attractions["museum:1"] = core.Attraction{OptionRef: "museum:1", Name: "Louvre", Provenance: core.Provenance{Source: core.SourceTool}}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{
		{Slots: []core.Slot{{Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "museum:1"}}}}},
	}}

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))

	require.Len(t, it.Days, 1)
	require.Len(t, it.Days[0].Activities, 1)
	assert.Equal(t, "Louvre", it.Days[0].Activities[0].Name)
	require.Len(t, it.Citations, 1)
	assert.Contains(t, it.Citations[0].Claim, "Louvre")
}

func TestSynthesizeUnresolvedAttractionProducesNoCitation(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{
		{Slots: []core.Slot{{Choices: []core.Choice{{Kind: core.ChoiceAttraction, OptionRef: "ghost:1", Features: core.ChoiceFeatures{CostCents: 500}}}}}},
	}}

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))

	require.Len(t, it.Days[0].Activities, 1)
	assert.Equal(t, "Local activity", it.Days[0].Activities[0].Name, "no evidence means a generic name, never a fabricated one")
	assert.Empty(t, it.Citations)
}

func TestSynthesizeDedupesLodgingCitationAcrossNights(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	rs.Lodgings["hotel:1"] = core.LodgingOption{OptionRef: "hotel:1", Name: "Hotel Demo", PricePerNight: 8000}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{
		{Slots: []core.Slot{{Choices: []core.Choice{{Kind: core.ChoiceLodging, OptionRef: "hotel:1"}}}}},
		{Slots: []core.Slot{{Choices: []core.Choice{{Kind: core.ChoiceLodging, OptionRef: "hotel:1"}}}}},
	}}

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))

	lodgingCitations := 0
	for _, c := range it.Citations {
		if c.Claim == "Staying at Hotel Demo" {
			lodgingCitations++
		}
	}
	assert.Equal(t, 1, lodgingCitations, "the same lodging option must be cited only once")
}

func TestSynthesizeRecomputesLodgingCostFromResolvedRecord(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	rs.Lodgings["hotel:1"] = core.LodgingOption{OptionRef: "hotel:1", Name: "Hotel Demo", PricePerNight: 9000}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{
		{Slots: []core.Slot{{Choices: []core.Choice{{Kind: core.ChoiceLodging, OptionRef: "hotel:1", Features: core.ChoiceFeatures{CostCents: 1}}}}}},
		{Slots: []core.Slot{{Choices: []core.Choice{{Kind: core.ChoiceLodging, OptionRef: "hotel:1", Features: core.ChoiceFeatures{CostCents: 1}}}}}},
	}}

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))
	assert.Equal(t, int64(18000), it.CostBreakdown.LodgingCents, "2 nights at 9000/night from the resolved record")
}

func TestSynthesizeAddsWeatherCitationWhenForecastKnown(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{City: "Paris"})
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rs.Weather["Paris:2025-06-01"] = core.WeatherDay{Date: date, PrecipProb: 0.3}
	rs.SelectedPlan = &core.Plan{Days: []core.DayPlan{{Date: date}}}

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))
	require.Len(t, it.Citations, 1)
	assert.Contains(t, it.Citations[0].Claim, "30%")
}

func TestSynthesizeBuildsSelectorDecisionWhenMultipleCandidates(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	rs.Candidates = []core.Plan{{Variant: "cost-conscious"}, {Variant: "convenience"}}
	rs.SelectedPlan = &core.Plan{Variant: "convenience"}

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))
	require.NotEmpty(t, it.Decisions)
	assert.Equal(t, "selector", it.Decisions[0].Stage)
	assert.Equal(t, "convenience", it.Decisions[0].Selected)
}

func TestSynthesizeBuildsPlannerDecisionForSingleCandidate(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	rs.SelectedPlan = &core.Plan{Variant: "cost-conscious"}

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))
	require.NotEmpty(t, it.Decisions)
	assert.Equal(t, "planner", it.Decisions[0].Stage)
}

func TestSynthesizeMentionsRepairWhenMovesWereApplied(t *testing.T) {
	rs := core.NewRunState("trace1", "org1", "user1", 1, core.Intent{})
	rs.SelectedPlan = &core.Plan{Variant: "cost-conscious"}
	rs.Repair.MovesApplied = 2
	rs.Repair.CyclesRun = 1

	it := Synthesize(context.Background(), rs, metrics.NoOp{}, fixedClock(time.Now()))
	found := false
	for _, d := range it.Decisions {
		if d.Stage == "repair" {
			found = true
		}
	}
	assert.True(t, found)
}
