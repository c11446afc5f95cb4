package planning

import (
	"strconv"
	"time"

	"github.com/itsneelabh/voyager-core/config"
	"github.com/itsneelabh/voyager-core/core"
)

// bucket is one of the three daily activity slots the planner may fill
// when density and non-overlap allow.
type bucket struct {
	name   string
	window core.TimeWindow
}

var dayBuckets = []bucket{
	{name: "morning", window: core.TimeWindow{Start: 9 * time.Hour, End: 12 * time.Hour}},
	{name: "afternoon", window: core.TimeWindow{Start: 13*time.Hour + 30*time.Minute, End: 17 * time.Hour}},
	{name: "evening", window: core.TimeWindow{Start: 18*time.Hour + 30*time.Minute, End: 21 * time.Hour}},
}

// selectVariants applies the fan-out policy from §4.2, then truncates
// to the configured fanout cap.
func selectVariants(intent core.Intent, fanoutCap int) []Variant {
	variants := []Variant{variantCostConscious}
	if intent.BudgetCents > convenienceBudgetFloorCents {
		variants = append(variants, variantConvenience)
	}
	if intent.BudgetCents > experienceBudgetFloorCents {
		variants = append(variants, variantExperience)
	}
	if len(intent.Preferences.Themes) > 1 {
		variants = append(variants, variantRelaxed)
	}
	if len(variants) > fanoutCap {
		variants = variants[:fanoutCap]
	}
	return variants
}

// dayCount clamps the intent window's day count to [4,7].
func dayCount(intent core.Intent) int {
	n := intent.Window.Days()
	if n < 4 {
		n = 4
	}
	if n > 7 {
		n = 7
	}
	return n
}

// BuildCandidatePlans is the planner's pure entry point: 0 < len <=
// cfg.FanoutCap plans, deterministic given intent. A nil cfg falls
// back to config.Default() for the fan-out cap and buffer assumptions.
func BuildCandidatePlans(intent core.Intent, cfg *config.Settings) []core.Plan {
	if cfg == nil {
		cfg = config.Default()
	}
	seed := DeriveSeed(intent)
	variants := selectVariants(intent, cfg.FanoutCap)
	days := dayCount(intent)

	loc, err := time.LoadLocation(intent.Window.Zone)
	if err != nil {
		loc = time.UTC
	}
	startDate := intent.Window.Start.In(loc).Truncate(24 * time.Hour)

	plans := make([]core.Plan, 0, len(variants))
	for _, v := range variants {
		plans = append(plans, buildVariantPlan(intent, v, seed, days, startDate, cfg))
	}
	return plans
}

func buildVariantPlan(intent core.Intent, v Variant, seed int64, days int, startDate time.Time, cfg *config.Settings) core.Plan {
	plan := core.Plan{
		Variant: v.Name,
		RNGSeed: seed,
		Assumptions: core.Assumptions{
			FXRate:           v.FXRate,
			DailySpendCents:  v.DailySpendCents,
			TransitBufferMin: int(cfg.TransitBufferMin.Minutes()),
			AirportBufferMin: int(cfg.AirportBufferMin.Minutes()),
		},
	}

	r := newRNG(seed ^ int64(len(v.Name)))

	lockedByDay := map[int][]core.LockedSlot{}
	for _, ls := range intent.Preferences.LockedSlots {
		lockedByDay[ls.DayOffset] = append(lockedByDay[ls.DayOffset], ls)
	}

	plan.Days = make([]core.DayPlan, days)
	for d := 0; d < days; d++ {
		dp := core.DayPlan{Date: startDate.AddDate(0, 0, d)}

		var slots []core.Slot
		for _, ls := range lockedByDay[d] {
			slots = append(slots, core.Slot{
				Window:  ls.TimeWindow,
				Locked:  true,
				Choices: []core.Choice{lockedChoice(ls, v)},
			})
		}

		for _, b := range dayBuckets {
			if overlapsAny(b.window, slots) {
				continue
			}
			if r.float64() > v.Density {
				continue
			}
			slots = append(slots, generatedSlot(b, v, d, v.Name))
		}

		sortSlots(slots)
		dp.Slots = slots
		plan.Days[d] = dp
	}

	return plan
}

func overlapsAny(w core.TimeWindow, slots []core.Slot) bool {
	candidate := core.Slot{Window: w}
	for _, s := range slots {
		if candidate.Overlaps(s) {
			return true
		}
	}
	return false
}

func sortSlots(slots []core.Slot) {
	for i := 1; i < len(slots); i++ {
		j := i
		for j > 0 && slots[j-1].Window.Start > slots[j].Window.Start {
			slots[j-1], slots[j] = slots[j], slots[j-1]
			j--
		}
	}
}

func lockedChoice(ls core.LockedSlot, v Variant) core.Choice {
	return core.Choice{
		Kind:      core.ChoiceAttraction,
		OptionRef: ls.ActivityRef,
		Features: core.ChoiceFeatures{
			CostCents: int64(float64(4000) * v.CostMultiplier),
			Indoor:    core.Unknown,
		},
		Provenance: core.Provenance{Source: core.SourceUser},
	}
}

func generatedSlot(b bucket, v Variant, dayOffset int, variantName string) core.Slot {
	baseCost := int64(3000)
	ref := "attraction:" + variantName + ":" + b.name + ":" + strconv.Itoa(dayOffset)
	return core.Slot{
		Window: b.window,
		Choices: []core.Choice{
			{
				Kind:      core.ChoiceAttraction,
				OptionRef: ref, // resolved by the toolexec stage against fixtures/adapters
				Features: core.ChoiceFeatures{
					CostCents: int64(float64(baseCost) * v.CostMultiplier),
					Indoor:    core.Unknown,
				},
				Provenance: core.Provenance{Source: core.SourcePlanner},
			},
		},
	}
}
