// Package fixtures provides deterministic, fixture-backed
// implementations of the toolexec adapter interfaces, used by tests
// and the CLI demo in place of live third-party integrations.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/toolexec"
)

// Adapters is an in-memory, seedable stand-in for every external
// collaborator the toolexec stage depends on.
type Adapters struct {
	Attractions map[string]core.Attraction
}

// NewAdapters builds fixture adapters with an empty attraction catalog.
// Callers may add entries keyed by the option_ref convention the planner
// emits ("attraction:<variant>:<bucket>:<day>"); refs absent from the
// catalog get the deterministic fallback record from FetchAttraction.
func NewAdapters() *Adapters {
	return &Adapters{Attractions: map[string]core.Attraction{}}
}

func (a *Adapters) FetchFlights(ctx context.Context, origin, destination string, window core.DateWindow, avoidOvernight bool, perDayBudgetCents int64) ([]core.FlightOption, error) {
	tier := flightTier(perDayBudgetCents)
	ref := fmt.Sprintf("flight:%s:%s:%s", origin, destination, tier)
	return []core.FlightOption{{
		OptionRef:   ref,
		Origin:      origin,
		Destination: destination,
		Depart:      window.Start,
		Arrive:      window.Start.Add(3 * time.Hour),
		CostCents:   tierFlightCost(tier),
		Overnight:   false,
	}}, nil
}

func (a *Adapters) FetchLodging(ctx context.Context, city string, window core.DateWindow, perDayBudgetCents int64) ([]core.LodgingOption, error) {
	tier := lodgingTier(perDayBudgetCents)
	ref := fmt.Sprintf("lodging:%s:%s", city, tier)
	return []core.LodgingOption{{
		OptionRef:     ref,
		Name:          fmt.Sprintf("%s %s Hotel", city, tier),
		PricePerNight: tierLodgingCost(tier),
		Tier:          tier,
	}}, nil
}

func (a *Adapters) FetchAttraction(ctx context.Context, optionRef string, city string) (core.Attraction, error) {
	if att, ok := a.Attractions[optionRef]; ok {
		return att, nil
	}
	// Deterministic fallback: a fixed museum record named after the
	// city and stamped with the option_ref, so the same ref and city
	// always produce the same attraction across runs.
	return core.Attraction{
		OptionRef: optionRef,
		Name:      fmt.Sprintf("%s Museum", city),
		Themes:    []string{"art", "history"},
		Indoor:    core.Yes,
		KidFriendly: core.Unknown,
		OpeningHours: core.OpeningHours{
			{{Open: 9 * time.Hour, Close: 18 * time.Hour}},
			{{Open: 9 * time.Hour, Close: 18 * time.Hour}},
			{{Open: 9 * time.Hour, Close: 18 * time.Hour}},
			{{Open: 9 * time.Hour, Close: 18 * time.Hour}},
			{{Open: 9 * time.Hour, Close: 18 * time.Hour}},
			{{Open: 9 * time.Hour, Close: 21 * time.Hour}},
			{}, // closed Sunday
		},
	}, nil
}

func (a *Adapters) FetchTransit(ctx context.Context, from, to string) (core.TransitLeg, error) {
	return core.TransitLeg{
		OptionRef: fmt.Sprintf("transit:%s:%s", from, to),
		Mode:      "metro",
		Duration:  20 * time.Minute,
		CostCents: 250,
	}, nil
}

func (a *Adapters) FetchWeather(ctx context.Context, city string, date core.DateWindow) (core.WeatherDay, error) {
	return core.WeatherDay{
		Date:       date.Start,
		PrecipProb: 0.20,
		WindKMH:    10,
	}, nil
}

func (a *Adapters) FetchFX(ctx context.Context, from, to string) (core.FXRate, error) {
	return core.FXRate{From: from, To: to, Rate: 1.0}, nil
}

func flightTier(perDayBudgetCents int64) string {
	switch {
	case perDayBudgetCents < 50000:
		return "economy"
	case perDayBudgetCents < 150000:
		return "premium"
	default:
		return "business"
	}
}

func tierFlightCost(tier string) int64 {
	switch tier {
	case "economy":
		return 45000
	case "premium":
		return 90000
	default:
		return 180000
	}
}

func lodgingTier(perDayBudgetCents int64) string {
	switch {
	case perDayBudgetCents < 20000:
		return "budget"
	case perDayBudgetCents < 40000:
		return "midscale"
	default:
		return "upscale"
	}
}

func tierLodgingCost(tier string) int64 {
	switch tier {
	case "budget":
		return 8000
	case "midscale":
		return 18000
	default:
		return 35000
	}
}

var (
	_ toolexec.FlightAdapter     = (*Adapters)(nil)
	_ toolexec.LodgingAdapter    = (*Adapters)(nil)
	_ toolexec.AttractionAdapter = (*Adapters)(nil)
	_ toolexec.TransitAdapter    = (*Adapters)(nil)
	_ toolexec.WeatherAdapter    = (*Adapters)(nil)
	_ toolexec.FXAdapter         = (*Adapters)(nil)
)

// ToToolexecAdapters bundles Adapters into the toolexec.Adapters
// struct the ToolExec stage consumes.
func (a *Adapters) ToToolexecAdapters() toolexec.Adapters {
	return toolexec.Adapters{
		Flight:     a,
		Lodging:    a,
		Attraction: a,
		Transit:    a,
		Weather:    a,
		FX:         a,
	}
}
