// Package toolexec populates RunState's tool-result dictionaries using
// the resilience executor, and maps raw tool-result fields into the
// ChoiceFeatures the selector and verifiers are allowed to read.
package toolexec

import (
	"context"

	"github.com/itsneelabh/voyager-core/core"
)

// FlightAdapter fetches flight options for an origin/destination pair
// within a window, tier-banded by per-day budget.
type FlightAdapter interface {
	FetchFlights(ctx context.Context, origin, destination string, window core.DateWindow, avoidOvernight bool, perDayBudgetCents int64) ([]core.FlightOption, error)
}

// LodgingAdapter fetches lodging options similarly tier-banded.
type LodgingAdapter interface {
	FetchLodging(ctx context.Context, city string, window core.DateWindow, perDayBudgetCents int64) ([]core.LodgingOption, error)
}

// AttractionAdapter resolves a single attraction by option_ref,
// enriching from knowledge sources when available.
type AttractionAdapter interface {
	FetchAttraction(ctx context.Context, optionRef string, city string) (core.Attraction, error)
}

// TransitAdapter fetches a transit leg between two points.
type TransitAdapter interface {
	FetchTransit(ctx context.Context, from, to string) (core.TransitLeg, error)
}

// WeatherAdapter fetches one forecast day.
type WeatherAdapter interface {
	FetchWeather(ctx context.Context, city string, date core.DateWindow) (core.WeatherDay, error)
}

// FXAdapter fetches a currency conversion rate.
type FXAdapter interface {
	FetchFX(ctx context.Context, from, to string) (core.FXRate, error)
}

// Adapters bundles the six domain collaborators the ToolExec stage
// consumes.
type Adapters struct {
	Flight     FlightAdapter
	Lodging    LodgingAdapter
	Attraction AttractionAdapter
	Transit    TransitAdapter
	Weather    WeatherAdapter
	FX         FXAdapter
}
