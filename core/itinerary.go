package core

import "time"

// Activity is one scheduled, ordered item on a DayItinerary, tracing
// back to the selected Choice that produced it.
type Activity struct {
	OptionRef string     `json:"option_ref"`
	Kind      ChoiceKind `json:"kind"`
	Name      string     `json:"name"`
	Notes     string     `json:"notes,omitempty"`
	Window    TimeWindow `json:"window"`
}

// DayItinerary is one finalized day of the synthesized itinerary.
type DayItinerary struct {
	Date       time.Time  `json:"date"`
	Activities []Activity `json:"activities"`
}

// CostBreakdown is the synthesizer's categorized spend summary.
type CostBreakdown struct {
	FlightsCents     int64  `json:"flights_cents"`
	LodgingCents     int64  `json:"lodging_cents"`
	AttractionsCents int64  `json:"attractions_cents"`
	TransitCents     int64  `json:"transit_cents"`
	DailySpendCents  int64  `json:"daily_spend_cents"`
	TotalCents       int64  `json:"total_cents"`
	Currency         string `json:"currency_disclaimer"`
}

// Decision is an explanatory record of a stage's choice, surfaced to
// the end user alongside the itinerary.
type Decision struct {
	Stage       string   `json:"stage"`
	Rationale   string   `json:"rationale"`
	Alternatives []string `json:"alternatives_considered,omitempty"`
	Selected    string   `json:"selected"`
}

// Citation pairs a natural-language claim with the Provenance backing
// it, enforcing the synthesizer's "no evidence, no claim" discipline.
type Citation struct {
	Claim      string     `json:"claim"`
	Provenance Provenance `json:"provenance"`
}

// Itinerary is the immutable final artifact of a run, created once by
// the synthesizer and never mutated thereafter.
type Itinerary struct {
	ItineraryID   string         `json:"itinerary_id"`
	Intent        Intent         `json:"intent"`
	Days          []DayItinerary `json:"days"`
	CostBreakdown CostBreakdown  `json:"cost_breakdown"`
	Decisions     []Decision     `json:"decisions"`
	Citations     []Citation     `json:"citations"`
}
