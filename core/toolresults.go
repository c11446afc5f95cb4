package core

import "time"

// OpenWindow is a single zone-aware open/close pair within a day,
// supporting venues with split hours (e.g. closed for lunch).
type OpenWindow struct {
	Open  time.Duration `json:"open"`  // offset from midnight, local to the venue's zone
	Close time.Duration `json:"close"`
}

// OpeningHours indexes a week of OpenWindow lists by weekday, 0=Monday.
type OpeningHours [7][]OpenWindow

// FlightOption is a fetched/fixture flight record.
type FlightOption struct {
	OptionRef  string     `json:"option_ref"`
	Origin     string     `json:"origin"`
	Destination string    `json:"destination"`
	Depart     time.Time  `json:"depart"`
	Arrive     time.Time  `json:"arrive"`
	CostCents  int64      `json:"cost_cents"`
	Overnight  bool       `json:"overnight"`
	Provenance Provenance `json:"provenance"`
}

// LodgingOption is a fetched/fixture lodging record.
type LodgingOption struct {
	OptionRef      string     `json:"option_ref"`
	Name           string     `json:"name"`
	PricePerNight  int64      `json:"price_per_night_cents"`
	Tier           string     `json:"tier"`
	Lat, Lon       float64    `json:"-"`
	Provenance     Provenance `json:"provenance"`
}

// Attraction is a fetched/fixture attraction record.
type Attraction struct {
	OptionRef    string       `json:"option_ref"`
	Name         string       `json:"name"`
	Themes       []string     `json:"themes"`
	Indoor       TriState     `json:"indoor"`
	KidFriendly  TriState     `json:"kid_friendly"`
	OpeningHours OpeningHours `json:"opening_hours"`
	Notes        string       `json:"notes,omitempty"`
	Provenance   Provenance   `json:"provenance"`
}

// TransitLeg is a fetched/fixture transit segment.
type TransitLeg struct {
	OptionRef  string        `json:"option_ref"`
	Mode       string        `json:"mode"`
	Duration   time.Duration `json:"duration"`
	CostCents  int64         `json:"cost_cents"`
	Provenance Provenance    `json:"provenance"`
}

// WeatherDay is a single forecast day.
type WeatherDay struct {
	Date       time.Time  `json:"date"`
	PrecipProb float64    `json:"precip_prob"`
	WindKMH    float64    `json:"wind_kmh"`
	Provenance Provenance `json:"provenance"`
}

// FXRate is a fetched/fixture currency conversion rate.
type FXRate struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	Rate       float64    `json:"rate"`
	Provenance Provenance `json:"provenance"`
}
