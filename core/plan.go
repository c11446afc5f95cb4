package core

import "time"

// ChoiceKind tags the domain a Choice belongs to.
type ChoiceKind string

const (
	ChoiceFlight     ChoiceKind = "flight"
	ChoiceLodging    ChoiceKind = "lodging"
	ChoiceAttraction ChoiceKind = "attraction"
	ChoiceTransit    ChoiceKind = "transit"
	ChoiceMeal       ChoiceKind = "meal"
)

// ChoiceFeatures is the only structure the selector and verifiers may
// read for scoring; raw tool-result fields stay off-limits outside the
// feature mapper in the toolexec package.
type ChoiceFeatures struct {
	CostCents    int64         `json:"cost_cents"`
	TravelTime   time.Duration `json:"travel_time,omitempty"`
	HasTravel    bool          `json:"-"`
	Indoor       TriState      `json:"indoor"`
	KidFriendly  TriState      `json:"kid_friendly"`
	Themes       []string      `json:"themes,omitempty"`
}

// Choice is a ranked option for a Slot. The first Choice in a Slot's
// list is selected; the rest are ranked alternatives.
type Choice struct {
	Kind       ChoiceKind     `json:"kind"`
	OptionRef  string         `json:"option_ref"`
	Features   ChoiceFeatures `json:"features"`
	Score      *float64       `json:"score,omitempty"`
	Provenance Provenance     `json:"provenance"`
}

// Slot is a time window within a day assigned to ranked choices; the
// zeroth Choice is selected.
type Slot struct {
	Window  TimeWindow `json:"window"`
	Locked  bool       `json:"locked"`
	Choices []Choice   `json:"choices"`
}

// Selected returns the slot's selected (first) choice. Panics if the
// slot has no choices, which would itself be an invariant violation.
func (s Slot) Selected() Choice { return s.Choices[0] }

// Overlaps reports whether s and other's time windows intersect.
func (s Slot) Overlaps(other Slot) bool {
	return s.Window.Start < other.Window.End && other.Window.Start < s.Window.End
}

// DayPlan is one calendar day's ordered, non-overlapping slots.
type DayPlan struct {
	Date  time.Time `json:"date"`
	Slots []Slot    `json:"slots"`
}

// Assumptions are the per-plan estimation knobs the planner fixes at
// generation time and the verifier/synthesizer read back unchanged.
type Assumptions struct {
	FXRate             float64 `json:"fx_rate"`
	DailySpendCents    int64   `json:"daily_spend_cents"`
	TransitBufferMin   int     `json:"transit_buffer_min"`
	AirportBufferMin   int     `json:"airport_buffer_min"`
}

// Plan is an ordered list of days produced by the planner, scored by
// the selector, and mutated only by the selector (replacement) and the
// repair engine (deep-copied successor) thereafter.
type Plan struct {
	Variant     string      `json:"variant"`
	Days        []DayPlan   `json:"days"`
	Assumptions Assumptions `json:"assumptions"`
	RNGSeed     int64       `json:"rng_seed"`
}

// DeepCopy returns a fully independent copy of the plan, required
// before any in-place mutation by the repair engine.
func (p Plan) DeepCopy() Plan {
	out := Plan{Variant: p.Variant, Assumptions: p.Assumptions, RNGSeed: p.RNGSeed}
	out.Days = make([]DayPlan, len(p.Days))
	for di, d := range p.Days {
		nd := DayPlan{Date: d.Date}
		nd.Slots = make([]Slot, len(d.Slots))
		for si, s := range d.Slots {
			ns := Slot{Window: s.Window, Locked: s.Locked}
			ns.Choices = make([]Choice, len(s.Choices))
			copy(ns.Choices, s.Choices)
			for ci := range ns.Choices {
				if len(ns.Choices[ci].Features.Themes) > 0 {
					themes := make([]string, len(ns.Choices[ci].Features.Themes))
					copy(themes, ns.Choices[ci].Features.Themes)
					ns.Choices[ci].Features.Themes = themes
				}
			}
			nd.Slots[si] = ns
		}
		out.Days[di] = nd
	}
	return out
}
