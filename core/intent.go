package core

import "time"

// DateWindow is an inclusive start/end date range in an IANA zone.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Zone  string    `json:"zone"`
}

// Days returns the inclusive day count of the window.
func (w DateWindow) Days() int {
	loc, err := time.LoadLocation(w.Zone)
	if err != nil {
		loc = time.UTC
	}
	start := w.Start.In(loc).Truncate(24 * time.Hour)
	end := w.End.In(loc).Truncate(24 * time.Hour)
	return int(end.Sub(start).Hours()/24) + 1
}

// TimeWindow is a zone-naive clock range within a single day, resolved
// against a date and the intent's zone when arithmetic is needed.
type TimeWindow struct {
	Start time.Duration `json:"start"` // offset from midnight
	End   time.Duration `json:"end"`
}

// LockedSlot pins a specific activity into a specific day/time range,
// overriding planner generation for that slot.
type LockedSlot struct {
	DayOffset   int        `json:"day_offset"`
	TimeWindow  TimeWindow `json:"time_window"`
	ActivityRef string     `json:"activity_ref"`
}

// Preferences carries the soft and hard constraints the verifier suite
// checks against the selected plan.
type Preferences struct {
	KidFriendly    bool         `json:"kid_friendly"`
	Themes         []string     `json:"themes"`
	AvoidOvernight bool         `json:"avoid_overnight"`
	LockedSlots    []LockedSlot `json:"locked_slots"`
}

// Intent is the normalized, validated user request that seeds planning.
type Intent struct {
	City        string      `json:"city"`
	Window      DateWindow  `json:"window"`
	BudgetCents int64       `json:"budget_cents"`
	Airports    []string    `json:"airports"`
	Preferences Preferences `json:"preferences"`
}
