// Package core defines the domain model shared across every stage of
// the pipeline: Intent, Plan, Choice, Provenance, tool-result records,
// Violation, RunState and Itinerary. These types are deliberately free
// of behavior beyond small invariant-preserving constructors; stage
// packages (planning, selecting, verifying, ...) operate on them.
package core

import "encoding/json"

// TriState models a boolean that can also be Unknown, used wherever the
// domain distinguishes "no" from "we don't know" (indoor, kid_friendly).
// It marshals to JSON true|false|null, matching the wire format called
// for by the data model.
type TriState int

const (
	Unknown TriState = iota
	Yes
	No
)

func BoolToTri(b bool) TriState {
	if b {
		return Yes
	}
	return No
}

func (t TriState) IsYes() bool     { return t == Yes }
func (t TriState) IsNo() bool      { return t == No }
func (t TriState) IsUnknown() bool { return t == Unknown }

// Score returns the {true:1, false:-1, unknown:0} mapping used by the
// selector's indoor_pref aggregate.
func (t TriState) Score() float64 {
	switch t {
	case Yes:
		return 1
	case No:
		return -1
	default:
		return 0
	}
}

func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*t = Unknown
		return nil
	}
	if *v {
		*t = Yes
	} else {
		*t = No
	}
	return nil
}
