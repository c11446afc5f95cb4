package core

import (
	"sync"
	"time"
)

// NodeStatus is the status carried on a node_event emitted by the
// orchestration driver.
type NodeStatus string

const (
	NodeRunning   NodeStatus = "running"
	NodeCompleted NodeStatus = "completed"
	NodeError     NodeStatus = "error"
)

// Message is one entry in RunState's append-only streaming event log.
type Message struct {
	Node    string     `json:"node"`
	Status  NodeStatus `json:"status"`
	TS      time.Time  `json:"ts"`
	Message string     `json:"message,omitempty"`
}

// RepairBookkeeping tracks what the repair engine did to the selected
// plan, retained on RunState for the synthesizer's decision records.
type RepairBookkeeping struct {
	CyclesRun    int
	MovesApplied int
	ReuseRatio   float64
	PreRepair    *Plan
}

// RunState is the canonical state carried through the pipeline for a
// single run. It is exclusively owned by the driver for that run and
// is never shared across runs; its Messages log is append-only and
// must be written under Append to keep the total order guarantee.
type RunState struct {
	TraceID string
	OrgID   string
	UserID  string
	Seed    int64
	Intent  Intent

	SelectedPlan *Plan
	Candidates   []Plan

	Flights     map[string]FlightOption
	Lodgings    map[string]LodgingOption
	Attractions map[string]Attraction
	Transit     map[string]TransitLeg
	Weather     map[string]WeatherDay
	FX          map[string]FXRate

	Violations []Violation

	ToolCallCounts map[string]int

	Repair RepairBookkeeping

	Itinerary *Itinerary

	Done bool

	mu       sync.Mutex
	Messages []Message
}

// NewRunState initializes an empty RunState ready for the driver.
func NewRunState(traceID, orgID, userID string, seed int64, intent Intent) *RunState {
	return &RunState{
		TraceID:        traceID,
		OrgID:          orgID,
		UserID:         userID,
		Seed:           seed,
		Intent:         intent,
		Flights:        map[string]FlightOption{},
		Lodgings:       map[string]LodgingOption{},
		Attractions:    map[string]Attraction{},
		Transit:        map[string]TransitLeg{},
		Weather:        map[string]WeatherDay{},
		FX:             map[string]FXRate{},
		ToolCallCounts: map[string]int{},
	}
}

// Append records a message to the streaming event log, preserving
// append order under concurrent access (the log itself is not shared
// across runs, but a run's own stage may append from a background
// goroutine during tool execution).
func (rs *RunState) Append(msg Message) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.Messages = append(rs.Messages, msg)
}

// MessagesSnapshot returns a copy of the current message log.
func (rs *RunState) MessagesSnapshot() []Message {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]Message, len(rs.Messages))
	copy(out, rs.Messages)
	return out
}

// IncToolCall increments the per-name tool call counter.
func (rs *RunState) IncToolCall(name string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.ToolCallCounts[name]++
}
