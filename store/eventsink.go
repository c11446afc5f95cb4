package store

import (
	"context"
	"sync"
)

// EventSink is the narrow contract the driver appends node_event
// records to. Heartbeat events are emitted by the external streaming
// collaborator, never by the core.
type EventSink interface {
	Append(ctx context.Context, orgID, runID, kind string, payload map[string]interface{}) error
}

// MemEventSink retains appended events in process memory, primarily
// for tests that want to assert on event ordering.
type MemEventSink struct {
	mu     sync.Mutex
	events []AppendedEvent
}

// AppendedEvent is one record captured by MemEventSink.
type AppendedEvent struct {
	OrgID, RunID, Kind string
	Payload            map[string]interface{}
}

func NewMemEventSink() *MemEventSink { return &MemEventSink{} }

func (s *MemEventSink) Append(ctx context.Context, orgID, runID, kind string, payload map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, AppendedEvent{OrgID: orgID, RunID: runID, Kind: kind, Payload: payload})
	return nil
}

// Events returns a snapshot of everything appended so far, in order.
func (s *MemEventSink) Events() []AppendedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AppendedEvent, len(s.events))
	copy(out, s.events)
	return out
}

var _ EventSink = (*MemEventSink)(nil)
