package core

import "time"

// SourceKind identifies where a piece of data originated.
type SourceKind string

const (
	SourceTool    SourceKind = "tool"
	SourceRAG     SourceKind = "rag"
	SourceUser    SourceKind = "user"
	SourceFixture SourceKind = "fixture"
	SourceRepair  SourceKind = "repair"
	SourcePlanner SourceKind = "planner"
)

// Provenance records where a value came from, for audit and citation.
type Provenance struct {
	Source    SourceKind `json:"source"`
	RefID     string     `json:"ref_id,omitempty"`
	URL       string     `json:"url,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
	CacheHit  TriState   `json:"cache_hit"`
	SHA256    string     `json:"sha256,omitempty"`
}

// IsRecognized reports whether Source is one of the documented kinds.
func (p Provenance) IsRecognized() bool {
	switch p.Source {
	case SourceTool, SourceRAG, SourceUser, SourceFixture, SourceRepair, SourcePlanner:
		return true
	default:
		return false
	}
}
