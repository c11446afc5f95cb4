// Package planning builds candidate plans from an Intent. Planning is
// a pure function: build_candidate_plans(intent) -> [Plan], with
// 0 < len <= FANOUT, seeded deterministically so repeated runs on
// equal inputs are byte-equal.
package planning

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/itsneelabh/voyager-core/core"
)

// DeriveSeed computes a stable hash over city, window start, budget,
// sorted airports, kid_friendly, and sorted themes. Equal inputs
// always yield the same seed.
func DeriveSeed(intent core.Intent) int64 {
	airports := append([]string(nil), intent.Airports...)
	sort.Strings(airports)
	themes := append([]string(nil), intent.Preferences.Themes...)
	sort.Strings(themes)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%v|%t|%v",
		intent.City,
		intent.Window.Start.Unix(),
		intent.BudgetCents,
		airports,
		intent.Preferences.KidFriendly,
		themes,
	)
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// rng is a minimal deterministic splitmix64-style generator, used only
// to vary per-variant knobs reproducibly from the plan seed, never
// for anything requiring cryptographic quality.
type rng struct{ state uint64 }

func newRNG(seed int64) *rng { return &rng{state: uint64(seed)} }

func (r *rng) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// float64 returns a deterministic value in [0, 1).
func (r *rng) float64() float64 {
	return float64(r.next()>>11) / float64(1<<53)
}
