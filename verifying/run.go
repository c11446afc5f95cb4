package verifying

import (
	"context"

	"github.com/itsneelabh/voyager-core/config"
	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/metrics"
)

// Run executes the four verifiers in order and concatenates their
// violations onto rs.Violations, per §4.5: only the selected choice in
// each slot is considered by any of them.
func Run(ctx context.Context, rs *core.RunState, m metrics.Facade, cfg *config.Settings) {
	rs.Violations = append(rs.Violations, Budget(ctx, rs, m)...)
	rs.Violations = append(rs.Violations, Feasibility(ctx, rs, m, cfg)...)
	rs.Violations = append(rs.Violations, Weather(ctx, rs, m)...)
	rs.Violations = append(rs.Violations, Preferences(ctx, rs, m)...)
}
