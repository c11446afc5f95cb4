// Package metrics defines the in-process metrics façade the pipeline
// invokes at each stage: a thin wrapper lazily creating named
// OpenTelemetry instruments behind a map guarded by a mutex, so
// callers never have to pre-register anything.
package metrics

import "context"

// Facade is the full set of operations the core invokes, per the
// recognized external interface. Implementations must be safe for
// concurrent use by many runs.
type Facade interface {
	ObserveToolLatency(ctx context.Context, name, status string, latencyMS float64)
	IncToolRetries(ctx context.Context, name string, count int)
	IncToolErrors(ctx context.Context, name, reason string)
	IncToolCacheHit(ctx context.Context, name string)

	IncBreakerOpen(ctx context.Context, name string)
	SetBreakerState(ctx context.Context, name, state string)

	ObserveBudgetDelta(ctx context.Context, budget, actual int64)
	IncViolation(ctx context.Context, kind string)
	IncWeatherBlocking(ctx context.Context)
	IncWeatherAdvisory(ctx context.Context)
	IncFeasibilityViolation(ctx context.Context, reason string)
	IncPrefViolation(ctx context.Context, pref string)

	ObserveRepairCycles(ctx context.Context, n int)
	ObserveRepairMoves(ctx context.Context, n int)
	ObserveRepairReuseRatio(ctx context.Context, r float64)
	IncRepairSuccess(ctx context.Context)
	IncRepairAttempt(ctx context.Context)

	ObserveSynthesisLatency(ctx context.Context, ms float64)
	ObserveCitationCoverage(ctx context.Context, citations, claims int)
}
