package metrics

import "context"

// NoOp discards every metric. Used by tests and any caller that does
// not wire telemetry.
type NoOp struct{}

func (NoOp) ObserveToolLatency(context.Context, string, string, float64) {}
func (NoOp) IncToolRetries(context.Context, string, int)                {}
func (NoOp) IncToolErrors(context.Context, string, string)              {}
func (NoOp) IncToolCacheHit(context.Context, string)                    {}

func (NoOp) IncBreakerOpen(context.Context, string)        {}
func (NoOp) SetBreakerState(context.Context, string, string) {}

func (NoOp) ObserveBudgetDelta(context.Context, int64, int64)   {}
func (NoOp) IncViolation(context.Context, string)               {}
func (NoOp) IncWeatherBlocking(context.Context)                 {}
func (NoOp) IncWeatherAdvisory(context.Context)                 {}
func (NoOp) IncFeasibilityViolation(context.Context, string)    {}
func (NoOp) IncPrefViolation(context.Context, string)           {}

func (NoOp) ObserveRepairCycles(context.Context, int)         {}
func (NoOp) ObserveRepairMoves(context.Context, int)          {}
func (NoOp) ObserveRepairReuseRatio(context.Context, float64) {}
func (NoOp) IncRepairSuccess(context.Context)                 {}
func (NoOp) IncRepairAttempt(context.Context)                 {}

func (NoOp) ObserveSynthesisLatency(context.Context, float64)       {}
func (NoOp) ObserveCitationCoverage(context.Context, int, int)      {}

var _ Facade = NoOp{}
