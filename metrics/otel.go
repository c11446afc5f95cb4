package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTel is the production Facade, backed by an OpenTelemetry Meter. It
// lazily creates instruments on first use, keyed by name, using a
// double-checked-locking pattern around otel.Meter.
type OTel struct {
	meter metric.Meter

	mu          sync.RWMutex
	counters    map[string]metric.Int64Counter
	floatHists  map[string]metric.Float64Histogram
	floatGauges map[string]metric.Float64ObservableGauge
}

// NewOTel builds a Facade from an OpenTelemetry Meter.
func NewOTel(meter metric.Meter) *OTel {
	return &OTel{
		meter:      meter,
		counters:   map[string]metric.Int64Counter{},
		floatHists: map[string]metric.Float64Histogram{},
	}
}

func (o *OTel) counter(name, desc string) metric.Int64Counter {
	o.mu.RLock()
	c, ok := o.counters[name]
	o.mu.RUnlock()
	if ok {
		return c
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if c, ok := o.counters[name]; ok {
		return c
	}
	c, err := o.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		c, _ = o.meter.Int64Counter(name + "_fallback")
	}
	o.counters[name] = c
	return c
}

func (o *OTel) histogram(name, desc, unit string) metric.Float64Histogram {
	o.mu.RLock()
	h, ok := o.floatHists[name]
	o.mu.RUnlock()
	if ok {
		return h
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if h, ok := o.floatHists[name]; ok {
		return h
	}
	h, err := o.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		h, _ = o.meter.Float64Histogram(name + "_fallback")
	}
	o.floatHists[name] = h
	return h
}

func (o *OTel) ObserveToolLatency(ctx context.Context, name, status string, latencyMS float64) {
	o.histogram("tool.latency", "tool execution latency", "ms").Record(ctx, latencyMS,
		metric.WithAttributes(attribute.String("tool", name), attribute.String("status", status)))
}

func (o *OTel) IncToolRetries(ctx context.Context, name string, count int) {
	o.counter("tool.retries", "tool retry attempts").Add(ctx, int64(count), metric.WithAttributes(attribute.String("tool", name)))
}

func (o *OTel) IncToolErrors(ctx context.Context, name, reason string) {
	o.counter("tool.errors", "tool invocation errors").Add(ctx, 1,
		metric.WithAttributes(attribute.String("tool", name), attribute.String("reason", reason)))
}

func (o *OTel) IncToolCacheHit(ctx context.Context, name string) {
	o.counter("tool.cache_hit", "tool result cache hits").Add(ctx, 1, metric.WithAttributes(attribute.String("tool", name)))
}

func (o *OTel) IncBreakerOpen(ctx context.Context, name string) {
	o.counter("breaker.open", "circuit breaker open transitions").Add(ctx, 1, metric.WithAttributes(attribute.String("tool", name)))
}

func (o *OTel) SetBreakerState(ctx context.Context, name, state string) {
	o.counter("breaker.state", "circuit breaker state transitions").Add(ctx, 1,
		metric.WithAttributes(attribute.String("tool", name), attribute.String("state", state)))
}

func (o *OTel) ObserveBudgetDelta(ctx context.Context, budget, actual int64) {
	o.histogram("budget.delta", "budget vs actual spend delta", "cents").Record(ctx, float64(actual-budget))
}

func (o *OTel) IncViolation(ctx context.Context, kind string) {
	o.counter("violation.count", "verifier violations").Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (o *OTel) IncWeatherBlocking(ctx context.Context) {
	o.counter("weather.blocking", "blocking weather violations").Add(ctx, 1)
}

func (o *OTel) IncWeatherAdvisory(ctx context.Context) {
	o.counter("weather.advisory", "advisory weather violations").Add(ctx, 1)
}

func (o *OTel) IncFeasibilityViolation(ctx context.Context, reason string) {
	o.counter("feasibility.violation", "feasibility violations").Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (o *OTel) IncPrefViolation(ctx context.Context, pref string) {
	o.counter("pref.violation", "preference violations").Add(ctx, 1, metric.WithAttributes(attribute.String("pref", pref)))
}

func (o *OTel) ObserveRepairCycles(ctx context.Context, n int) {
	o.histogram("repair.cycles", "repair cycles run", "1").Record(ctx, float64(n))
}

func (o *OTel) ObserveRepairMoves(ctx context.Context, n int) {
	o.histogram("repair.moves", "repair moves applied", "1").Record(ctx, float64(n))
}

func (o *OTel) ObserveRepairReuseRatio(ctx context.Context, r float64) {
	o.histogram("repair.reuse_ratio", "fraction of slots unchanged by repair", "1").Record(ctx, r)
}

func (o *OTel) IncRepairSuccess(ctx context.Context) {
	o.counter("repair.success", "repair cycles that cleared all blocking violations").Add(ctx, 1)
}

func (o *OTel) IncRepairAttempt(ctx context.Context) {
	o.counter("repair.attempt", "repair invocations").Add(ctx, 1)
}

func (o *OTel) ObserveSynthesisLatency(ctx context.Context, ms float64) {
	o.histogram("synthesis.latency", "synthesizer latency", "ms").Record(ctx, ms)
}

func (o *OTel) ObserveCitationCoverage(ctx context.Context, citations, claims int) {
	ratio := 1.0
	if claims > 0 {
		ratio = float64(citations) / float64(claims)
	}
	o.histogram("synthesis.citation_coverage", "citations divided by claims", "1").Record(ctx, ratio)
}

var _ Facade = (*OTel)(nil)
