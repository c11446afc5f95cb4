package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOTel(t *testing.T) (*OTel, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("voyager-core-test")
	return NewOTel(meter), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func metricNames(rm metricdata.ResourceMetrics) []string {
	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names = append(names, m.Name)
		}
	}
	return names
}

func TestOTelRecordsToolLatency(t *testing.T) {
	o, reader := newTestOTel(t)
	ctx := context.Background()

	o.ObserveToolLatency(ctx, "weather", "success", 42.0)

	rm := collect(t, reader)
	assert.Contains(t, metricNames(rm), "tool.latency")
}

func TestOTelLazilyCreatesInstrumentOnce(t *testing.T) {
	o, _ := newTestOTel(t)
	ctx := context.Background()

	o.IncToolErrors(ctx, "flights", "timeout")
	o.IncToolErrors(ctx, "flights", "timeout")

	assert.Len(t, o.counters, 1, "repeated calls for the same metric name must reuse one instrument")
}

func TestOTelEmitsEveryFacadeMetricWithoutPanicking(t *testing.T) {
	o, reader := newTestOTel(t)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		o.ObserveToolLatency(ctx, "t", "success", 1)
		o.IncToolRetries(ctx, "t", 1)
		o.IncToolErrors(ctx, "t", "timeout")
		o.IncToolCacheHit(ctx, "t")
		o.IncBreakerOpen(ctx, "t")
		o.SetBreakerState(ctx, "t", "open")
		o.ObserveBudgetDelta(ctx, 1000, 1200)
		o.IncViolation(ctx, "budget_exceeded")
		o.IncWeatherBlocking(ctx)
		o.IncWeatherAdvisory(ctx)
		o.IncFeasibilityViolation(ctx, "insufficient_gap")
		o.IncPrefViolation(ctx, "kid_friendly")
		o.ObserveRepairCycles(ctx, 2)
		o.ObserveRepairMoves(ctx, 3)
		o.ObserveRepairReuseRatio(ctx, 0.8)
		o.IncRepairSuccess(ctx)
		o.IncRepairAttempt(ctx)
		o.ObserveSynthesisLatency(ctx, 12.5)
		o.ObserveCitationCoverage(ctx, 3, 4)
	})

	rm := collect(t, reader)
	assert.NotEmpty(t, metricNames(rm))
}
