package resilience

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/voyager-core/metrics"
)

// countingFacade records how many times each metric call fires, so
// tests can assert on transition-only vs. per-call emission.
type countingFacade struct {
	metrics.NoOp

	mu          sync.Mutex
	breakerOpen int
	states      []string
}

func (f *countingFacade) IncBreakerOpen(ctx context.Context, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breakerOpen++
}

func (f *countingFacade) SetBreakerState(ctx context.Context, name, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
}

// fakeClock is a manually-advanced Clock for deterministic breaker and
// retry tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock { return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)} }

func testBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{Name: name, FailureThreshold: 3, Window: time.Minute, Cooldown: 30 * time.Second}
}

func TestBreakerStaysClosedUnderThreshold(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(testBreakerConfig("t"), clock)

	for i := 0; i < 2; i++ {
		gate := b.Check(context.Background())
		require.Equal(t, Allow, gate.Decision)
		b.Complete(context.Background(), false)
	}
	assert.Equal(t, Closed, b.State())
}

func TestBreakerTripsAtThreshold(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(testBreakerConfig("t"), clock)

	for i := 0; i < 3; i++ {
		gate := b.Check(context.Background())
		require.Equal(t, Allow, gate.Decision)
		b.Complete(context.Background(), false)
	}
	assert.Equal(t, Open, b.State())

	gate := b.Check(context.Background())
	assert.Equal(t, RejectOpen, gate.Decision)
	assert.Equal(t, 30*time.Second, gate.RetryAfter)
}

func TestBreakerGrantsSingleProbeAfterCooldown(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(testBreakerConfig("t"), clock)
	for i := 0; i < 3; i++ {
		b.Check(context.Background())
		b.Complete(context.Background(), false)
	}
	require.Equal(t, Open, b.State())

	clock.Advance(31 * time.Second)
	gate := b.Check(context.Background())
	assert.Equal(t, Allow, gate.Decision)
	assert.True(t, gate.ProbeGranted)
	assert.Equal(t, HalfOpen, b.State())

	// A second concurrent caller must be rejected: only one probe in flight.
	second := b.Check(context.Background())
	assert.Equal(t, RejectOpen, second.Decision)
}

func TestBreakerHalfOpenSuccessCloses(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(testBreakerConfig("t"), clock)
	for i := 0; i < 3; i++ {
		b.Check(context.Background())
		b.Complete(context.Background(), false)
	}
	clock.Advance(31 * time.Second)
	gate := b.Check(context.Background())
	require.True(t, gate.ProbeGranted)

	b.Complete(context.Background(), true)
	assert.Equal(t, Closed, b.State())

	// Breaker is usable again immediately.
	again := b.Check(context.Background())
	assert.Equal(t, Allow, again.Decision)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(testBreakerConfig("t"), clock)
	for i := 0; i < 3; i++ {
		b.Check(context.Background())
		b.Complete(context.Background(), false)
	}
	clock.Advance(31 * time.Second)
	gate := b.Check(context.Background())
	require.True(t, gate.ProbeGranted)

	b.Complete(context.Background(), false)
	assert.Equal(t, Open, b.State())

	rejected := b.Check(context.Background())
	assert.Equal(t, RejectOpen, rejected.Decision)
}

func TestBreakerClosedSuccessDecaysFailureCount(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker(testBreakerConfig("t"), clock)
	b.Check(context.Background())
	b.Complete(context.Background(), false)
	b.Check(context.Background())
	b.Complete(context.Background(), false)
	// Two failures recorded; one success should bring it back to one,
	// so a third failure alone should not yet trip the breaker.
	b.Check(context.Background())
	b.Complete(context.Background(), true)
	b.Check(context.Background())
	b.Complete(context.Background(), false)
	assert.Equal(t, Closed, b.State())
}

func TestBreakerIncrementsOpenCounterOnlyOnTransitionNotPerRejectedCall(t *testing.T) {
	clock := newFakeClock()
	facade := &countingFacade{}
	cfg := testBreakerConfig("t")
	cfg.Metrics = facade
	b := NewBreaker(cfg, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Check(ctx)
		b.Complete(ctx, false)
	}
	require.Equal(t, Open, b.State())
	assert.Equal(t, 1, facade.breakerOpen, "one open transition so far")

	// Further calls while still open must not increment the counter again.
	b.Check(ctx)
	b.Check(ctx)
	assert.Equal(t, 1, facade.breakerOpen, "rejected calls against an already-open breaker must not double-count")
}

func TestBreakerPublishesStateOnEveryTransition(t *testing.T) {
	clock := newFakeClock()
	facade := &countingFacade{}
	cfg := testBreakerConfig("t")
	cfg.Metrics = facade
	b := NewBreaker(cfg, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Check(ctx)
		b.Complete(ctx, false)
	}
	clock.Advance(31 * time.Second)
	b.Check(ctx) // open -> half_open
	b.Complete(ctx, true) // half_open -> closed

	assert.Equal(t, []string{"open", "half_open", "closed"}, facade.states)
}

func TestRegistryLazilyCreatesPerName(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry(clock, func(name string) BreakerConfig { return testBreakerConfig(name) })

	a := reg.Get("flights")
	b := reg.Get("flights")
	c := reg.Get("lodging")

	assert.Same(t, a, b, "same name must return the same breaker instance")
	assert.NotSame(t, a, c)
}

func TestBreakerOpenErrorMessage(t *testing.T) {
	err := &BreakerOpenError{Name: "flights", RetryAfterSeconds: 12}
	assert.Contains(t, err.Error(), "flights")
	assert.Contains(t, err.Error(), "12")
}
