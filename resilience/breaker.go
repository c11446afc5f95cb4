package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itsneelabh/voyager-core/logging"
	"github.com/itsneelabh/voyager-core/metrics"
)

// BreakerState is the circuit breaker's state machine: closed, open,
// half_open.
type BreakerState int

const (
	Closed BreakerState = iota
	Open
	HalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures one named breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold int
	Window           time.Duration
	Cooldown         time.Duration
	Logger           logging.Logger
	Metrics          metrics.Facade
}

// Breaker is a single per-tool circuit breaker. State mutates only
// inside Check/Complete, both under mu, so that
// concurrent callers sharing the same tool name serialize updates.
type Breaker struct {
	cfg   BreakerConfig
	clock Clock

	mu        sync.Mutex
	state     BreakerState
	failures  int
	openedAt  time.Time
	halfOpenInFlight bool
}

// NewBreaker creates a breaker in the closed state.
func NewBreaker(cfg BreakerConfig, clock Clock) *Breaker {
	if cfg.Logger == nil {
		cfg.Logger = logging.NoOp{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoOp{}
	}
	return &Breaker{cfg: cfg, clock: clock, state: Closed}
}

// Decision is what Allow tells the caller to do.
type Decision int

const (
	Allow Decision = iota
	RejectOpen
)

// RetryAfter is populated on RejectOpen, rounded up to whole seconds
// for the retry_after_seconds contract callers surface to clients.
type Gate struct {
	Decision   Decision
	RetryAfter time.Duration
	ProbeGranted bool
}

// Check evaluates whether a call may proceed, transitioning open→half_open
// once the cooldown has elapsed and granting the single probe. It does not
// record outcomes; call Complete with the result afterward.
func (b *Breaker) Check(ctx context.Context) Gate {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return Gate{Decision: Allow}
	case Open:
		elapsed := b.clock.Now().Sub(b.openedAt)
		if elapsed < b.cfg.Cooldown {
			remaining := b.cfg.Cooldown - elapsed
			return Gate{Decision: RejectOpen, RetryAfter: ceilSeconds(remaining)}
		}
		// Cooldown elapsed: move to half-open and grant the single probe.
		b.transition(ctx, HalfOpen)
		b.halfOpenInFlight = true
		return Gate{Decision: Allow, ProbeGranted: true}
	case HalfOpen:
		if b.halfOpenInFlight {
			// Only one probe is allowed in flight at a time.
			remaining := b.cfg.Cooldown
			return Gate{Decision: RejectOpen, RetryAfter: ceilSeconds(remaining)}
		}
		b.halfOpenInFlight = true
		return Gate{Decision: Allow, ProbeGranted: true}
	default:
		return Gate{Decision: Allow}
	}
}

func ceilSeconds(d time.Duration) time.Duration {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return secs * time.Second
}

// Complete records the outcome of a gated call and applies the
// breaker-update rules from §4.1 step 5.
func (b *Breaker) Complete(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.halfOpenInFlight = false
		if success {
			b.failures = 0
			b.transition(ctx, Closed)
		} else {
			b.failures = b.cfg.FailureThreshold
			b.openedAt = b.clock.Now()
			b.transition(ctx, Open)
		}
	case Closed:
		if success {
			if b.failures > 0 {
				b.failures--
			}
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.openedAt = b.clock.Now()
			b.transition(ctx, Open)
		}
	case Open:
		// A call should not complete while open (Check would have
		// rejected it), but guard defensively against races.
		if !success {
			b.openedAt = b.clock.Now()
		}
	}
}

// transition is the single place a breaker's state actually changes,
// so it is also the single place that logs and publishes the change:
// every transition sets the observable breaker-state gauge, and an
// open transition additionally increments the open-events counter.
func (b *Breaker) transition(ctx context.Context, to BreakerState) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.cfg.Logger.Info("circuit breaker state change", map[string]interface{}{
		"breaker": b.cfg.Name,
		"from":    from.String(),
		"to":      to.String(),
	})
	b.cfg.Metrics.SetBreakerState(ctx, b.cfg.Name, to.String())
	if to == Open {
		b.cfg.Metrics.IncBreakerOpen(ctx, b.cfg.Name)
	}
}

// State returns the breaker's current state for observability.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Registry is a process-wide keyed map of per-tool breakers, created
// lazily on first use.
type Registry struct {
	cfg   func(name string) BreakerConfig
	clock Clock

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry builds a Registry that derives each new breaker's config
// from cfgFn, called once per distinct tool name.
func NewRegistry(clock Clock, cfgFn func(name string) BreakerConfig) *Registry {
	return &Registry{cfg: cfgFn, clock: clock, breakers: map[string]*Breaker{}}
}

// Get returns the named breaker, creating it if necessary.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(r.cfg(name), r.clock)
	r.breakers[name] = b
	return b
}

// BreakerOpenError is the synthetic error surfaced when a call is
// short-circuited by an open breaker.
type BreakerOpenError struct {
	Name              string
	RetryAfterSeconds int
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %q, retry after %ds", e.Name, e.RetryAfterSeconds)
}
