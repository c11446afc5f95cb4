package resilience

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/itsneelabh/voyager-core/logging"
	"github.com/itsneelabh/voyager-core/metrics"
)

// Status is the terminal status of an execute call.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusTimeout     Status = "timeout"
	StatusCancelled   Status = "cancelled"
	StatusBreakerOpen Status = "breaker_open"
)

// ResultError is the structured error shape carried on a non-success
// Result.
type ResultError struct {
	Reason            string `json:"reason"`
	Type              string `json:"type,omitempty"`
	Message           string `json:"message,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// Result is the executor's terminal record for one execute call.
type Result struct {
	Status    Status
	Data      map[string]interface{}
	Error     *ResultError
	FromCache bool
	LatencyMS float64
	Retries   int
}

// Tool is a callable an Executor can invoke. It must be
// deterministic for cache-keying purposes; the executor does not
// verify this, per the narrow tool-callable contract.
type Tool func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// RetryableError is implemented by tool errors that carry an explicit
// recoverable type (ConnectionError/TimeoutError/TemporaryError).
type RetryableError interface {
	error
	RetryType() string
}

// typedError is a convenience implementation of RetryableError for
// adapters that want to mark a failure as retryable without defining
// their own type.
type typedError struct {
	kind string
	err  error
}

func (e *typedError) Error() string     { return e.err.Error() }
func (e *typedError) Unwrap() error     { return e.err }
func (e *typedError) RetryType() string { return e.kind }

// NewRetryableError wraps err as a retryable failure of the given kind
// (one of ConnectionError, TimeoutError, TemporaryError).
func NewRetryableError(kind string, err error) error {
	return &typedError{kind: kind, err: err}
}

// CachePolicy controls whether and for how long a result is cached.
type CachePolicy struct {
	Enabled    bool
	TTLSeconds int
}

// CancelToken is a one-way cancellation flag shared by caller and
// executor, observable at preflight, between attempts, and during
// backoff.
type CancelToken struct {
	ch chan struct{}
}

// NewCancelToken returns a token that has not fired.
func NewCancelToken() *CancelToken { return &CancelToken{ch: make(chan struct{})} }

// Cancel trips the token. Safe to call more than once.
func (t *CancelToken) Cancel() {
	select {
	case <-t.ch:
	default:
		close(t.ch)
	}
}

// Cancelled reports whether the token has tripped.
func (t *CancelToken) Cancelled() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the token trips, for use in select.
func (t *CancelToken) Done() <-chan struct{} { return t.ch }

// Executor is the process-wide tool executor described by §4.1: a
// single execute operation composing cancellation, cache, breaker,
// retry, and metrics in a fixed order.
type Executor struct {
	clock        Clock
	cache        Cache
	breakers     *Registry
	soft         time.Duration
	jitter       JitterBounds
	logger       logging.Logger
	metrics      metrics.Facade
}

// ExecutorConfig configures a new Executor.
type ExecutorConfig struct {
	Clock            Clock
	Cache            Cache
	SoftTimeout      time.Duration
	JitterMin        time.Duration
	JitterMax        time.Duration
	BreakerThreshold int
	BreakerWindow    time.Duration
	BreakerCooldown  time.Duration
	Logger           logging.Logger
	Metrics          metrics.Facade
}

// NewExecutor builds an Executor from cfg, defaulting to no-op logging
// and metrics and a real clock when unset.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NoOp{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoOp{}
	}
	e := &Executor{
		clock:   cfg.Clock,
		cache:   cfg.Cache,
		soft:    cfg.SoftTimeout,
		jitter:  JitterBounds{Min: cfg.JitterMin, Max: cfg.JitterMax},
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	e.breakers = NewRegistry(cfg.Clock, func(name string) BreakerConfig {
		return BreakerConfig{
			Name:             name,
			FailureThreshold: cfg.BreakerThreshold,
			Window:           cfg.BreakerWindow,
			Cooldown:         cfg.BreakerCooldown,
			Logger:           cfg.Logger,
			Metrics:          cfg.Metrics,
		}
	})
	return e
}

// CacheKey computes sha256(canonical_json({tool, args})), the exact
// key construction named by §4.1 step 2: sorted keys, compact
// separators, independent of argument insertion order.
func CacheKey(name string, args map[string]interface{}) (string, error) {
	canon, err := canonicalJSON(map[string]interface{}{"tool": name, "args": args})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON renders v with sorted object keys and compact
// separators, matching the wire-format contract in §6.
func canonicalJSON(v interface{}) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// normalize round-trips v through encoding/json so that map[string]any
// values produce deterministic, sorted-key output: Go's encoding/json
// already sorts map keys on Marshal, so normalize only needs to ensure
// nested values are plain maps/slices rather than typed structs with
// field-order-dependent tags.
func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return sortedCopy(out), nil
}

func sortedCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{}, len(t))
		for _, k := range keys {
			out[k] = sortedCopy(t[k])
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = sortedCopy(e)
		}
		return out
	default:
		return t
	}
}

// Execute runs tool name with args under the full resilience
// composition: cancellation preflight, cache lookup, breaker gate,
// bounded retry, breaker update, cache write-back, metrics emission.
func (e *Executor) Execute(ctx context.Context, name string, tool Tool, args map[string]interface{}, cachePolicy CachePolicy, cancel *CancelToken) Result {
	start := e.clock.Now()

	// 1. Cancellation preflight.
	if cancel != nil && cancel.Cancelled() {
		e.metrics.IncToolErrors(ctx, name, "cancelled")
		return Result{Status: StatusCancelled, LatencyMS: 0}
	}

	key, keyErr := CacheKey(name, args)

	// 2. Cache lookup.
	if cachePolicy.Enabled && e.cache != nil && keyErr == nil {
		if entry, ok, err := e.cache.Get(ctx, key); err == nil && ok {
			e.metrics.IncToolCacheHit(ctx, name)
			data, _ := entry.Data.(map[string]interface{})
			res := Result{Status: StatusSuccess, Data: data, FromCache: true, LatencyMS: msSince(e.clock, start)}
			e.metrics.ObserveToolLatency(ctx, name, string(res.Status), res.LatencyMS)
			return res
		}
	}

	// 3. Breaker gate.
	breaker := e.breakers.Get(name)
	gate := breaker.Check(ctx)
	if gate.Decision == RejectOpen {
		e.metrics.IncToolErrors(ctx, name, "breaker_open")
		res := Result{
			Status: StatusBreakerOpen,
			Error: &ResultError{
				Reason:            "breaker_open",
				RetryAfterSeconds: int(gate.RetryAfter / time.Second),
			},
			LatencyMS: msSince(e.clock, start),
		}
		e.metrics.ObserveToolLatency(ctx, name, string(res.Status), res.LatencyMS)
		return res
	}

	// 4. Attempt loop (max_retries = 1).
	const maxRetries = 1
	var (
		attemptResult             Result
		intermediateErrorRecorded bool
		retries                   int
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if cancel != nil && cancel.Cancelled() {
			attemptResult = Result{Status: StatusCancelled}
			break
		}

		attemptResult = e.attemptOnce(ctx, name, tool, args)

		if attemptResult.Status == StatusSuccess {
			break
		}

		reason := ""
		if attemptResult.Error != nil {
			reason = attemptResult.Error.Type
			if reason == "" {
				reason = attemptResult.Error.Reason
			}
		}
		retryable := attemptResult.Status == StatusTimeout || isRetryableReason(reason)
		isLastAttempt := attempt == maxRetries

		if !isLastAttempt {
			e.metrics.IncToolErrors(ctx, name, orDefault(reason, string(attemptResult.Status)))
			intermediateErrorRecorded = true
		}

		if !retryable || isLastAttempt {
			break
		}

		delay := seededJitter(name, attempt, e.jitter)
		if err := cancellableSleep(ctx, e.clock, delay); err != nil {
			attemptResult = Result{Status: StatusCancelled}
			break
		}
		retries++
	}

	result := attemptResult
	result.LatencyMS = msSince(e.clock, start)
	result.Retries = retries

	// 5. Breaker update.
	switch result.Status {
	case StatusSuccess:
		breaker.Complete(ctx, true)
	case StatusCancelled:
		// Cancellation does not count against the breaker.
	default:
		breaker.Complete(ctx, false)
	}

	if result.Retries > 0 {
		e.metrics.IncToolRetries(ctx, name, result.Retries)
	}

	// 6. Cache write-back.
	if result.Status == StatusSuccess && cachePolicy.Enabled && e.cache != nil && keyErr == nil && !result.FromCache {
		_ = e.cache.Set(ctx, key, CacheEntry{Data: result.Data}, cachePolicy.TTLSeconds)
	}

	// 7. Metrics emission.
	e.metrics.ObserveToolLatency(ctx, name, string(result.Status), result.LatencyMS)
	if result.Status != StatusSuccess && !intermediateErrorRecorded {
		reason := string(result.Status)
		if result.Error != nil && result.Error.Reason != "" {
			reason = result.Error.Reason
		}
		e.metrics.IncToolErrors(ctx, name, reason)
	}

	return result
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// attemptOnce invokes the tool under the soft timeout.
func (e *Executor) attemptOnce(ctx context.Context, name string, tool Tool, args map[string]interface{}) Result {
	attemptCtx, cancel := context.WithTimeout(ctx, e.soft)
	defer cancel()

	type outcome struct {
		data map[string]interface{}
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panic: %v", r)}
			}
		}()
		data, err := tool(attemptCtx, args)
		done <- outcome{data: data, err: err}
	}()

	select {
	case o := <-done:
		if o.err == nil {
			return Result{Status: StatusSuccess, Data: o.data}
		}
		if rerr, ok := o.err.(RetryableError); ok {
			return Result{Status: StatusError, Error: &ResultError{Reason: "error", Type: rerr.RetryType(), Message: o.err.Error()}}
		}
		return Result{Status: StatusError, Error: &ResultError{Reason: "error", Message: o.err.Error()}}
	case <-attemptCtx.Done():
		return Result{Status: StatusTimeout, Error: &ResultError{Reason: "timeout", Type: "TimeoutError"}}
	}
}

func msSince(clock Clock, start time.Time) float64 {
	return float64(clock.Now().Sub(start)) / float64(time.Millisecond)
}
