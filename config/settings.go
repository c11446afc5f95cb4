// Package config defines the single settings object that enumerates
// every tunable knob the pipeline recognizes, following a three-layer
// precedence: defaults, then environment variables, then functional
// options.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings enumerates every tunable recognized by the core, per §6.
type Settings struct {
	SoftTimeout time.Duration `yaml:"soft_timeout_s" env:"VOYAGER_SOFT_TIMEOUT_S"`
	HardTimeout time.Duration `yaml:"hard_timeout_s" env:"VOYAGER_HARD_TIMEOUT_S"`

	RetryJitterMin time.Duration `yaml:"retry_jitter_min_ms" env:"VOYAGER_RETRY_JITTER_MIN_MS"`
	RetryJitterMax time.Duration `yaml:"retry_jitter_max_ms" env:"VOYAGER_RETRY_JITTER_MAX_MS"`

	BreakerFailureThreshold int           `yaml:"breaker_failure_threshold" env:"VOYAGER_BREAKER_FAILURE_THRESHOLD"`
	BreakerWindow           time.Duration `yaml:"breaker_window_seconds" env:"VOYAGER_BREAKER_WINDOW_SECONDS"`
	BreakerCooldown         time.Duration `yaml:"breaker_cooldown_seconds" env:"VOYAGER_BREAKER_COOLDOWN_SECONDS"`

	FXTTL      time.Duration `yaml:"fx_ttl_hours" env:"VOYAGER_FX_TTL_HOURS"`
	WeatherTTL time.Duration `yaml:"weather_ttl_hours" env:"VOYAGER_WEATHER_TTL_HOURS"`

	AirportBufferMin time.Duration `yaml:"airport_buffer_min" env:"VOYAGER_AIRPORT_BUFFER_MIN"`
	TransitBufferMin time.Duration `yaml:"transit_buffer_min" env:"VOYAGER_TRANSIT_BUFFER_MIN"`
	MuseumBufferMin  time.Duration `yaml:"museum_buffer_min" env:"VOYAGER_MUSEUM_BUFFER_MIN"`
	LastTrainCutoff  time.Duration `yaml:"last_train_cutoff_min" env:"VOYAGER_LAST_TRAIN_CUTOFF_MIN"`

	ToolCacheTTL time.Duration `yaml:"tool_cache_ttl_hours" env:"VOYAGER_TOOL_CACHE_TTL_HOURS"`

	FanoutCap int `yaml:"fanout_cap" env:"VOYAGER_FANOUT_CAP"`

	TTFEBudget   time.Duration `yaml:"ttfe_budget_ms" env:"VOYAGER_TTFE_BUDGET_MS"`
	E2EP50Budget time.Duration `yaml:"e2e_p50_budget_s" env:"VOYAGER_E2E_P50_BUDGET_S"`
	E2EP95Budget time.Duration `yaml:"e2e_p95_budget_s" env:"VOYAGER_E2E_P95_BUDGET_S"`

	EvalRNGSeed int64 `yaml:"eval_rng_seed" env:"VOYAGER_EVAL_RNG_SEED"`
}

// Option mutates a Settings during construction.
type Option func(*Settings)

// Default returns the production-ready defaults from §6.
func Default() *Settings {
	return &Settings{
		SoftTimeout:             2 * time.Second,
		HardTimeout:             4 * time.Second,
		RetryJitterMin:          200 * time.Millisecond,
		RetryJitterMax:          500 * time.Millisecond,
		BreakerFailureThreshold: 5,
		BreakerWindow:           60 * time.Second,
		BreakerCooldown:         30 * time.Second,
		FXTTL:                   24 * time.Hour,
		WeatherTTL:              24 * time.Hour,
		AirportBufferMin:        120 * time.Minute,
		TransitBufferMin:        15 * time.Minute,
		MuseumBufferMin:         20 * time.Minute,
		LastTrainCutoff:         23*time.Hour + 30*time.Minute,
		ToolCacheTTL:            24 * time.Hour,
		FanoutCap:               4,
		TTFEBudget:              800 * time.Millisecond,
		E2EP50Budget:            6 * time.Second,
		E2EP95Budget:            10 * time.Second,
		EvalRNGSeed:             42,
	}
}

// New builds Settings from defaults, then environment variables, then
// the supplied options, in that order of increasing priority.
func New(opts ...Option) (*Settings, error) {
	s := Default()
	if err := s.LoadFromEnv(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFromEnv overlays recognized VOYAGER_* environment variables.
func (s *Settings) LoadFromEnv() error {
	durSeconds := func(env string, dst *time.Duration) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = time.Duration(f * float64(time.Second))
		return nil
	}
	durMillis := func(env string, dst *time.Duration) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = time.Duration(n) * time.Millisecond
		return nil
	}
	durHours := func(env string, dst *time.Duration) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = time.Duration(n) * time.Hour
		return nil
	}
	durMinutes := func(env string, dst *time.Duration) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = time.Duration(n) * time.Minute
		return nil
	}

	for _, step := range []func() error{
		func() error { return durSeconds("VOYAGER_SOFT_TIMEOUT_S", &s.SoftTimeout) },
		func() error { return durSeconds("VOYAGER_HARD_TIMEOUT_S", &s.HardTimeout) },
		func() error { return durMillis("VOYAGER_RETRY_JITTER_MIN_MS", &s.RetryJitterMin) },
		func() error { return durMillis("VOYAGER_RETRY_JITTER_MAX_MS", &s.RetryJitterMax) },
		func() error { return durSeconds("VOYAGER_BREAKER_WINDOW_SECONDS", &s.BreakerWindow) },
		func() error { return durSeconds("VOYAGER_BREAKER_COOLDOWN_SECONDS", &s.BreakerCooldown) },
		func() error { return durHours("VOYAGER_FX_TTL_HOURS", &s.FXTTL) },
		func() error { return durHours("VOYAGER_WEATHER_TTL_HOURS", &s.WeatherTTL) },
		func() error { return durMinutes("VOYAGER_AIRPORT_BUFFER_MIN", &s.AirportBufferMin) },
		func() error { return durMinutes("VOYAGER_TRANSIT_BUFFER_MIN", &s.TransitBufferMin) },
		func() error { return durMinutes("VOYAGER_MUSEUM_BUFFER_MIN", &s.MuseumBufferMin) },
		func() error { return durMinutes("VOYAGER_LAST_TRAIN_CUTOFF_MIN", &s.LastTrainCutoff) },
		func() error { return durHours("VOYAGER_TOOL_CACHE_TTL_HOURS", &s.ToolCacheTTL) },
		func() error { return durMillis("VOYAGER_TTFE_BUDGET_MS", &s.TTFEBudget) },
		func() error { return durSeconds("VOYAGER_E2E_P50_BUDGET_S", &s.E2EP50Budget) },
		func() error { return durSeconds("VOYAGER_E2E_P95_BUDGET_S", &s.E2EP95Budget) },
	} {
		if err := step(); err != nil {
			return err
		}
	}

	if v := os.Getenv("VOYAGER_BREAKER_FAILURE_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VOYAGER_BREAKER_FAILURE_THRESHOLD: %w", err)
		}
		s.BreakerFailureThreshold = n
	}
	if v := os.Getenv("VOYAGER_FANOUT_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VOYAGER_FANOUT_CAP: %w", err)
		}
		s.FanoutCap = n
	}
	if v := os.Getenv("VOYAGER_EVAL_RNG_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("VOYAGER_EVAL_RNG_SEED: %w", err)
		}
		s.EvalRNGSeed = n
	}
	return nil
}

// LoadFromFile overlays a YAML settings file onto s.
func (s *Settings) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}
	return yaml.Unmarshal(data, s)
}

// Validate checks invariants on the settings object.
func (s *Settings) Validate() error {
	if s.FanoutCap <= 0 {
		return fmt.Errorf("fanout_cap must be positive, got %d", s.FanoutCap)
	}
	if s.RetryJitterMin < 0 || s.RetryJitterMax < s.RetryJitterMin {
		return fmt.Errorf("retry jitter bounds invalid: min=%s max=%s", s.RetryJitterMin, s.RetryJitterMax)
	}
	if s.BreakerFailureThreshold <= 0 {
		return fmt.Errorf("breaker_failure_threshold must be positive, got %d", s.BreakerFailureThreshold)
	}
	return nil
}

// WithFanoutCap overrides the planner's maximum variant count.
func WithFanoutCap(n int) Option { return func(s *Settings) { s.FanoutCap = n } }

// WithSoftTimeout overrides the per-attempt tool timeout.
func WithSoftTimeout(d time.Duration) Option { return func(s *Settings) { s.SoftTimeout = d } }

// WithHardTimeout overrides the whole-execute timeout budget.
func WithHardTimeout(d time.Duration) Option { return func(s *Settings) { s.HardTimeout = d } }

// WithBreaker overrides the circuit breaker's threshold/window/cooldown triple.
func WithBreaker(threshold int, window, cooldown time.Duration) Option {
	return func(s *Settings) {
		s.BreakerFailureThreshold = threshold
		s.BreakerWindow = window
		s.BreakerCooldown = cooldown
	}
}

// WithRetryJitter overrides the backoff jitter bounds.
func WithRetryJitter(min, max time.Duration) Option {
	return func(s *Settings) {
		s.RetryJitterMin = min
		s.RetryJitterMax = max
	}
}

// WithEvalSeed overrides the deterministic seed used by eval harnesses.
func WithEvalSeed(seed int64) Option { return func(s *Settings) { s.EvalRNGSeed = seed } }
