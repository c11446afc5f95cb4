// Command voyager-run wires the full pipeline against deterministic
// fixtures and runs one trip-planning request end to end, printing the
// resulting itinerary as JSON. It exists to exercise every stage
// together outside of a test binary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/itsneelabh/voyager-core/config"
	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/fixtures"
	"github.com/itsneelabh/voyager-core/logging"
	"github.com/itsneelabh/voyager-core/orchestrating"
	"github.com/itsneelabh/voyager-core/repairing"
	"github.com/itsneelabh/voyager-core/resilience"
	"github.com/itsneelabh/voyager-core/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "voyager-run:", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.New()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	logger := logging.NewJSON(os.Stdout).WithComponent("cmd/voyager-run")

	intent := core.Intent{
		City: "Paris",
		Window: core.DateWindow{
			Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			Zone:  "Europe/Paris",
		},
		BudgetCents: 250000,
		Airports:    []string{"CDG"},
		Preferences: core.Preferences{
			Themes: []string{"art"},
		},
	}
	runID := uuid.NewString()
	rs := core.NewRunState(runID, "demo-org", "demo-user", 0, intent)

	cache := store.NewMemCache()
	executor := resilience.NewExecutor(resilience.ExecutorConfig{
		Cache:            cache,
		SoftTimeout:      settings.SoftTimeout,
		JitterMin:        settings.RetryJitterMin,
		JitterMax:        settings.RetryJitterMax,
		BreakerThreshold: settings.BreakerFailureThreshold,
		BreakerWindow:    settings.BreakerWindow,
		BreakerCooldown:  settings.BreakerCooldown,
		Logger:           logger,
	})

	adapters := fixtures.NewAdapters()
	driver := orchestrating.NewDriver(
		store.NewMemEventSink(),
		store.NewMemRunStore(),
		adapters.ToToolexecAdapters(),
		&repairing.Engine{},
		nil,
		logger,
		settings,
		executor,
	)

	ctx := context.Background()
	if err := driver.Run(ctx, rs); err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rs.Itinerary)
}
