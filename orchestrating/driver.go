// Package orchestrating owns the six-stage sequence: Planner ->
// Selector -> ToolExec -> Verifier -> Repair -> Synthesizer, with a
// node_event emitted per stage start/completion and a run record
// refreshed between stages. It has no Intent or Responder stage: the
// run starts from an already-built Intent on the RunState and ends
// when the synthesizer has set the itinerary.
package orchestrating

import (
	"context"
	"fmt"
	"time"

	"github.com/itsneelabh/voyager-core/config"
	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/logging"
	"github.com/itsneelabh/voyager-core/metrics"
	"github.com/itsneelabh/voyager-core/planning"
	"github.com/itsneelabh/voyager-core/repairing"
	"github.com/itsneelabh/voyager-core/resilience"
	"github.com/itsneelabh/voyager-core/selecting"
	"github.com/itsneelabh/voyager-core/store"
	"github.com/itsneelabh/voyager-core/synthesizing"
	"github.com/itsneelabh/voyager-core/toolexec"
	"github.com/itsneelabh/voyager-core/verifying"
)

const driverComponent = "pipeline/orchestrating"

// Driver owns the stage sequence for a single run.
type Driver struct {
	Events   store.EventSink
	RunStore store.RunStore
	Adapters toolexec.Adapters
	Repair   *repairing.Engine
	Metrics  metrics.Facade
	Logger   logging.Logger
	Clock    func() time.Time
	Config   *config.Settings
	Executor *resilience.Executor
}

// NewDriver builds a Driver, defaulting unset collaborators to no-ops,
// the real clock, production settings, and a resilience executor built
// from those settings over an in-process cache.
func NewDriver(events store.EventSink, runStore store.RunStore, adapters toolexec.Adapters, repair *repairing.Engine, m metrics.Facade, logger logging.Logger, cfg *config.Settings, executor *resilience.Executor) *Driver {
	if m == nil {
		m = metrics.NoOp{}
	}
	if logger == nil {
		logger = logging.NoOp{}
	}
	if repair == nil {
		repair = &repairing.Engine{Metrics: m}
	}
	if ca, ok := logger.(logging.ComponentAware); ok {
		logger = ca.WithComponent(driverComponent)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.ExecutorConfig{
			Cache:            store.NewMemCache(),
			SoftTimeout:      cfg.SoftTimeout,
			JitterMin:        cfg.RetryJitterMin,
			JitterMax:        cfg.RetryJitterMax,
			BreakerThreshold: cfg.BreakerFailureThreshold,
			BreakerWindow:    cfg.BreakerWindow,
			BreakerCooldown:  cfg.BreakerCooldown,
			Logger:           logger,
			Metrics:          m,
		})
	}
	return &Driver{
		Events:   events,
		RunStore: runStore,
		Adapters: adapters,
		Repair:   repair,
		Metrics:  m,
		Logger:   logger,
		Clock:    time.Now,
		Config:   cfg,
		Executor: executor,
	}
}

// stageFunc is a pure stage body; returning an error marks the run
// status error and stops the sequence.
type stageFunc func(ctx context.Context, rs *core.RunState) error

// Run executes every stage in order against rs, emitting node_event
// pairs and persisting the run record between stages.
func (d *Driver) Run(ctx context.Context, rs *core.RunState) error {
	if d.RunStore != nil {
		_ = d.RunStore.Create(ctx, store.RunRecord{
			RunID:     rs.TraceID,
			OrgID:     rs.OrgID,
			UserID:    rs.UserID,
			Status:    store.RunRunning,
			CreatedAt: d.Clock(),
		})
	}

	stages := []struct {
		name string
		fn   stageFunc
	}{
		{"planner", d.stagePlanner},
		{"selector", d.stageSelector},
		{"toolexec", d.stageToolExec},
		{"verifier", d.stageVerifier},
		{"repair", d.stageRepair},
		{"synthesizer", d.stageSynthesizer},
	}

	for _, s := range stages {
		d.emit(ctx, rs, s.name, core.NodeRunning, "")
		rs.Append(core.Message{Node: s.name, Status: core.NodeRunning, TS: d.Clock()})

		if err := s.fn(ctx, rs); err != nil {
			d.emit(ctx, rs, s.name, core.NodeError, err.Error())
			rs.Append(core.Message{Node: s.name, Status: core.NodeError, TS: d.Clock(), Message: err.Error()})
			d.updateRunStore(ctx, rs, store.RunError)
			return fmt.Errorf("stage %s: %w", s.name, err)
		}

		d.emit(ctx, rs, s.name, core.NodeCompleted, "")
		rs.Append(core.Message{Node: s.name, Status: core.NodeCompleted, TS: d.Clock()})
		d.updateRunStore(ctx, rs, store.RunRunning)
	}

	rs.Done = true
	d.updateRunStore(ctx, rs, store.RunCompleted)
	return nil
}

func (d *Driver) emit(ctx context.Context, rs *core.RunState, node string, status core.NodeStatus, message string) {
	if d.Events == nil {
		return
	}
	payload := map[string]interface{}{
		"node":   node,
		"status": string(status),
		"ts":     d.Clock(),
	}
	if message != "" {
		payload["message"] = message
	}
	_ = d.Events.Append(ctx, rs.OrgID, rs.TraceID, "node_event", payload)
}

func (d *Driver) updateRunStore(ctx context.Context, rs *core.RunState, status store.RunStatus) {
	if d.RunStore == nil {
		return
	}
	update := store.RunUpdate{Status: status}
	if status == store.RunCompleted && rs.SelectedPlan != nil {
		update.CompletedAt = d.Clock()
	}
	_ = d.RunStore.Update(ctx, rs.TraceID, update)
}

func (d *Driver) stagePlanner(ctx context.Context, rs *core.RunState) error {
	rs.Candidates = planning.BuildCandidatePlans(rs.Intent, d.Config)
	if len(rs.Candidates) == 0 {
		return fmt.Errorf("planner produced zero candidates")
	}
	return nil
}

func (d *Driver) stageSelector(ctx context.Context, rs *core.RunState) error {
	scored := selecting.Score(ctx, rs.Candidates, rs.Intent, d.Logger)
	if len(scored) == 0 {
		return fmt.Errorf("selector produced zero scored plans")
	}
	plan := scored[0].Plan
	rs.SelectedPlan = &plan
	return nil
}

func (d *Driver) stageToolExec(ctx context.Context, rs *core.RunState) error {
	return toolexec.Run(ctx, rs, d.Adapters, d.Executor, d.Config)
}

func (d *Driver) stageVerifier(ctx context.Context, rs *core.RunState) error {
	verifying.Run(ctx, rs, d.Metrics, d.Config)
	return nil
}

func (d *Driver) stageRepair(ctx context.Context, rs *core.RunState) error {
	var blocking []core.Violation
	for _, v := range rs.Violations {
		if v.Blocking {
			blocking = append(blocking, v)
		}
	}
	if len(blocking) == 0 {
		rs.Repair.ReuseRatio = 1.0
		return nil
	}

	before := rs.SelectedPlan.DeepCopy()
	rs.Repair.PreRepair = &before

	result := d.Repair.Repair(ctx, *rs.SelectedPlan, rs.Violations)
	rs.SelectedPlan = &result.PlanAfter
	rs.Violations = result.Remaining
	rs.Repair.CyclesRun = result.CyclesRun
	rs.Repair.MovesApplied = result.MovesApplied
	rs.Repair.ReuseRatio = result.ReuseRatio
	return nil
}

func (d *Driver) stageSynthesizer(ctx context.Context, rs *core.RunState) error {
	rs.Itinerary = synthesizing.Synthesize(ctx, rs, d.Metrics, d.Clock)
	return nil
}
