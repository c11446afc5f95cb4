package toolexec

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itsneelabh/voyager-core/config"
	"github.com/itsneelabh/voyager-core/core"
	"github.com/itsneelabh/voyager-core/resilience"
)

// Run populates rs's tool-result dictionaries for the selected plan,
// fetching one weather forecast per planned day, flights/lodging
// tier-banded by per-day budget, attractions for every selected
// attraction slot absent from the dictionary, transit legs, and a
// single FX rate against the trip's destination city. Every adapter
// call is routed through executor, so timeouts, retries, the circuit
// breaker, and result caching apply uniformly. A nil executor or cfg
// falls back to defaults so callers that only care about the fetch
// logic (tests, the demo CLI) don't have to build one.
func Run(ctx context.Context, rs *core.RunState, adapters Adapters, executor *resilience.Executor, cfg *config.Settings) error {
	plan := rs.SelectedPlan
	if plan == nil || len(plan.Days) == 0 {
		return nil
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.ExecutorConfig{
			SoftTimeout:      cfg.SoftTimeout,
			JitterMin:        cfg.RetryJitterMin,
			JitterMax:        cfg.RetryJitterMax,
			BreakerThreshold: cfg.BreakerFailureThreshold,
			BreakerWindow:    cfg.BreakerWindow,
			BreakerCooldown:  cfg.BreakerCooldown,
		})
	}

	tripDays := len(plan.Days)
	perDayBudget := rs.Intent.BudgetCents / int64(tripDays)

	if err := fetchWeather(ctx, rs, adapters, executor, cfg, plan); err != nil {
		return err
	}
	if err := fetchFlights(ctx, rs, adapters, executor, cfg, perDayBudget); err != nil {
		return err
	}
	if err := fetchLodging(ctx, rs, adapters, executor, cfg, perDayBudget); err != nil {
		return err
	}
	fetchAttractions(ctx, rs, adapters, executor, cfg, plan)
	fetchTransit(ctx, rs, adapters, executor, cfg, plan)
	if err := fetchFX(ctx, rs, adapters, executor, cfg); err != nil {
		return err
	}

	return nil
}

// toMap round-trips v through JSON so a typed domain struct can travel
// as the map[string]interface{} a resilience.Tool deals in.
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeInto is the reverse of toMap: it rebuilds a typed struct from
// the plain map an Execute call returned.
func decodeInto(data map[string]interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// resultError turns a non-success executor Result into an error for
// fetchers that must propagate failure rather than degrade.
func resultError(name string, result resilience.Result) error {
	if result.Error != nil && result.Error.Message != "" {
		return fmt.Errorf("%s: %s", name, result.Error.Message)
	}
	return fmt.Errorf("%s: %s", name, result.Status)
}

func fetchWeather(ctx context.Context, rs *core.RunState, adapters Adapters, executor *resilience.Executor, cfg *config.Settings, plan *core.Plan) error {
	if adapters.Weather == nil {
		return nil
	}
	policy := resilience.CachePolicy{Enabled: true, TTLSeconds: int(cfg.WeatherTTL.Seconds())}
	for _, day := range plan.Days {
		key := rs.Intent.City + ":" + day.Date.Format("2006-01-02")
		if _, ok := rs.Weather[key]; ok {
			continue
		}
		rs.IncToolCall("weather")
		city := rs.Intent.City
		window := core.DateWindow{Start: day.Date, End: day.Date, Zone: rs.Intent.Window.Zone}

		tool := func(toolCtx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			wd, err := adapters.Weather.FetchWeather(toolCtx, city, window)
			if err != nil {
				return nil, err
			}
			return toMap(wd)
		}
		args := map[string]interface{}{"city": city, "date": day.Date.Format("2006-01-02")}
		result := executor.Execute(ctx, "weather", tool, args, policy, nil)
		if result.Status != resilience.StatusSuccess {
			continue
		}
		var wd core.WeatherDay
		if err := decodeInto(result.Data, &wd); err != nil {
			continue
		}
		wd.Provenance.Source = core.SourceTool
		wd.Provenance.FetchedAt = time.Now()
		wd.Provenance.CacheHit = core.BoolToTri(result.FromCache)
		rs.Weather[key] = wd
	}
	return nil
}

func fetchFlights(ctx context.Context, rs *core.RunState, adapters Adapters, executor *resilience.Executor, cfg *config.Settings, perDayBudget int64) error {
	if adapters.Flight == nil || len(rs.Intent.Airports) == 0 {
		return nil
	}
	rs.IncToolCall("flights")
	origin := rs.Intent.Airports[0]
	destination := rs.Intent.City
	window := rs.Intent.Window
	avoidOvernight := rs.Intent.Preferences.AvoidOvernight

	tool := func(toolCtx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		options, err := adapters.Flight.FetchFlights(toolCtx, origin, destination, window, avoidOvernight, perDayBudget)
		if err != nil {
			return nil, err
		}
		return toMap(map[string]interface{}{"options": options})
	}
	args := map[string]interface{}{"origin": origin, "destination": destination, "per_day_budget_cents": perDayBudget}
	policy := resilience.CachePolicy{Enabled: true, TTLSeconds: int(cfg.ToolCacheTTL.Seconds())}
	result := executor.Execute(ctx, "flights", tool, args, policy, nil)
	if result.Status != resilience.StatusSuccess {
		return resultError("flights", result)
	}

	var wrapped struct {
		Options []core.FlightOption `json:"options"`
	}
	if err := decodeInto(result.Data, &wrapped); err != nil {
		return err
	}
	for _, o := range wrapped.Options {
		o.Provenance.Source = core.SourceTool
		o.Provenance.FetchedAt = time.Now()
		o.Provenance.CacheHit = core.BoolToTri(result.FromCache)
		rs.Flights[o.OptionRef] = o
	}
	return nil
}

func fetchLodging(ctx context.Context, rs *core.RunState, adapters Adapters, executor *resilience.Executor, cfg *config.Settings, perDayBudget int64) error {
	if adapters.Lodging == nil {
		return nil
	}
	rs.IncToolCall("lodging")
	city := rs.Intent.City
	window := rs.Intent.Window

	tool := func(toolCtx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		options, err := adapters.Lodging.FetchLodging(toolCtx, city, window, perDayBudget)
		if err != nil {
			return nil, err
		}
		return toMap(map[string]interface{}{"options": options})
	}
	args := map[string]interface{}{"city": city, "per_day_budget_cents": perDayBudget}
	policy := resilience.CachePolicy{Enabled: true, TTLSeconds: int(cfg.ToolCacheTTL.Seconds())}
	result := executor.Execute(ctx, "lodging", tool, args, policy, nil)
	if result.Status != resilience.StatusSuccess {
		return resultError("lodging", result)
	}

	var wrapped struct {
		Options []core.LodgingOption `json:"options"`
	}
	if err := decodeInto(result.Data, &wrapped); err != nil {
		return err
	}
	for _, o := range wrapped.Options {
		o.Provenance.Source = core.SourceTool
		o.Provenance.FetchedAt = time.Now()
		o.Provenance.CacheHit = core.BoolToTri(result.FromCache)
		rs.Lodgings[o.OptionRef] = o
	}
	return nil
}

func fetchAttractions(ctx context.Context, rs *core.RunState, adapters Adapters, executor *resilience.Executor, cfg *config.Settings, plan *core.Plan) {
	if adapters.Attraction == nil {
		return
	}
	policy := resilience.CachePolicy{Enabled: true, TTLSeconds: int(cfg.ToolCacheTTL.Seconds())}
	for _, day := range plan.Days {
		for _, slot := range day.Slots {
			sel := slot.Selected()
			if sel.Kind != core.ChoiceAttraction || sel.OptionRef == "" {
				continue
			}
			if _, ok := rs.Attractions[sel.OptionRef]; ok {
				continue
			}
			rs.IncToolCall("attractions")
			optionRef := sel.OptionRef
			city := rs.Intent.City

			tool := func(toolCtx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				att, err := adapters.Attraction.FetchAttraction(toolCtx, optionRef, city)
				if err != nil {
					return nil, err
				}
				return toMap(att)
			}
			args := map[string]interface{}{"option_ref": optionRef, "city": city}
			result := executor.Execute(ctx, "attractions", tool, args, policy, nil)

			var att core.Attraction
			degraded := result.Status != resilience.StatusSuccess
			if !degraded {
				if err := decodeInto(result.Data, &att); err != nil {
					degraded = true
				}
			}
			if degraded {
				// Degraded-but-valid: fall back to the choice's own
				// features rather than raising, per the propagation
				// contract on tool failure.
				att = core.Attraction{
					OptionRef:   sel.OptionRef,
					Name:        "",
					Themes:      sel.Features.Themes,
					Indoor:      sel.Features.Indoor,
					KidFriendly: sel.Features.KidFriendly,
					Provenance:  core.Provenance{Source: core.SourceFixture, FetchedAt: time.Now()},
				}
			} else {
				att.Provenance.Source = core.SourceTool
				att.Provenance.FetchedAt = time.Now()
				att.Provenance.CacheHit = core.BoolToTri(result.FromCache)
				if len(att.Themes) == 0 {
					att.Themes = DeriveThemes(att.Name, att.Notes)
				}
			}
			rs.Attractions[sel.OptionRef] = att
		}
	}
}

func fetchTransit(ctx context.Context, rs *core.RunState, adapters Adapters, executor *resilience.Executor, cfg *config.Settings, plan *core.Plan) {
	if adapters.Transit == nil {
		return
	}
	policy := resilience.CachePolicy{Enabled: true, TTLSeconds: int(cfg.ToolCacheTTL.Seconds())}
	for _, day := range plan.Days {
		for _, slot := range day.Slots {
			sel := slot.Selected()
			if sel.Kind != core.ChoiceTransit || sel.OptionRef == "" {
				continue
			}
			if _, ok := rs.Transit[sel.OptionRef]; ok {
				continue
			}
			rs.IncToolCall("transit")
			city := rs.Intent.City
			to := sel.OptionRef

			tool := func(toolCtx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				leg, err := adapters.Transit.FetchTransit(toolCtx, city, to)
				if err != nil {
					return nil, err
				}
				return toMap(leg)
			}
			args := map[string]interface{}{"from": city, "to": to}
			result := executor.Execute(ctx, "transit", tool, args, policy, nil)
			if result.Status != resilience.StatusSuccess {
				continue
			}
			var leg core.TransitLeg
			if err := decodeInto(result.Data, &leg); err != nil {
				continue
			}
			leg.Provenance.Source = core.SourceTool
			leg.Provenance.FetchedAt = time.Now()
			leg.Provenance.CacheHit = core.BoolToTri(result.FromCache)
			rs.Transit[sel.OptionRef] = leg
		}
	}
}

// fetchFX fetches a single USD-to-destination-city conversion rate,
// since the intent carries a budget in cents but no currency of its
// own. The rate is keyed and cached like any other tool result.
func fetchFX(ctx context.Context, rs *core.RunState, adapters Adapters, executor *resilience.Executor, cfg *config.Settings) error {
	if adapters.FX == nil {
		return nil
	}
	city := rs.Intent.City
	key := "USD:" + city
	if _, ok := rs.FX[key]; ok {
		return nil
	}
	rs.IncToolCall("fx")

	tool := func(toolCtx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		rate, err := adapters.FX.FetchFX(toolCtx, "USD", city)
		if err != nil {
			return nil, err
		}
		return toMap(rate)
	}
	args := map[string]interface{}{"from": "USD", "to": city}
	policy := resilience.CachePolicy{Enabled: true, TTLSeconds: int(cfg.FXTTL.Seconds())}
	result := executor.Execute(ctx, "fx", tool, args, policy, nil)
	if result.Status != resilience.StatusSuccess {
		return nil
	}
	var rate core.FXRate
	if err := decodeInto(result.Data, &rate); err != nil {
		return nil
	}
	rate.Provenance.Source = core.SourceTool
	rate.Provenance.FetchedAt = time.Now()
	rate.Provenance.CacheHit = core.BoolToTri(result.FromCache)
	rs.FX[key] = rate
	return nil
}
