package decision

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridpilot/core/dispatch"
	"github.com/kilianp07/gridpilot/core/environment"
	"github.com/kilianp07/gridpilot/core/events"
	"github.com/kilianp07/gridpilot/core/logger"
	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/core/monitoring"
	"github.com/kilianp07/gridpilot/core/physics"
	"github.com/kilianp07/gridpilot/core/policy"
	"github.com/kilianp07/gridpilot/core/prediction"
	"github.com/kilianp07/gridpilot/core/safety"
	"github.com/kilianp07/gridpilot/internal/eventbus"
)

// ErrNoSafeStrategy is returned in enforce mode when every candidate fails
// safety validation.
var ErrNoSafeStrategy = errors.New("no candidate dispatch passed safety validation")

// referenceWeather leaves static ratings unchanged.
var referenceWeather = model.Weather{TemperatureC: 35, WindSpeedMPS: 0.6}

var (
	defaultAssumptions = []string{"Grid telemetry is accurate within 5%", "Assets are responsive to dispatch signals"}
	defaultNextSteps   = []string{"Approve dispatch schedule", "Monitor grid frequency"}
)

// Request is one evaluation input. State is treated as read-only.
type Request struct {
	State    model.InfrastructureState `json:"state"`
	Scenario model.Scenario            `json:"scenario"`
	DemandMW float64                   `json:"demand_mw"`
}

// Dependencies are the collaborators of an Engine. Policies, Forecaster,
// Environment and Guardian are required. Only weather is read from the
// environment; market prices reach telemetry through trust.Synchronizer.
type Dependencies struct {
	Policies    *policy.Store
	Forecaster  prediction.DemandForecaster
	Environment environment.WeatherSource
	Guardian    *safety.Guardian
	Optimizer   *dispatch.LPOptimizer
	Degradation *physics.DegradationModel
	Reactor     *physics.ReactorController
	Monitor     monitoring.Monitor
	Logger      logger.Logger
	Bus         eventbus.Publisher
}

// Engine evaluates dispatch strategies. It is safe for concurrent use.
type Engine struct {
	policies   *policy.Store
	forecaster prediction.DemandForecaster
	env        environment.WeatherSource
	guardian   *safety.Guardian
	lookahead  *Lookahead
	merit      dispatch.MeritOrder
	optimizer  *dispatch.LPOptimizer
	monitor    monitoring.Monitor
	log        logger.Logger
	bus        eventbus.Publisher
}

// NewEngine wires an engine.
func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if deps.Policies == nil || deps.Forecaster == nil || deps.Environment == nil || deps.Guardian == nil {
		return nil, fmt.Errorf("decision: nil parameter provided to NewEngine")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NopLogger{}
	}
	if deps.Monitor == nil {
		deps.Monitor = monitoring.NopMonitor{}
	}
	if deps.Optimizer == nil {
		deps.Optimizer = dispatch.NewLPOptimizer(dispatch.WithLogger(deps.Logger))
	}
	if deps.Degradation == nil {
		deps.Degradation = physics.NewDegradationModel(nil)
	}
	if deps.Reactor == nil {
		deps.Reactor = physics.NewReactorController(physics.BSR220())
	}
	return &Engine{
		policies:   deps.Policies,
		forecaster: deps.Forecaster,
		env:        deps.Environment,
		guardian:   deps.Guardian,
		lookahead:  NewLookahead(cfg, deps.Degradation, deps.Reactor),
		optimizer:  deps.Optimizer,
		monitor:    deps.Monitor,
		log:        deps.Logger,
		bus:        deps.Bus,
	}, nil
}

// Evaluate ranks the strategies for req. It never panics and never returns
// a partial result: on failure the degraded safety-mode output is returned.
func (e *Engine) Evaluate(ctx context.Context, req Request) (out model.DecisionOutput) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = e.fail(req, fmt.Errorf("panic: %v", r))
		}
		if e.bus != nil {
			e.bus.Publish(events.DecisionEvent{Scenario: req.Scenario.Type, Output: out, Duration: time.Since(start)})
		}
	}()
	res, err := e.evaluate(ctx, req)
	if err != nil {
		return e.fail(req, err)
	}
	return res
}

func (e *Engine) fail(req Request, err error) model.DecisionOutput {
	e.monitor.CaptureException(err, map[string]string{
		"component": "decision_engine",
		"scenario":  req.Scenario.Type.String(),
	})
	e.log.Errorf("decision evaluation failed: %v", err)
	out := DegradedOutput(fmt.Sprintf("Internal calculation error: %v", err))
	out.ID = uuid.NewString()
	return out
}

func (e *Engine) evaluate(ctx context.Context, req Request) (model.DecisionOutput, error) {
	if math.IsNaN(req.DemandMW) || math.IsInf(req.DemandMW, 0) {
		return model.DecisionOutput{}, fmt.Errorf("invalid demand %v", req.DemandMW)
	}
	// Inputs are acquired once so the whole evaluation sees one consistent view.
	pol := e.policies.Snapshot()
	forecast := e.forecaster.Forecast24h(ctx)
	weather, err := e.env.Weather(ctx)
	if err != nil {
		e.log.Warnf("weather unavailable, using static ratings: %v", err)
		weather = referenceWeather
	}

	demand := req.DemandMW
	if len(forecast) > 0 {
		demand = max(demand, forecast[0].DemandMW)
	}

	proj := e.lookahead.Project(req.State, req.Scenario, weather)
	if len(proj.Critical) > 0 {
		e.log.Warnf("%d assets above failure threshold: %s", len(proj.Critical), proj.Critical[0])
	}
	scn := proj.Scenario

	cands := e.candidates(proj.State, scn, demand)
	rank(cands, demand, scn.Type, pol)

	best, verdict, err := e.selectSafe(req.State, cands)
	if err != nil {
		return model.DecisionOutput{}, err
	}
	winner := cands[best]
	alts := make([]model.DecisionRank, 0, len(cands)-1)
	for i, c := range cands {
		if i != best {
			alts = append(alts, c.rank)
		}
	}

	e.log.Debugw("decision evaluated", map[string]any{
		"scenario":    scn.Type.String(),
		"demand_mw":   demand,
		"winner":      winner.rank.OptionName,
		"score":       winner.rank.Score,
		"method":      string(winner.result.Method),
		"dlr_active":  proj.DLRActive,
		"safe":        verdict.IsSafe,
		"policy_risk": pol.RiskTolerance.String(),
	})

	recommended := winner.rank
	dispatched := make(map[model.EnergyType]float64, len(winner.result.BySource))
	for t, mw := range winner.result.BySource {
		dispatched[t] = mw
	}
	return model.DecisionOutput{
		ID:                uuid.NewString(),
		Summary:           summary(recommended, scn),
		RecommendedAction: recommended.OptionName,
		Recommended:       &recommended,
		Alternatives:      alts,
		Risks:             risks(scn, recommended),
		Assumptions:       append([]string(nil), defaultAssumptions...),
		Confidence:        confidence(recommended),
		NextSteps:         append([]string(nil), defaultNextSteps...),
		PrimaryFactor:     primaryFactor(scn, recommended),
		Rationale:         safety.Rationale(proj.State),
		Dispatch:          dispatched,
		Safety:            &verdict,
	}, nil
}

// selectSafe validates the ranked candidates against the physical nameplate
// of the request state. In advisory mode the best candidate always wins and
// an unsafe verdict is appended to its reasoning; in enforce mode the best
// safe candidate wins.
func (e *Engine) selectSafe(state model.InfrastructureState, cands []candidate) (int, model.SafetyVerdict, error) {
	if e.guardian.Mode() == safety.ModeEnforce {
		var first model.SafetyVerdict
		for i, c := range cands {
			v := e.guardian.Validate(state, c.result.BySource)
			if v.IsSafe {
				return i, v, nil
			}
			if i == 0 {
				first = v
			}
		}
		return 0, model.SafetyVerdict{}, fmt.Errorf("%w: %s", ErrNoSafeStrategy, strings.Join(first.Violations, ", "))
	}
	v := e.guardian.Validate(state, cands[0].result.BySource)
	if !v.IsSafe {
		cands[0].rank.Reasoning += fmt.Sprintf(" [SAFETY OVERRIDE: %s]", strings.Join(v.Violations, ", "))
	}
	return 0, v, nil
}
