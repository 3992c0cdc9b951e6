package decision

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpilot/core/environment"
	"github.com/kilianp07/gridpilot/core/events"
	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/core/physics"
	"github.com/kilianp07/gridpilot/core/policy"
	"github.com/kilianp07/gridpilot/core/safety"
	"github.com/kilianp07/gridpilot/internal/eventbus"
)

type staticForecaster []model.ForecastPoint

func (f staticForecaster) Forecast24h(context.Context) []model.ForecastPoint { return f }

type panicForecaster struct{}

func (panicForecaster) Forecast24h(context.Context) []model.ForecastPoint {
	panic("forecast model corrupted")
}

type staticEnv struct {
	w   model.Weather
	err error
}

func (s staticEnv) Weather(context.Context) (model.Weather, error) { return s.w, s.err }

func (s staticEnv) MarketPrice(context.Context) (model.MarketPrice, error) {
	return model.MarketPrice{PricePerMWh: 50}, s.err
}

type recordingMonitor struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (m *recordingMonitor) CaptureException(err error, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	m.tags = append(m.tags, tags)
}
func (m *recordingMonitor) Recover()            {}
func (m *recordingMonitor) Flush(time.Duration) {}

var (
	hotCalm   = model.Weather{TemperatureC: 40, WindSpeedMPS: 0.2}
	coldWindy = model.Weather{TemperatureC: 10, WindSpeedMPS: 8}
)

func mixedState() model.InfrastructureState {
	return model.InfrastructureState{
		Sources: []model.EnergySource{
			{Type: model.EnergyGrid, CapacityMW: 300, CostPerMWh: 85, Availability: 1, CarbonIntensity: 0.45},
			{Type: model.EnergySolar, CapacityMW: 120, CostPerMWh: 20, Availability: 0.6},
			{Type: model.EnergyWind, CapacityMW: 150, CostPerMWh: 25, Availability: 0.7},
			{Type: model.EnergyNuclear, CapacityMW: 220, CostPerMWh: 40, Availability: 0.9, CarbonIntensity: 0.01},
		},
		Links: []model.GridLink{
			{ID: "l1", CapacityMW: 200, CurrentLoadMW: 100, StaticRatingMVA: 100, AssetHealth: model.NewAssetHealth()},
		},
		StorageCapacityMWh: 100,
		CurrentStorageMWh:  40,
	}
}

type engineOpts struct {
	forecaster interface {
		Forecast24h(context.Context) []model.ForecastPoint
	}
	weather model.Weather
	mode    safety.Mode
	policy  *model.PolicyConstraints
	monitor *recordingMonitor
	bus     eventbus.Publisher
}

func newTestEngine(t *testing.T, o engineOpts) *Engine {
	t.Helper()
	if o.forecaster == nil {
		o.forecaster = staticForecaster(nil)
	}
	g, err := safety.NewGuardian(safety.Config{Mode: string(o.mode)})
	require.NoError(t, err)
	deps := Dependencies{
		Policies:    policy.NewStore(o.policy),
		Forecaster:  o.forecaster,
		Environment: staticEnv{w: o.weather},
		Guardian:    g,
		Degradation: physics.NewDegradationModel(rand.NewPCG(1, 2)),
		Bus:         o.bus,
	}
	if o.monitor != nil {
		deps.Monitor = o.monitor
	}
	e, err := NewEngine(Config{}, deps)
	require.NoError(t, err)
	return e
}

func TestNewEngineRequiresDependencies(t *testing.T) {
	_, err := NewEngine(Config{}, Dependencies{})
	assert.Error(t, err)
}

func TestEvaluateRanksStrategies(t *testing.T) {
	e := newTestEngine(t, engineOpts{weather: hotCalm})
	req := Request{State: mixedState(), Scenario: model.Scenario{Type: model.ScenarioNormal, Description: "steady"}, DemandMW: 400}

	out := e.Evaluate(context.Background(), req)

	require.False(t, out.Degraded)
	assert.Equal(t, StrategyGreen, out.RecommendedAction)
	require.Len(t, out.Alternatives, 3)
	assert.Equal(t, StrategyOptimized, out.Alternatives[0].OptionName)
	assert.Equal(t, StrategyBaseline, out.Alternatives[1].OptionName)
	assert.Equal(t, StrategyReliability, out.Alternatives[2].OptionName)
	for i := 1; i < len(out.Alternatives); i++ {
		assert.GreaterOrEqual(t, out.Alternatives[i-1].Score, out.Alternatives[i].Score)
	}
	assert.GreaterOrEqual(t, out.Recommended.Score, out.Alternatives[0].Score)

	assert.Equal(t, 0.92, out.Confidence)
	assert.Equal(t, "Carbon Reduction", out.PrimaryFactor)
	assert.Equal(t, "Recommendation: Maximize Green Energy. This strategy provides the best outcome for the 'steady' scenario.", out.Summary)
	assert.Equal(t, []string{"No significant operational risks identified."}, out.Risks)
	assert.Equal(t, "Dispatch follows standard merit-order and thermal stability limits.", out.Rationale)
	require.NotNil(t, out.Safety)
	assert.True(t, out.Safety.IsSafe)
	assert.InDelta(t, 120, out.Dispatch[model.EnergySolar], 1e-9)
	assert.NotEmpty(t, out.ID)
}

func TestEvaluateUsesForecastWhenHigher(t *testing.T) {
	fc := staticForecaster{{DemandMW: 600}}
	e := newTestEngine(t, engineOpts{weather: hotCalm, forecaster: fc})
	out := e.Evaluate(context.Background(), Request{State: mixedState(), DemandMW: 100})
	var total float64
	for _, mw := range out.Dispatch {
		total += mw
	}
	assert.Greater(t, total, 500.0)
}

func TestEvaluateRecoversFromPanic(t *testing.T) {
	mon := &recordingMonitor{}
	e := newTestEngine(t, engineOpts{forecaster: panicForecaster{}, monitor: mon})

	var out model.DecisionOutput
	assert.NotPanics(t, func() {
		out = e.Evaluate(context.Background(), Request{State: mixedState(), Scenario: model.Scenario{Type: model.ScenarioDemandSpike}, DemandMW: 100})
	})

	assert.True(t, out.Degraded)
	assert.Zero(t, out.Confidence)
	assert.Equal(t, SafetyModeAction, out.RecommendedAction)
	assert.Empty(t, out.Alternatives)
	require.Len(t, out.Risks, 2)
	assert.Contains(t, out.Risks[1], "forecast model corrupted")
	assert.Equal(t, "System Safety", out.PrimaryFactor)

	require.Len(t, mon.errs, 1)
	assert.Equal(t, "demand_spike", mon.tags[0]["scenario"])
}

func TestEvaluateInvalidDemandDegrades(t *testing.T) {
	e := newTestEngine(t, engineOpts{weather: hotCalm})
	out := e.Evaluate(context.Background(), Request{State: mixedState(), DemandMW: nanValue()})
	assert.True(t, out.Degraded)
}

func TestEvaluatePredictiveEscalation(t *testing.T) {
	st := mixedState()
	st.Links = append(st.Links, model.GridLink{ID: "weak", CapacityMW: 100, StaticRatingMVA: 100, AssetHealth: model.AssetHealth{HealthIndex: 0.05}})
	req := Request{State: st, Scenario: model.Scenario{Type: model.ScenarioNormal, Description: "steady"}, DemandMW: 300}
	e := newTestEngine(t, engineOpts{weather: hotCalm})

	out := e.Evaluate(context.Background(), req)

	require.False(t, out.Degraded)
	assert.Contains(t, out.Summary, "PREDICTIVE ALERT: Imminent failure detected on 1 assets. Link weak")
	assert.Equal(t, "Reliability Assurance", out.PrimaryFactor)
	assert.Contains(t, out.Risks, "Cascading failure risk if reserve margin drops below 5%.")
	assert.Equal(t, model.ScenarioNormal, req.Scenario.Type)

	// advisory guardian annotates the winner
	require.False(t, out.Safety.IsSafe)
	assert.Contains(t, out.Recommended.Reasoning, "[SAFETY OVERRIDE: Safety Override: Critical Health on weak. Limiting throughput.]")
	assert.Contains(t, out.Rationale, "Bypassed full capacity on 1 assets")
}

func boostedState() model.InfrastructureState {
	return model.InfrastructureState{
		Sources: []model.EnergySource{
			{Type: model.EnergyWind, CapacityMW: 100, CostPerMWh: 10, Availability: 0.5},
			{Type: model.EnergyGrid, CapacityMW: 100, CostPerMWh: 80, Availability: 1, CarbonIntensity: 0.5},
		},
		Links: []model.GridLink{{ID: "l1", CapacityMW: 100, StaticRatingMVA: 100, AssetHealth: model.NewAssetHealth()}},
	}
}

func TestAdvisoryAnnotatesUnsafeWinner(t *testing.T) {
	e := newTestEngine(t, engineOpts{weather: coldWindy})
	out := e.Evaluate(context.Background(), Request{State: boostedState(), DemandMW: 160})

	require.False(t, out.Degraded)
	assert.Equal(t, StrategyGreen, out.RecommendedAction)
	assert.False(t, out.Safety.IsSafe)
	assert.Contains(t, out.Recommended.Reasoning, "SAFETY OVERRIDE: Source wind exceeds safety ceiling (115.0 > 100.0MW)")
	assert.Equal(t, 100.0, out.Safety.Sanitized[model.EnergyWind])
	assert.Contains(t, out.Rationale, "Utilized 1 lines with Dynamic Line Rating (Wind Cooling)")
}

func TestEnforcePicksBestSafeCandidate(t *testing.T) {
	e := newTestEngine(t, engineOpts{weather: coldWindy, mode: safety.ModeEnforce})
	out := e.Evaluate(context.Background(), Request{State: boostedState(), DemandMW: 160})

	require.False(t, out.Degraded)
	// baseline, reliability and LP produce the same safe dispatch here
	assert.Contains(t, []string{StrategyBaseline, StrategyReliability, StrategyOptimized}, out.RecommendedAction)
	assert.True(t, out.Safety.IsSafe)
	assert.InDelta(t, 102.5, out.Dispatch[model.EnergyGrid], 1e-6)
	require.Len(t, out.Alternatives, 3)
	assert.Equal(t, StrategyGreen, out.Alternatives[0].OptionName)
	assert.NotContains(t, out.Recommended.Reasoning, "SAFETY OVERRIDE")
}

func TestEnforceWithoutSafeCandidateDegrades(t *testing.T) {
	st := boostedState()
	st.Sources = st.Sources[1:]
	mon := &recordingMonitor{}
	e := newTestEngine(t, engineOpts{weather: coldWindy, mode: safety.ModeEnforce, monitor: mon})
	out := e.Evaluate(context.Background(), Request{State: st, DemandMW: 200})

	assert.True(t, out.Degraded)
	require.Len(t, mon.errs, 1)
	assert.True(t, errors.Is(mon.errs[0], ErrNoSafeStrategy))
}

func TestAversePolicyIsReadOncePerEvaluation(t *testing.T) {
	p := model.DefaultPolicy()
	p.RiskTolerance = model.RiskAverse
	e := newTestEngine(t, engineOpts{weather: hotCalm, policy: &p})
	st := mixedState()
	out := e.Evaluate(context.Background(), Request{State: st, DemandMW: 2000})
	require.False(t, out.Degraded)
	// nothing covers 2000 MW, every option pays the averse penalty
	assert.Less(t, out.Recommended.Score, 0.0)
	assert.Equal(t, "High", out.Recommended.RiskLevel)
	assert.Equal(t, 0.75, out.Confidence)
	assert.Contains(t, out.Risks, "Immediate load shedding required.")
}

func TestEvaluatePublishesDecisionEvent(t *testing.T) {
	bus := eventbus.New()
	ch := bus.Subscribe()
	e := newTestEngine(t, engineOpts{weather: hotCalm, bus: bus})
	e.Evaluate(context.Background(), Request{State: mixedState(), DemandMW: 100})

	var got events.DecisionEvent
	for ev := range ch {
		if de, ok := ev.(events.DecisionEvent); ok {
			got = de
			break
		}
	}
	assert.False(t, got.Output.Degraded)
	assert.NotEmpty(t, got.Output.RecommendedAction)
}

func TestEvaluateFallsBackToStaticRatings(t *testing.T) {
	g, err := safety.NewGuardian(safety.Config{})
	require.NoError(t, err)
	e, err := NewEngine(Config{}, Dependencies{
		Policies:    policy.NewStore(nil),
		Forecaster:  staticForecaster(nil),
		Environment: environment.NewFallback(staticEnv{err: errors.New("offline")}, staticEnv{err: errors.New("offline")}, nil),
		Guardian:    g,
	})
	require.NoError(t, err)
	out := e.Evaluate(context.Background(), Request{State: boostedState(), DemandMW: 50})
	require.False(t, out.Degraded)
	assert.True(t, out.Safety.IsSafe)
}

func TestConcurrentEvaluations(t *testing.T) {
	e := newTestEngine(t, engineOpts{weather: hotCalm})
	st := mixedState()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := e.Evaluate(context.Background(), Request{State: st, DemandMW: 400})
			if out.Degraded {
				t.Errorf("unexpected degraded output: %v", out.Risks)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1.0, st.Links[0].HealthIndex)
}
