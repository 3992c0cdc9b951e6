package dispatch

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/gridpilot/core/events"
	"github.com/kilianp07/gridpilot/core/logger"
	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/internal/eventbus"
)

// ErrInfeasible indicates the LP had no feasible solution meeting the demand.
var ErrInfeasible = errors.New("lp infeasible")

const (
	simplexTol  = 1e-7
	coverageTol = 1e-6
)

// solveLP minimises cost·x subject to 0 <= x <= caps and sum(x) >= demand.
func solveLP(costs, caps []float64, demand float64) ([]float64, error) {
	n := len(costs)
	// rows: x_i <= cap_i, -x_i <= 0, -sum(x) <= -demand
	g := mat.NewDense(2*n+1, n, nil)
	h := make([]float64, 2*n+1)
	for i := 0; i < n; i++ {
		g.Set(i, i, 1)
		h[i] = caps[i]
		g.Set(n+i, i, -1)
		g.Set(2*n, i, -1)
	}
	h[2*n] = -demand

	cStd, aStd, bStd := lp.Convert(costs, g, h, nil, nil)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, simplexTol, nil)
	if err != nil {
		return nil, err
	}
	// Convert splits each free variable into a positive and a negative part.
	x := make([]float64, n)
	for i := range x {
		x[i] = sol[i] - sol[n+i]
	}
	return x, nil
}

// lpSolve points to the function used to solve the LP. It can be overridden in
// tests to simulate solver failures.
var lpSolve = solveLP

// LPOptimizer finds the least-cost dispatch meeting demand.
type LPOptimizer struct {
	merit  MeritOrder
	log    logger.Logger
	bus    eventbus.Publisher
	record bool
}

// LPOption customises an LPOptimizer.
type LPOption func(*LPOptimizer)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l logger.Logger) LPOption {
	return func(o *LPOptimizer) { o.log = l }
}

// WithPublisher publishes StrategyEvents for every attempt and fallback.
func WithPublisher(p eventbus.Publisher) LPOption {
	return func(o *LPOptimizer) { o.bus = p }
}

// WithMetrics enables the package level prometheus collectors.
func WithMetrics() LPOption {
	return func(o *LPOptimizer) { o.record = true }
}

// NewLPOptimizer returns an optimizer.
func NewLPOptimizer(opts ...LPOption) *LPOptimizer {
	o := &LPOptimizer{log: logger.NopLogger{}}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Solve runs the LP. It returns ErrInfeasible when the demand cannot be met
// or the solver fails. No fallback is applied.
func (o *LPOptimizer) Solve(state model.InfrastructureState, scn model.Scenario, demandMW float64) (Result, error) {
	demand := ScenarioDemand(demandMW, scn)
	offs := offers(state, scn)

	costs := make([]float64, 0, len(offs)+1)
	caps := make([]float64, 0, len(offs)+1)
	for _, of := range offs {
		costs = append(costs, of.cost)
		caps = append(caps, of.available)
	}
	storage := state.CurrentStorageMWh > 0
	if storage {
		costs = append(costs, StorageCostPerMWh)
		caps = append(caps, state.CurrentStorageMWh)
	}

	res := Result{
		Method:   MethodLP,
		DemandMW: demand,
		BySource: make(map[model.EnergyType]float64, len(offs)),
	}
	if len(costs) == 0 {
		if demand > 0 {
			return Result{}, fmt.Errorf("%w: no dispatchable capacity", ErrInfeasible)
		}
		res.Reliability = 1
		return res, nil
	}

	x, err := lpSolve(costs, caps, demand)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInfeasible, err)
	}
	for i, of := range offs {
		d := min(max(0, x[i]), of.available)
		if d == 0 {
			continue
		}
		res.SupplyMW += d
		res.CostTotal += d * of.cost
		res.CarbonTonnes += d * of.carbon
		res.BySource[of.typ] += d
	}
	if storage {
		d := min(max(0, x[len(offs)]), state.CurrentStorageMWh)
		res.StorageMW = d
		res.SupplyMW += d
		res.CostTotal += d * StorageCostPerMWh
	}
	if res.SupplyMW < demand-coverageTol {
		return Result{}, fmt.Errorf("%w: supply %.3f below demand %.3f", ErrInfeasible, res.SupplyMW, demand)
	}
	res.UnmetMW = max(0, demand-res.SupplyMW)
	res.Reliability = reliability(res.SupplyMW, demand)
	return res, nil
}

// Dispatch solves the LP and falls back to merit order when it fails. The
// Method field of the result tells which algorithm produced it.
func (o *LPOptimizer) Dispatch(state model.InfrastructureState, scn model.Scenario, demandMW float64) Result {
	o.publish(events.StrategyEvent{Scenario: scn.Type, Action: events.ActionLPAttempt})
	start := time.Now()
	res, err := o.Solve(state, scn, demandMW)
	if err == nil {
		o.observe(res, time.Since(start))
		return res
	}
	o.log.Warnf("lp dispatch failed for %s, falling back to merit order: %v", scn.Type, err)
	o.publish(events.StrategyEvent{Scenario: scn.Type, Action: events.ActionLPFailure, Err: err})
	o.publish(events.StrategyEvent{Scenario: scn.Type, Action: events.ActionMeritFallback})
	if o.record {
		lpFallbacks.Inc()
	}
	start = time.Now()
	res = o.merit.Simulate(state, scn, demandMW)
	o.observe(res, time.Since(start))
	return res
}

func (o *LPOptimizer) publish(ev events.StrategyEvent) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}

func (o *LPOptimizer) observe(res Result, d time.Duration) {
	if !o.record {
		return
	}
	solveLatency.WithLabelValues(string(res.Method)).Observe(d.Seconds())
	unmetDemand.WithLabelValues(string(res.Method)).Set(res.UnmetMW)
}
