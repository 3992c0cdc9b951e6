package dispatch

import (
	"sort"

	"github.com/kilianp07/gridpilot/core/model"
)

// MeritOrder dispatches the cheapest available capacity first and covers the
// remainder from storage.
type MeritOrder struct{}

// Simulate runs the merit order for one hour of demand under scn.
func (MeritOrder) Simulate(state model.InfrastructureState, scn model.Scenario, demandMW float64) Result {
	demand := ScenarioDemand(demandMW, scn)
	offs := offers(state, scn)
	sort.SliceStable(offs, func(i, j int) bool { return offs[i].cost < offs[j].cost })

	res := Result{
		Method:   MethodMeritOrder,
		DemandMW: demand,
		BySource: make(map[model.EnergyType]float64, len(offs)),
	}
	remaining := demand
	for _, o := range offs {
		if remaining <= 0 {
			break
		}
		d := min(remaining, o.available)
		if d <= 0 {
			continue
		}
		res.SupplyMW += d
		res.CostTotal += d * o.cost
		res.CarbonTonnes += d * o.carbon
		res.BySource[o.typ] += d
		remaining -= d
	}
	if remaining > 0 && state.CurrentStorageMWh > 0 {
		d := min(remaining, state.CurrentStorageMWh)
		res.SupplyMW += d
		res.StorageMW = d
		res.CostTotal += d * StorageCostPerMWh
		remaining -= d
	}
	res.UnmetMW = max(0, demand-res.SupplyMW)
	res.Reliability = reliability(res.SupplyMW, demand)
	return res
}
