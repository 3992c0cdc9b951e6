package dispatch

import "github.com/kilianp07/gridpilot/core/model"

// StorageCostPerMWh is the nominal cycling cost of discharging storage.
const StorageCostPerMWh = 5.0

// Method identifies the algorithm that produced a Result.
type Method string

const (
	MethodMeritOrder Method = "merit_order"
	MethodLP         Method = "lp"
)

// Result is the outcome of dispatching one hour of demand.
type Result struct {
	Method       Method                       `json:"method"`
	DemandMW     float64                      `json:"demand_mw"`
	SupplyMW     float64                      `json:"supply_mw"`
	CostTotal    float64                      `json:"cost"`
	CarbonTonnes float64                      `json:"carbon"`
	Reliability  float64                      `json:"reliability"`
	UnmetMW      float64                      `json:"unmet_demand_mw"`
	StorageMW    float64                      `json:"storage_mw"`
	BySource     map[model.EnergyType]float64 `json:"by_source"`
}

func reliability(supply, demand float64) float64 {
	if demand <= 0 {
		return 1
	}
	return model.Clamp01(supply / demand)
}

// offer is the capacity a source can actually deliver under a scenario.
type offer struct {
	typ       model.EnergyType
	available float64
	cost      float64
	carbon    float64
}

// ScenarioDemand applies the scenario demand modifier. Negative demand is
// treated as zero.
func ScenarioDemand(demandMW float64, scn model.Scenario) float64 {
	d := max(0, demandMW)
	if scn.Type == model.ScenarioDemandSpike {
		d *= max(1, scn.ImpactFactor)
	}
	return d
}

func offers(state model.InfrastructureState, scn model.Scenario) []offer {
	out := make([]offer, 0, len(state.Sources))
	for _, s := range state.Sources {
		avail := s.AvailableMW()
		if scn.Type == model.ScenarioSupplyFailure && scn.Affects(s.Type) {
			avail *= 1 - model.Clamp01(scn.ImpactFactor)
		}
		out = append(out, offer{
			typ:       s.Type,
			available: max(0, avail),
			cost:      s.CostPerMWh,
			carbon:    s.CarbonIntensity,
		})
	}
	return out
}
