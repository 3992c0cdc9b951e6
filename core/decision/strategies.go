package decision

import (
	"sort"

	"github.com/kilianp07/gridpilot/core/dispatch"
	"github.com/kilianp07/gridpilot/core/model"
)

const (
	StrategyBaseline    = "Maintain Current Operations"
	StrategyReliability = "Maximize Reliability (Emergency Dispatch)"
	StrategyOptimized   = "AI-Optimized Smart Dispatch"
	StrategyGreen       = "Maximize Green Energy"
)

type candidate struct {
	rank   model.DecisionRank
	result dispatch.Result
}

// candidates simulates every strategy on the projected state. Variants share
// the slices they do not change with the projection.
func (e *Engine) candidates(st model.InfrastructureState, scn model.Scenario, demand float64) []candidate {
	baseline := e.merit.Simulate(st, scn, demand)

	reliable := e.merit.Simulate(st.WithStorage(st.StorageCapacityMWh), scn, demand)

	optimized := e.optimizer.Dispatch(st, scn, demand)

	green := e.merit.Simulate(st.WithSources(func(s model.EnergySource) model.EnergySource {
		if s.Type.IsLowCarbon() {
			s.Availability = 1
		}
		return s
	}), scn, demand)

	return []candidate{
		{newRank(StrategyBaseline, "Baseline configuration. Uses standard merit-order dispatch without predictive optimization.", baseline), baseline},
		{newRank(StrategyReliability, "Prioritizes grid stability by maximizing storage utilization and activating all reserve capacity.", reliable), reliable},
		{newRank(StrategyOptimized, "Uses Linear Programming to find the mathematically optimal dispatch that minimizes cost while respecting physical grid limits.", optimized), optimized},
		{newRank(StrategyGreen, "Over-prioritizes renewable sources (Solar/Wind) regardless of marginal cost to minimize carbon footprint.", green), green},
	}
}

// rank scores the candidates and sorts them best first. Ties keep the
// declaration order.
func rank(cands []candidate, demand float64, scn model.ScenarioType, p model.PolicyConstraints) {
	for i := range cands {
		cands[i].rank.Score = Score(cands[i].result, demand, scn, p)
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].rank.Score > cands[j].rank.Score })
}
