package decision

import (
	"fmt"

	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/core/physics"
)

// Projection is the grid as expected at the end of the look-ahead horizon.
type Projection struct {
	State    model.InfrastructureState
	Scenario model.Scenario
	// Critical lists the links whose failure probability crossed the threshold.
	Critical []string
	// DLRActive is true when at least one dynamic rating exceeds its static rating.
	DLRActive bool
	Reactor   physics.DispatchConstraints
}

// Lookahead projects a snapshot forward before strategies are simulated.
type Lookahead struct {
	cfg         Config
	degradation *physics.DegradationModel
	reactor     *physics.ReactorController
}

// NewLookahead builds a look-ahead stage.
func NewLookahead(cfg Config, d *physics.DegradationModel, r *physics.ReactorController) *Lookahead {
	cfg.SetDefaults()
	return &Lookahead{cfg: cfg, degradation: d, reactor: r}
}

// Project ages assets, rates lines for w and caps nuclear output. The input
// state and scenario are left untouched.
func (l *Lookahead) Project(state model.InfrastructureState, scn model.Scenario, w model.Weather) Projection {
	st := state.Clone()
	var critical []string
	for i := range st.Links {
		link := &st.Links[i]
		link.AssetHealth = l.degradation.Step(link.AssetHealth, link.LoadFactor(), l.cfg.LookaheadHours)
		if p := physics.FailureProbability(link.AssetHealth); p > l.cfg.FailureThreshold {
			critical = append(critical, fmt.Sprintf("Link %s (PD: %.1fpC, Prob: %.1f%%)", link.ID, link.PDActivity, p*100))
		}
	}
	for i := range st.Nodes {
		node := &st.Nodes[i]
		if node.Type == model.NodeSubstation {
			node.AssetHealth = l.degradation.Step(node.AssetHealth, l.cfg.SubstationLoadFactor, l.cfg.LookaheadHours)
		}
	}
	if len(critical) > 0 {
		scn = scn.Escalate(fmt.Sprintf("PREDICTIVE ALERT: Imminent failure detected on %d assets. %s", len(critical), critical[0]))
	}

	st.Links = physics.RateLinks(st.Links, w)
	dlr := false
	for _, link := range st.Links {
		if link.DynamicRatingMVA > link.StaticRatingMVA {
			dlr = true
			break
		}
	}

	rs := l.reactor.Nominal()
	if st.Reactor != nil {
		rs = *st.Reactor
	}
	rc := l.reactor.DispatchConstraints(rs)

	for i := range st.Sources {
		src := &st.Sources[i]
		switch src.Type {
		case model.EnergyGrid, model.EnergyWind, model.EnergySolar:
			if dlr {
				src.CapacityMW *= l.cfg.DLRBoost
			}
		case model.EnergyNuclear:
			src.CapacityMW = min(src.CapacityMW, rc.MaxMW)
		case model.EnergyBattery:
		}
	}
	return Projection{State: st, Scenario: scn, Critical: critical, DLRActive: dlr, Reactor: rc}
}
