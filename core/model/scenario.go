package model

import (
	"fmt"
	"strings"
)

// ScenarioType is the operating situation the grid is evaluated against.
type ScenarioType int

const (
	ScenarioNormal ScenarioType = iota
	ScenarioDemandSpike
	ScenarioSupplyFailure
	ScenarioPriceVolatility
	ScenarioStorageDegradation
)

func (t ScenarioType) String() string {
	switch t {
	case ScenarioNormal:
		return "normal"
	case ScenarioDemandSpike:
		return "demand_spike"
	case ScenarioSupplyFailure:
		return "supply_failure"
	case ScenarioPriceVolatility:
		return "price_volatility"
	case ScenarioStorageDegradation:
		return "storage_degradation"
	default:
		return "unknown"
	}
}

// ParseScenarioType converts a wire name into a ScenarioType.
func ParseScenarioType(s string) (ScenarioType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "":
		return ScenarioNormal, nil
	case "demand_spike":
		return ScenarioDemandSpike, nil
	case "supply_failure":
		return ScenarioSupplyFailure, nil
	case "price_volatility":
		return ScenarioPriceVolatility, nil
	case "storage_degradation":
		return ScenarioStorageDegradation, nil
	default:
		return 0, fmt.Errorf("unknown scenario type %q", s)
	}
}

// IsSevere reports whether reliability dominates the decision.
func (t ScenarioType) IsSevere() bool {
	switch t {
	case ScenarioDemandSpike, ScenarioSupplyFailure:
		return true
	case ScenarioNormal, ScenarioPriceVolatility, ScenarioStorageDegradation:
		return false
	default:
		return false
	}
}

// Scenario is an immutable description of the conditions under evaluation.
type Scenario struct {
	Type           ScenarioType `json:"type"`
	Description    string       `json:"description"`
	ImpactFactor   float64      `json:"impact_factor"`
	AffectedSource *EnergyType  `json:"affected_source,omitempty"`
}

// Affects reports whether the scenario targets the given source type.
func (s Scenario) Affects(t EnergyType) bool {
	return s.AffectedSource != nil && *s.AffectedSource == t
}

// Escalate promotes a normal scenario to a supply failure carrying the given
// alert. Any other scenario is returned unchanged: escalation never demotes
// and never rewrites a scenario that is already abnormal.
func (s Scenario) Escalate(alert string) Scenario {
	if s.Type != ScenarioNormal {
		return s
	}
	out := s
	out.Type = ScenarioSupplyFailure
	out.Description = alert
	if s.AffectedSource != nil {
		t := *s.AffectedSource
		out.AffectedSource = &t
	}
	return out
}
