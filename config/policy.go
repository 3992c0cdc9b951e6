package config

import "github.com/kilianp07/gridpilot/core/model"

// PolicyConfig is the operator policy applied at startup. An empty section
// leaves the neutral default policy active.
type PolicyConfig struct {
	MaxCostPerMWh       float64 `json:"max_cost_per_mwh"`
	MaxCarbonPerMWh     float64 `json:"max_carbon_per_mwh"`
	MinReliabilityScore float64 `json:"min_reliability_score"`
	RiskTolerance       string  `json:"risk_tolerance"`
}

// IsZero reports whether no policy field is set.
func (c PolicyConfig) IsZero() bool { return c == PolicyConfig{} }

// Constraints returns nil for an empty section.
func (c PolicyConfig) Constraints() (*model.PolicyConstraints, error) {
	if c.IsZero() {
		return nil, nil
	}
	r, err := model.ParseRiskTolerance(c.RiskTolerance)
	if err != nil {
		return nil, err
	}
	p := model.PolicyConstraints{
		MaxCostPerMWh:       c.MaxCostPerMWh,
		MaxCarbonPerMWh:     c.MaxCarbonPerMWh,
		MinReliabilityScore: c.MinReliabilityScore,
		RiskTolerance:       r,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
