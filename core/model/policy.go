package model

import (
	"fmt"
	"strings"
)

// RiskTolerance expresses the operator appetite for unserved energy.
type RiskTolerance int

const (
	RiskNeutral RiskTolerance = iota
	RiskAverse
	RiskSeeking
)

func (r RiskTolerance) String() string {
	switch r {
	case RiskNeutral:
		return "neutral"
	case RiskAverse:
		return "averse"
	case RiskSeeking:
		return "seeking"
	default:
		return "unknown"
	}
}

// ParseRiskTolerance converts a wire name into a RiskTolerance.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "neutral", "":
		return RiskNeutral, nil
	case "averse":
		return RiskAverse, nil
	case "seeking":
		return RiskSeeking, nil
	default:
		return 0, fmt.Errorf("unknown risk tolerance %q", s)
	}
}

// PolicyConstraints are the operator limits applied when ranking strategies.
type PolicyConstraints struct {
	MaxCostPerMWh       float64       `json:"max_cost_per_mwh"`
	MaxCarbonPerMWh     float64       `json:"max_carbon_per_mwh"`
	MinReliabilityScore float64       `json:"min_reliability_score"`
	RiskTolerance       RiskTolerance `json:"risk_tolerance"`
}

// DefaultPolicy is the neutral policy used when no record is active.
func DefaultPolicy() PolicyConstraints {
	return PolicyConstraints{
		MaxCostPerMWh:       100,
		MaxCarbonPerMWh:     0.5,
		MinReliabilityScore: 0.99,
		RiskTolerance:       RiskNeutral,
	}
}

// Validate checks the policy bounds.
func (p PolicyConstraints) Validate() error {
	if p.MaxCostPerMWh <= 0 {
		return fmt.Errorf("max_cost_per_mwh must be > 0")
	}
	if p.MaxCarbonPerMWh <= 0 {
		return fmt.Errorf("max_carbon_per_mwh must be > 0")
	}
	if p.MinReliabilityScore < 0 || p.MinReliabilityScore > 1 {
		return fmt.Errorf("min_reliability_score must be within [0,1]")
	}
	return nil
}
