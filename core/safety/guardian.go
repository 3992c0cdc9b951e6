// Package safety checks a proposed dispatch against hard physical limits
// before it is recommended.
package safety

import (
	"fmt"
	"strings"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	DefaultCapacityBuffer = 1.1
	DefaultCriticalHealth = 0.2
)

// Mode selects what happens to an unsafe recommendation.
type Mode string

const (
	// ModeAdvisory annotates the recommendation with the violations.
	ModeAdvisory Mode = "advisory"
	// ModeEnforce replaces the recommendation with the best safe candidate.
	ModeEnforce Mode = "enforce"
)

// ParseMode converts a configuration value. Empty selects advisory.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAdvisory:
		return ModeAdvisory, nil
	case ModeEnforce:
		return ModeEnforce, nil
	default:
		return "", fmt.Errorf("unknown safety mode %q", s)
	}
}

// Config tunes the guardian.
type Config struct {
	Mode           string  `json:"mode"`
	CapacityBuffer float64 `json:"capacity_buffer"`
	CriticalHealth float64 `json:"critical_health"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = string(ModeAdvisory)
	}
	if c.CapacityBuffer < 1 {
		c.CapacityBuffer = DefaultCapacityBuffer
	}
	if c.CriticalHealth <= 0 {
		c.CriticalHealth = DefaultCriticalHealth
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	_, err := ParseMode(c.Mode)
	return err
}

// Guardian validates dispatch proposals.
type Guardian struct {
	mode     Mode
	buffer   float64
	critical float64
}

// NewGuardian builds a guardian from cfg.
func NewGuardian(cfg Config) (*Guardian, error) {
	cfg.SetDefaults()
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	return &Guardian{mode: mode, buffer: cfg.CapacityBuffer, critical: cfg.CriticalHealth}, nil
}

// Mode returns the configured mode.
func (g *Guardian) Mode() Mode { return g.mode }

// Validate checks a dispatch keyed by source type against the nameplate of
// each type and the health of every link.
func (g *Guardian) Validate(state model.InfrastructureState, dispatch map[model.EnergyType]float64) model.SafetyVerdict {
	v := model.SafetyVerdict{IsSafe: true, Sanitized: make(map[model.EnergyType]float64, len(dispatch))}
	for t, mw := range dispatch {
		v.Sanitized[t] = mw
	}
	nameplate := state.NameplateByType()
	for _, t := range model.EnergyTypes {
		proposed, ok := dispatch[t]
		if !ok {
			continue
		}
		limit := nameplate[t]
		if proposed > limit*g.buffer {
			v.IsSafe = false
			v.Violations = append(v.Violations,
				fmt.Sprintf("Source %s exceeds safety ceiling (%.1f > %.1fMW)", t, proposed, limit))
			v.Sanitized[t] = limit
		}
	}
	for _, l := range state.Links {
		if l.HealthIndex < g.critical {
			v.IsSafe = false
			v.Violations = append(v.Violations,
				fmt.Sprintf("Safety Override: Critical Health on %s. Limiting throughput.", l.ID))
		}
	}
	return v
}
