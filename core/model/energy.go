package model

import (
	"fmt"
	"strings"
)

// EnergyType identifies the technology behind an energy source.
type EnergyType int

const (
	EnergySolar EnergyType = iota
	EnergyWind
	EnergyGrid
	EnergyBattery
	EnergyNuclear
)

// EnergyTypes lists every known energy type in declaration order.
var EnergyTypes = []EnergyType{EnergySolar, EnergyWind, EnergyGrid, EnergyBattery, EnergyNuclear}

// String returns the lowercase wire name of the energy type.
func (t EnergyType) String() string {
	switch t {
	case EnergySolar:
		return "solar"
	case EnergyWind:
		return "wind"
	case EnergyGrid:
		return "grid"
	case EnergyBattery:
		return "battery"
	case EnergyNuclear:
		return "nuclear"
	default:
		return "unknown"
	}
}

// ParseEnergyType converts a wire name into an EnergyType.
func ParseEnergyType(s string) (EnergyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solar":
		return EnergySolar, nil
	case "wind":
		return EnergyWind, nil
	case "grid":
		return EnergyGrid, nil
	case "battery":
		return EnergyBattery, nil
	case "nuclear":
		return EnergyNuclear, nil
	default:
		return 0, fmt.Errorf("unknown energy type %q", s)
	}
}

// IsRenewable reports whether the source is weather driven.
func (t EnergyType) IsRenewable() bool {
	switch t {
	case EnergySolar, EnergyWind:
		return true
	case EnergyGrid, EnergyBattery, EnergyNuclear:
		return false
	default:
		return false
	}
}

// IsLowCarbon reports whether the source is favoured by green dispatch.
func (t EnergyType) IsLowCarbon() bool {
	switch t {
	case EnergySolar, EnergyWind, EnergyNuclear:
		return true
	case EnergyGrid, EnergyBattery:
		return false
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler so the type can be used as a JSON map key.
func (t EnergyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EnergyType) UnmarshalText(b []byte) error {
	v, err := ParseEnergyType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// EnergySource is a dispatchable supply of a given type.
type EnergySource struct {
	Type            EnergyType `json:"type"`
	CapacityMW      float64    `json:"capacity_mw"`
	CostPerMWh      float64    `json:"cost_per_mwh"`
	CarbonIntensity float64    `json:"carbon_intensity"` // tCO2 per MWh
	Availability    float64    `json:"availability"`     // fraction in [0,1]
}

// AvailableMW returns the capacity scaled by the availability clamped to [0,1].
func (s EnergySource) AvailableMW() float64 {
	return s.CapacityMW * Clamp01(s.Availability)
}

// Clamp01 limits v to the unit interval. NaN maps to 0.
func Clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
