package physics

import (
	"math"

	"github.com/kilianp07/gridpilot/core/model"
)

// ReactorConfig describes the operating envelope of the reactor.
type ReactorConfig struct {
	RatedMW         float64 `json:"rated_mw"`
	BaseTempC       float64 `json:"base_temp_c"`
	TripTempC       float64 `json:"trip_temp_c"`
	RodGain         float64 `json:"rod_gain"`
	HeatCoefficient float64 `json:"heat_coefficient"`
	CoolCoefficient float64 `json:"cool_coefficient"`
	BasePressureMPa float64 `json:"base_pressure_mpa"`
	PressurePerC    float64 `json:"pressure_per_c"`
	MinStableMW     float64 `json:"min_stable_mw"`
	RampMWPerMinute float64 `json:"ramp_mw_per_minute"`
}

// BSR220 is the envelope of the 220 MW small modular reactor.
func BSR220() ReactorConfig {
	return ReactorConfig{
		RatedMW:         220,
		BaseTempC:       285,
		TripTempC:       700,
		RodGain:         0.1,
		HeatCoefficient: 0.05,
		CoolCoefficient: 0.02,
		BasePressureMPa: 15.5,
		PressurePerC:    0.01,
		MinStableMW:     50,
		RampMWPerMinute: 5,
	}
}

// DispatchConstraints bound what the dispatcher may ask from the reactor.
type DispatchConstraints struct {
	MinMW            float64 `json:"min_mw"`
	MaxMW            float64 `json:"max_mw"`
	RampRateMWPerMin float64 `json:"ramp_rate_mw_per_min"`
}

// ReactorController simulates rod control and core thermal behaviour.
type ReactorController struct {
	cfg ReactorConfig
}

// NewReactorController returns a controller for cfg.
func NewReactorController(cfg ReactorConfig) *ReactorController {
	return &ReactorController{cfg: cfg}
}

// Config returns the controller envelope.
func (c *ReactorController) Config() ReactorConfig { return c.cfg }

// Nominal returns the reactor at base temperature with rods withdrawn.
func (c *ReactorController) Nominal() model.ReactorState {
	return model.ReactorState{
		CoreTemperatureC:   c.cfg.BaseTempC,
		CoolantPressureMPa: c.cfg.BasePressureMPa,
		PowerOutputMW:      c.cfg.RatedMW,
	}
}

// Tripped reports whether the core is at or above the trip temperature.
func (c *ReactorController) Tripped(s model.ReactorState) bool {
	return s.CoreTemperatureC >= c.cfg.TripTempC
}

// Step advances the reactor by dtSeconds while steering towards targetMW.
func (c *ReactorController) Step(s model.ReactorState, targetMW, dtSeconds float64) model.ReactorState {
	if dtSeconds < 0 {
		dtSeconds = 0
	}
	if c.Tripped(s) {
		s.RodInsertion = 1
		s.PowerOutputMW = 0
	} else {
		want := 1 - model.Clamp01(targetMW/c.cfg.RatedMW)
		s.RodInsertion = model.Clamp01(s.RodInsertion + c.cfg.RodGain*(want-s.RodInsertion))
		s.PowerOutputMW = c.cfg.RatedMW * (1 - s.RodInsertion)
	}

	heat := c.cfg.HeatCoefficient * s.PowerOutputMW
	cool := c.cfg.CoolCoefficient * (s.CoreTemperatureC - c.cfg.BaseTempC)
	s.CoreTemperatureC += (heat - cool) * dtSeconds
	s.CoolantPressureMPa = c.cfg.BasePressureMPa + c.cfg.PressurePerC*(s.CoreTemperatureC-c.cfg.BaseTempC)

	if c.Tripped(s) {
		s.RodInsertion = 1
		s.PowerOutputMW = 0
	}
	return s
}

// ThermalMargin is the fraction of headroom left before the trip temperature.
func (c *ReactorController) ThermalMargin(s model.ReactorState) float64 {
	span := c.cfg.TripTempC - c.cfg.BaseTempC
	if span <= 0 {
		return 0
	}
	return model.Clamp01((c.cfg.TripTempC - s.CoreTemperatureC) / span)
}

// DispatchConstraints derives the dispatch envelope from the current state.
// The ceiling shrinks quadratically with the lost margin and reaches zero at
// the trip temperature.
func (c *ReactorController) DispatchConstraints(s model.ReactorState) DispatchConstraints {
	maxMW := 0.0
	if !c.Tripped(s) {
		lost := 1 - c.ThermalMargin(s)
		maxMW = c.cfg.RatedMW * (1 - lost*lost)
	}
	return DispatchConstraints{
		MinMW:            math.Min(c.cfg.MinStableMW, maxMW),
		MaxMW:            maxMW,
		RampRateMWPerMin: c.cfg.RampMWPerMinute,
	}
}
