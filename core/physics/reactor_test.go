package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/gridpilot/core/model"
)

func TestMaxMWStrictlyDecreasesWithMargin(t *testing.T) {
	c := NewReactorController(BSR220())
	prev := c.DispatchConstraints(model.ReactorState{CoreTemperatureC: 285}).MaxMW
	assert.InDelta(t, 220, prev, 1e-9)
	for temp := 300.0; temp < 700; temp += 15 {
		cur := c.DispatchConstraints(model.ReactorState{CoreTemperatureC: temp}).MaxMW
		if cur >= prev {
			t.Fatalf("max_mw at %v°C = %v, not below %v", temp, cur, prev)
		}
		prev = cur
	}
}

func TestTripZeroesDispatch(t *testing.T) {
	c := NewReactorController(BSR220())
	for _, temp := range []float64{700, 900} {
		dc := c.DispatchConstraints(model.ReactorState{CoreTemperatureC: temp})
		assert.Zero(t, dc.MaxMW)
		assert.Zero(t, dc.MinMW)
		assert.Equal(t, 5.0, dc.RampRateMWPerMin)
	}
}

func TestMinMWNeverAboveMax(t *testing.T) {
	c := NewReactorController(BSR220())
	dc := c.DispatchConstraints(model.ReactorState{CoreTemperatureC: 690})
	assert.LessOrEqual(t, dc.MinMW, dc.MaxMW)
}

func TestStepMovesRodsTowardTarget(t *testing.T) {
	c := NewReactorController(BSR220())
	s := model.ReactorState{CoreTemperatureC: 285, RodInsertion: 1}
	s = c.Step(s, 110, 1)
	// target insertion 0.5, ten percent of the gap closed
	assert.InDelta(t, 0.95, s.RodInsertion, 1e-9)
	assert.InDelta(t, 11, s.PowerOutputMW, 1e-9)
	assert.Greater(t, s.CoreTemperatureC, 285.0)
	assert.InDelta(t, 15.5+0.01*(s.CoreTemperatureC-285), s.CoolantPressureMPa, 1e-9)
}

func TestStepScramsAtTrip(t *testing.T) {
	c := NewReactorController(BSR220())
	s := c.Nominal()
	tripped := false
	for i := 0; i < 600; i++ {
		s = c.Step(s, 220, 1)
		if c.Tripped(s) {
			tripped = true
			break
		}
	}
	if !tripped {
		t.Fatalf("full power never reached trip, temp %v", s.CoreTemperatureC)
	}
	assert.Equal(t, 1.0, s.RodInsertion)
	assert.Zero(t, s.PowerOutputMW)
	assert.Zero(t, c.ThermalMargin(s))
}
