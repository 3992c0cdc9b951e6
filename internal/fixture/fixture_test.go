package fixture

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpilot/core/model"
)

func TestLoadHeatwave(t *testing.T) {
	fx, err := Load("testdata/heatwave.yaml")
	require.NoError(t, err)
	assert.Equal(t, "heatwave evening peak", fx.Name)

	req, err := fx.Request()
	require.NoError(t, err)
	assert.Equal(t, 400.0, req.DemandMW)
	assert.Equal(t, model.ScenarioNormal, req.Scenario.Type)
	assert.Equal(t, "steady", req.Scenario.Description)
	require.Len(t, req.State.Sources, 4)
	assert.Equal(t, model.EnergyNuclear, req.State.Sources[3].Type)
	assert.Equal(t, 0.9, req.State.Sources[3].Availability)
	require.Len(t, req.State.Nodes, 1)
	assert.Equal(t, model.NodeSubstation, req.State.Nodes[0].Type)
	assert.Equal(t, 1.0, req.State.Nodes[0].HealthIndex)
	require.Len(t, req.State.Links, 1)
	assert.Equal(t, 100.0, req.State.Links[0].StaticRatingMVA)
	assert.Nil(t, req.State.Reactor)

	require.NotNil(t, fx.Weather)
	w := fx.Weather.ToModel(time.Unix(0, 0))
	assert.Equal(t, 40.0, w.TemperatureC)

	p, err := fx.PolicyConstraints()
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 3, fx.Expected.Alternatives)

	env := fx.Environment(time.Unix(0, 0))
	require.NotNil(t, env.Conditions)
	assert.Equal(t, 0.2, env.Conditions.WindSpeedMPS)
	assert.Empty(t, fx.Forecaster(time.Unix(0, 0)))
}

func TestParseFullFixture(t *testing.T) {
	data := []byte(`
name: wind trip
demand_mw: 80
scenario:
  type: supply_failure
  impact_factor: 0.5
  affected_source: wind
state:
  storage_capacity_mwh: 50
  current_storage_mwh: 10
  carbon_limit: 0.3
  sources:
    - {type: wind, capacity_mw: 100, cost_per_mwh: 20, availability: 1}
  links:
    - {id: l1, capacity_mw: 100, static_rating_mva: 90, health_index: 0.4, pd_activity: 120}
  reactor:
    core_temperature_c: 300
    coolant_pressure_mpa: 15
    rod_insertion: 0.5
    power_output_mw: 150
policy:
  max_cost_per_mwh: 90
  max_carbon_per_mwh: 0.4
  min_reliability_score: 0.95
  risk_tolerance: averse
forecast: [100, 110, 120]
`)
	fx, err := Parse(data)
	require.NoError(t, err)

	req, err := fx.Request()
	require.NoError(t, err)
	assert.Equal(t, "wind trip", req.Scenario.Description)
	require.NotNil(t, req.Scenario.AffectedSource)
	assert.True(t, req.Scenario.Affects(model.EnergyWind))
	require.NotNil(t, req.State.CarbonLimit)
	assert.Equal(t, 0.3, *req.State.CarbonLimit)
	require.NotNil(t, req.State.Reactor)
	assert.Equal(t, 150.0, req.State.Reactor.PowerOutputMW)
	assert.Equal(t, 0.4, req.State.Links[0].HealthIndex)
	assert.Equal(t, 120.0, req.State.Links[0].PDActivity)

	p, err := fx.PolicyConstraints()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.RiskAverse, p.RiskTolerance)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := fx.ForecastPoints(start)
	require.Len(t, pts, 3)
	assert.Equal(t, start.Add(2*time.Hour), pts[2].Timestamp)
	assert.Equal(t, 120.0, pts[2].DemandMW)
	assert.Len(t, fx.Forecaster(start).Forecast24h(context.Background()), 3)
	assert.Nil(t, fx.Environment(start).Conditions)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"no sources":     "name: x\ndemand_mw: 10\n",
		"negative":       "demand_mw: -1\nstate:\n  sources:\n    - {type: grid, capacity_mw: 1}\n",
		"malformed yaml": "state: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	_, err := Parse([]byte("name: x\n"))
	assert.True(t, errors.Is(err, ErrNoSources))
}

func TestRequestRejectsUnknownEnums(t *testing.T) {
	base := "state:\n  sources:\n    - {type: %s, capacity_mw: 1}\nscenario:\n  type: %s\n"
	cases := []struct {
		name, src, scenario string
	}{
		{"source", "coal", "normal"},
		{"scenario", "grid", "blackout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx, err := Parse([]byte(fmt.Sprintf(base, tc.src, tc.scenario)))
			require.NoError(t, err)
			_, err = fx.Request()
			assert.Error(t, err)
		})
	}
}

func TestPolicyValidation(t *testing.T) {
	fx := &Fixture{Policy: &PolicyDef{MaxCostPerMWh: 0, MaxCarbonPerMWh: 1, MinReliabilityScore: 0.5}}
	_, err := fx.PolicyConstraints()
	assert.Error(t, err)

	fx.Policy = &PolicyDef{MaxCostPerMWh: 10, MaxCarbonPerMWh: 1, RiskTolerance: "reckless"}
	_, err = fx.PolicyConstraints()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
