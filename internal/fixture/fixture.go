// Package fixture loads grid snapshots and evaluation requests from YAML files.
package fixture

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridpilot/core/decision"
	"github.com/kilianp07/gridpilot/core/environment"
	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/core/prediction"
)

type SourceDef struct {
	Type            string  `yaml:"type"`
	CapacityMW      float64 `yaml:"capacity_mw"`
	CostPerMWh      float64 `yaml:"cost_per_mwh"`
	CarbonIntensity float64 `yaml:"carbon_intensity"`
	Availability    float64 `yaml:"availability"`
}

func (s SourceDef) ToModel() (model.EnergySource, error) {
	t, err := model.ParseEnergyType(s.Type)
	if err != nil {
		return model.EnergySource{}, err
	}
	return model.EnergySource{
		Type:            t,
		CapacityMW:      s.CapacityMW,
		CostPerMWh:      s.CostPerMWh,
		CarbonIntensity: s.CarbonIntensity,
		Availability:    s.Availability,
	}, nil
}

// HealthDef defaults to a new asset when omitted.
type HealthDef struct {
	HealthIndex *float64 `yaml:"health_index,omitempty"`
	PDActivity  float64  `yaml:"pd_activity,omitempty"`
}

func (h HealthDef) ToModel() model.AssetHealth {
	out := model.NewAssetHealth()
	if h.HealthIndex != nil {
		out.HealthIndex = *h.HealthIndex
	}
	out.PDActivity = h.PDActivity
	return out
}

type NodeDef struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	CapacityMW float64 `yaml:"capacity_mw"`
	LoadMW     float64 `yaml:"load_mw"`
	HealthDef  `yaml:",inline"`
}

func (n NodeDef) ToModel() (model.GridNode, error) {
	t, err := model.ParseNodeType(n.Type)
	if err != nil {
		return model.GridNode{}, fmt.Errorf("node %s: %w", n.ID, err)
	}
	return model.GridNode{
		ID:          n.ID,
		Name:        n.Name,
		Type:        t,
		CapacityMW:  n.CapacityMW,
		LoadMW:      n.LoadMW,
		AssetHealth: n.HealthDef.ToModel(),
	}, nil
}

type LinkDef struct {
	ID               string  `yaml:"id"`
	SourceID         string  `yaml:"source_id"`
	TargetID         string  `yaml:"target_id"`
	CapacityMW       float64 `yaml:"capacity_mw"`
	CurrentLoadMW    float64 `yaml:"current_load_mw"`
	StaticRatingMVA  float64 `yaml:"static_rating_mva"`
	DynamicRatingMVA float64 `yaml:"dynamic_rating_mva,omitempty"`
	HealthDef        `yaml:",inline"`
}

func (l LinkDef) ToModel() model.GridLink {
	return model.GridLink{
		ID:               l.ID,
		SourceID:         l.SourceID,
		TargetID:         l.TargetID,
		CapacityMW:       l.CapacityMW,
		CurrentLoadMW:    l.CurrentLoadMW,
		StaticRatingMVA:  l.StaticRatingMVA,
		DynamicRatingMVA: l.DynamicRatingMVA,
		AssetHealth:      l.HealthDef.ToModel(),
	}
}

type ReactorDef struct {
	CoreTemperatureC   float64 `yaml:"core_temperature_c"`
	CoolantPressureMPa float64 `yaml:"coolant_pressure_mpa"`
	RodInsertion       float64 `yaml:"rod_insertion"`
	PowerOutputMW      float64 `yaml:"power_output_mw"`
}

func (r ReactorDef) ToModel() model.ReactorState {
	return model.ReactorState(r)
}

type StateDef struct {
	Sources              []SourceDef `yaml:"sources"`
	Nodes                []NodeDef   `yaml:"nodes,omitempty"`
	Links                []LinkDef   `yaml:"links,omitempty"`
	StorageCapacityMWh   float64     `yaml:"storage_capacity_mwh"`
	CurrentStorageMWh    float64     `yaml:"current_storage_mwh"`
	ReliabilityThreshold float64     `yaml:"reliability_threshold,omitempty"`
	CarbonLimit          *float64    `yaml:"carbon_limit,omitempty"`
	Reactor              *ReactorDef `yaml:"reactor,omitempty"`
}

func (s StateDef) ToModel() (model.InfrastructureState, error) {
	st := model.InfrastructureState{
		StorageCapacityMWh:   s.StorageCapacityMWh,
		CurrentStorageMWh:    s.CurrentStorageMWh,
		ReliabilityThreshold: s.ReliabilityThreshold,
		CarbonLimit:          s.CarbonLimit,
	}
	for i, src := range s.Sources {
		m, err := src.ToModel()
		if err != nil {
			return st, fmt.Errorf("source %d: %w", i, err)
		}
		st.Sources = append(st.Sources, m)
	}
	for _, n := range s.Nodes {
		m, err := n.ToModel()
		if err != nil {
			return st, err
		}
		st.Nodes = append(st.Nodes, m)
	}
	for _, l := range s.Links {
		st.Links = append(st.Links, l.ToModel())
	}
	if s.Reactor != nil {
		r := s.Reactor.ToModel()
		st.Reactor = &r
	}
	return st, nil
}

type ScenarioDef struct {
	Type           string  `yaml:"type"`
	Description    string  `yaml:"description,omitempty"`
	ImpactFactor   float64 `yaml:"impact_factor,omitempty"`
	AffectedSource string  `yaml:"affected_source,omitempty"`
}

func (s ScenarioDef) ToModel() (model.Scenario, error) {
	typ := s.Type
	if typ == "" {
		typ = model.ScenarioNormal.String()
	}
	t, err := model.ParseScenarioType(typ)
	if err != nil {
		return model.Scenario{}, err
	}
	sc := model.Scenario{Type: t, Description: s.Description, ImpactFactor: s.ImpactFactor}
	if s.AffectedSource != "" {
		src, err := model.ParseEnergyType(s.AffectedSource)
		if err != nil {
			return model.Scenario{}, fmt.Errorf("affected_source: %w", err)
		}
		sc.AffectedSource = &src
	}
	return sc, nil
}

type PolicyDef struct {
	MaxCostPerMWh       float64 `yaml:"max_cost_per_mwh"`
	MaxCarbonPerMWh     float64 `yaml:"max_carbon_per_mwh"`
	MinReliabilityScore float64 `yaml:"min_reliability_score"`
	RiskTolerance       string  `yaml:"risk_tolerance"`
}

func (p PolicyDef) ToModel() (model.PolicyConstraints, error) {
	out := model.PolicyConstraints{
		MaxCostPerMWh:       p.MaxCostPerMWh,
		MaxCarbonPerMWh:     p.MaxCarbonPerMWh,
		MinReliabilityScore: p.MinReliabilityScore,
		RiskTolerance:       model.RiskNeutral,
	}
	if p.RiskTolerance != "" {
		r, err := model.ParseRiskTolerance(p.RiskTolerance)
		if err != nil {
			return out, err
		}
		out.RiskTolerance = r
	}
	return out, out.Validate()
}

type WeatherDef struct {
	TemperatureC  float64 `yaml:"temperature_c"`
	WindSpeedMPS  float64 `yaml:"wind_speed_mps"`
	IrradianceWM2 float64 `yaml:"irradiance_wm2,omitempty"`
	Condition     string  `yaml:"condition,omitempty"`
}

func (w WeatherDef) ToModel(ts time.Time) model.Weather {
	return model.Weather{
		Timestamp:     ts,
		TemperatureC:  w.TemperatureC,
		WindSpeedMPS:  w.WindSpeedMPS,
		IrradianceWM2: w.IrradianceWM2,
		Condition:     w.Condition,
	}
}

// Expected holds the assertions of a regression case. Zero values are not checked.
type Expected struct {
	Recommended    string   `yaml:"recommended,omitempty"`
	OneOf          []string `yaml:"one_of,omitempty"`
	Degraded       bool     `yaml:"degraded"`
	Safe           *bool    `yaml:"safe,omitempty"`
	MinReliability float64  `yaml:"min_reliability,omitempty"`
	MinConfidence  float64  `yaml:"min_confidence,omitempty"`
	Alternatives   int      `yaml:"alternatives,omitempty"`
	Risks          []string `yaml:"risks,omitempty"`
}

// Fixture is one grid snapshot with its evaluation context.
type Fixture struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	DemandMW    float64     `yaml:"demand_mw"`
	Scenario    ScenarioDef `yaml:"scenario"`
	State       StateDef    `yaml:"state"`
	Policy      *PolicyDef  `yaml:"policy,omitempty"`
	Weather     *WeatherDef `yaml:"weather,omitempty"`
	Forecast    []float64   `yaml:"forecast,omitempty"`
	SafetyMode  string      `yaml:"safety_mode,omitempty"`
	Expected    Expected    `yaml:"expected"`
}

var ErrNoSources = errors.New("fixture has no energy sources")

// Load reads and decodes a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// Parse decodes a fixture from YAML bytes.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	if len(fx.State.Sources) == 0 {
		return nil, ErrNoSources
	}
	if fx.DemandMW < 0 {
		return nil, fmt.Errorf("demand_mw must be >= 0")
	}
	return &fx, nil
}

// Request converts the fixture into an engine request.
func (f *Fixture) Request() (decision.Request, error) {
	st, err := f.State.ToModel()
	if err != nil {
		return decision.Request{}, err
	}
	sc, err := f.Scenario.ToModel()
	if err != nil {
		return decision.Request{}, err
	}
	if sc.Description == "" {
		sc.Description = f.Name
	}
	return decision.Request{State: st, Scenario: sc, DemandMW: f.DemandMW}, nil
}

// PolicyConstraints returns the fixture policy, nil when none is set.
func (f *Fixture) PolicyConstraints() (*model.PolicyConstraints, error) {
	if f.Policy == nil {
		return nil, nil
	}
	p, err := f.Policy.ToModel()
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	return &p, nil
}

// ForecastPoints turns the hourly demand list into points starting at start.
func (f *Fixture) ForecastPoints(start time.Time) []model.ForecastPoint {
	out := make([]model.ForecastPoint, len(f.Forecast))
	for i, mw := range f.Forecast {
		out[i] = model.ForecastPoint{Timestamp: start.Add(time.Duration(i) * time.Hour), DemandMW: mw}
	}
	return out
}

// Forecaster serves the fixture forecast. An empty list leaves demand untouched.
func (f *Fixture) Forecaster(start time.Time) prediction.Fixed {
	return prediction.Fixed(f.ForecastPoints(start))
}

// Environment serves the fixture weather. Without weather the engine keeps
// static line ratings.
func (f *Fixture) Environment(now time.Time) environment.Static {
	var s environment.Static
	if f.Weather != nil {
		w := f.Weather.ToModel(now)
		s.Conditions = &w
	}
	return s
}
