package model

// InfrastructureState is the per-request snapshot of the grid.
//
// The slices are treated as read-only once the snapshot is built. Variants
// produced by WithStorage and WithSources share every slice they do not
// change, so a handful of candidate strategies can be derived from one base
// snapshot without deep copies.
type InfrastructureState struct {
	Sources              []EnergySource `json:"sources"`
	Nodes                []GridNode     `json:"nodes"`
	Links                []GridLink     `json:"links"`
	StorageCapacityMWh   float64        `json:"storage_capacity_mwh"`
	CurrentStorageMWh    float64        `json:"current_storage_mwh"`
	ReliabilityThreshold float64        `json:"reliability_threshold"`
	CarbonLimit          *float64       `json:"carbon_limit,omitempty"`
	Reactor              *ReactorState  `json:"reactor,omitempty"`
}

// Clone returns a deep copy of the state.
func (s InfrastructureState) Clone() InfrastructureState {
	cp := s
	cp.Sources = append([]EnergySource(nil), s.Sources...)
	cp.Nodes = append([]GridNode(nil), s.Nodes...)
	cp.Links = append([]GridLink(nil), s.Links...)
	if s.CarbonLimit != nil {
		v := *s.CarbonLimit
		cp.CarbonLimit = &v
	}
	if s.Reactor != nil {
		r := *s.Reactor
		cp.Reactor = &r
	}
	return cp
}

// WithStorage returns a variant with a different stored energy level.
func (s InfrastructureState) WithStorage(mwh float64) InfrastructureState {
	s.CurrentStorageMWh = mwh
	return s
}

// WithSources returns a variant whose sources are rewritten by fn. Only the
// sources slice is copied.
func (s InfrastructureState) WithSources(fn func(EnergySource) EnergySource) InfrastructureState {
	src := make([]EnergySource, len(s.Sources))
	for i, es := range s.Sources {
		src[i] = fn(es)
	}
	s.Sources = src
	return s
}

// NameplateByType sums source capacities per energy type.
func (s InfrastructureState) NameplateByType() map[EnergyType]float64 {
	out := make(map[EnergyType]float64, len(s.Sources))
	for _, src := range s.Sources {
		out[src.Type] += src.CapacityMW
	}
	return out
}

// ReactorState is the instantaneous condition of the small modular reactor.
type ReactorState struct {
	CoreTemperatureC   float64 `json:"core_temperature_c"`
	CoolantPressureMPa float64 `json:"coolant_pressure_mpa"`
	RodInsertion       float64 `json:"rod_insertion"` // 0 withdrawn, 1 fully inserted
	PowerOutputMW      float64 `json:"power_output_mw"`
}
