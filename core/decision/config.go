package decision

// Config tunes the look-ahead stage.
type Config struct {
	// LookaheadHours is the degradation horizon.
	LookaheadHours float64 `json:"lookahead_hours"`
	// FailureThreshold is the failure probability that triggers a predictive alert.
	FailureThreshold float64 `json:"failure_threshold"`
	// DLRBoost multiplies grid and renewable capacity when line ratings add headroom.
	DLRBoost float64 `json:"dlr_boost"`
	// SubstationLoadFactor is the assumed loading of substation transformers.
	SubstationLoadFactor float64 `json:"substation_load_factor"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.LookaheadHours <= 0 {
		c.LookaheadHours = 1
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 0.3
	}
	if c.DLRBoost <= 0 {
		c.DLRBoost = 1.15
	}
	if c.SubstationLoadFactor <= 0 {
		c.SubstationLoadFactor = 0.8
	}
}
