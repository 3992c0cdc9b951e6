package model

// TradeOff qualifies one aspect of a strategy.
type TradeOff struct {
	Aspect      string `json:"aspect"` // Cost, Reliability, Carbon
	Impact      string `json:"impact"` // High, Medium, Low
	Description string `json:"description"`
}

// DecisionRank is one scored candidate strategy.
type DecisionRank struct {
	OptionName       string     `json:"option_name"`
	Score            float64    `json:"score"`
	CostImpact       float64    `json:"cost_impact"`
	ReliabilityScore float64    `json:"reliability_score"`
	CarbonImpact     float64    `json:"carbon_impact"`
	RiskLevel        string     `json:"risk_level"`
	Reasoning        string     `json:"reasoning"`
	TradeOffs        []TradeOff `json:"trade_offs"`
}

// SafetyVerdict is the guardian assessment of a proposed dispatch.
type SafetyVerdict struct {
	IsSafe     bool                   `json:"is_safe"`
	Violations []string               `json:"violations"`
	Sanitized  map[EnergyType]float64 `json:"sanitized_dispatch"`
}

// DecisionOutput is the recommendation returned to callers.
type DecisionOutput struct {
	ID                string                 `json:"id"`
	Summary           string                 `json:"summary"`
	RecommendedAction string                 `json:"recommended_action"`
	Recommended       *DecisionRank          `json:"recommended,omitempty"`
	Alternatives      []DecisionRank         `json:"alternatives"`
	Risks             []string               `json:"risks"`
	Assumptions       []string               `json:"assumptions"`
	Confidence        float64                `json:"confidence_level"`
	NextSteps         []string               `json:"next_steps"`
	PrimaryFactor     string                 `json:"primary_factor"`
	Rationale         string                 `json:"rationale,omitempty"`
	Dispatch          map[EnergyType]float64 `json:"dispatch,omitempty"`
	Safety            *SafetyVerdict         `json:"safety,omitempty"`
	Degraded          bool                   `json:"degraded"`
}
