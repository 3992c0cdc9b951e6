package metrics

import "time"

// DecisionRecord summarises one evaluation of the decision engine.
type DecisionRecord struct {
	DecisionID   string
	Scenario     string
	Strategy     string
	Score        float64
	CostTotal    float64
	CarbonTonnes float64
	Reliability  float64
	ServedMW     float64
	Confidence   float64
	Safe         bool
	Degraded     bool
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records decision outcomes for observability purposes.
type MetricsSink interface {
	RecordDecision(rec DecisionRecord) error
}

// TelemetryRecord is a measurement after trust scoring.
type TelemetryRecord struct {
	AssetID     string
	Value       float64
	Credibility float64
	Verified    bool
	Accepted    bool
	Flags       []string
	Time        time.Time
}

// TelemetryRecorder records scored telemetry.
type TelemetryRecorder interface {
	RecordTelemetry(rec TelemetryRecord) error
}

// StrategyRecord captures optimizer attempts and fallbacks.
type StrategyRecord struct {
	Scenario string
	Action   string
	Error    string
	Time     time.Time
}

// StrategyRecorder records optimizer strategy events.
type StrategyRecorder interface {
	RecordStrategy(rec StrategyRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDecision(DecisionRecord) error   { return nil }
func (NopSink) RecordTelemetry(TelemetryRecord) error { return nil }
func (NopSink) RecordStrategy(StrategyRecord) error   { return nil }
