package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDecision forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDecision(rec DecisionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordDecision(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordTelemetry forwards telemetry to the sinks that support it.
func (m *MultiSink) RecordTelemetry(rec TelemetryRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(TelemetryRecorder); ok {
			if err := r.RecordTelemetry(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStrategy forwards strategy events to the sinks that support it.
func (m *MultiSink) RecordStrategy(rec StrategyRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(StrategyRecorder); ok {
			if err := r.RecordStrategy(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
