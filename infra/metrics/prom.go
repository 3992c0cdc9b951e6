package metrics

import (
	"errors"
	"strconv"

	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records decisions, telemetry and strategy events in Prometheus metrics.
type PromSink struct {
	decisions   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	score       *prometheus.GaugeVec
	degraded    prometheus.Counter
	packets     *prometheus.CounterVec
	credibility prometheus.Histogram
	flags       *prometheus.CounterVec
	strategies  *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.decisions, err = Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "decision_evaluations_total",
		Help: "Decision evaluations by scenario, recommended strategy and safety outcome",
	}, []string{"scenario", "strategy", "safe"})); err != nil {
		return nil, err
	}
	if s.duration, err = Register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "decision_evaluation_seconds",
		Help:    "Time spent evaluating a decision request",
		Buckets: prometheus.DefBuckets,
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.score, err = Register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "decision_recommended_score",
		Help: "Score of the last recommended strategy per scenario",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.degraded, err = Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "decision_degraded_total",
		Help: "Evaluations that returned a degraded output",
	})); err != nil {
		return nil, err
	}
	if s.packets, err = Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_packets_total",
		Help: "Scored telemetry packets by verification and acceptance",
	}, []string{"verified", "accepted"})); err != nil {
		return nil, err
	}
	if s.credibility, err = Register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "telemetry_credibility",
		Help:    "Distribution of telemetry credibility scores",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})); err != nil {
		return nil, err
	}
	if s.flags, err = Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_flags_total",
		Help: "Trust flags raised on telemetry",
	}, []string{"flag"})); err != nil {
		return nil, err
	}
	if s.strategies, err = Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_strategy_events_total",
		Help: "Optimizer attempts, failures and fallbacks",
	}, []string{"action"})); err != nil {
		return nil, err
	}
	return s, nil
}

// Register registers c on reg, returning the collector already registered
// under the same descriptor when there is one.
func Register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordDecision updates the decision counters and latency histogram.
func (s *PromSink) RecordDecision(rec coremetrics.DecisionRecord) error {
	s.decisions.WithLabelValues(rec.Scenario, rec.Strategy, strconv.FormatBool(rec.Safe)).Inc()
	s.duration.WithLabelValues(rec.Scenario).Observe(rec.Duration.Seconds())
	if rec.Degraded {
		s.degraded.Inc()
		return nil
	}
	s.score.WithLabelValues(rec.Scenario).Set(rec.Score)
	return nil
}

// RecordTelemetry counts the packet and its flags.
func (s *PromSink) RecordTelemetry(rec coremetrics.TelemetryRecord) error {
	s.packets.WithLabelValues(strconv.FormatBool(rec.Verified), strconv.FormatBool(rec.Accepted)).Inc()
	s.credibility.Observe(rec.Credibility)
	for _, f := range rec.Flags {
		s.flags.WithLabelValues(f).Inc()
	}
	return nil
}

// RecordStrategy counts optimizer events by action.
func (s *PromSink) RecordStrategy(rec coremetrics.StrategyRecord) error {
	s.strategies.WithLabelValues(rec.Action).Inc()
	return nil
}
