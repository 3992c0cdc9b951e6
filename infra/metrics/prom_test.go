package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
)

func TestPromSink_RecordDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	rec := coremetrics.DecisionRecord{Scenario: "normal", Strategy: "Green", Score: 0.8, Safe: true, Duration: 20 * time.Millisecond}
	if err := s.RecordDecision(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordDecision(coremetrics.DecisionRecord{Scenario: "normal", Degraded: true, Safe: true}); err != nil {
		t.Fatalf("record degraded: %v", err)
	}
	if v := testutil.ToFloat64(s.decisions.WithLabelValues("normal", "Green", "true")); v != 1 {
		t.Fatalf("expected 1 decision got %v", v)
	}
	if v := testutil.ToFloat64(s.score.WithLabelValues("normal")); v != 0.8 {
		t.Fatalf("degraded output must not overwrite score, got %v", v)
	}
	if v := testutil.ToFloat64(s.degraded); v != 1 {
		t.Fatalf("expected 1 degraded got %v", v)
	}
	if n := testutil.CollectAndCount(s.duration); n != 1 {
		t.Fatalf("expected one duration series got %d", n)
	}
}

func TestPromSink_TelemetryAndStrategy(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	_ = s.RecordTelemetry(coremetrics.TelemetryRecord{AssetID: "L1", Credibility: 0.1, Flags: []string{"adversarial alert"}})
	_ = s.RecordTelemetry(coremetrics.TelemetryRecord{AssetID: "L1", Credibility: 1, Verified: true, Accepted: true})
	_ = s.RecordStrategy(coremetrics.StrategyRecord{Action: "lp_failure"})

	if v := testutil.ToFloat64(s.packets.WithLabelValues("true", "true")); v != 1 {
		t.Fatalf("verified packets %v", v)
	}
	if v := testutil.ToFloat64(s.flags.WithLabelValues("adversarial alert")); v != 1 {
		t.Fatalf("flag count %v", v)
	}
	if v := testutil.ToFloat64(s.strategies.WithLabelValues("lp_failure")); v != 1 {
		t.Fatalf("strategy count %v", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = a.RecordStrategy(coremetrics.StrategyRecord{Action: "merit_fallback"})
	_ = b.RecordStrategy(coremetrics.StrategyRecord{Action: "merit_fallback"})
	if v := testutil.ToFloat64(b.strategies.WithLabelValues("merit_fallback")); v != 2 {
		t.Fatalf("expected shared counter at 2 got %v", v)
	}
}
