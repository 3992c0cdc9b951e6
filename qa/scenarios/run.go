// Package scenarios replays YAML grid fixtures through the decision engine
// and checks the recommendation against the expectations of each file.
package scenarios

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/gridpilot/core/decision"
	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/core/physics"
	"github.com/kilianp07/gridpilot/core/policy"
	"github.com/kilianp07/gridpilot/core/safety"
	"github.com/kilianp07/gridpilot/infra/metrics"
	"github.com/kilianp07/gridpilot/internal/eventbus"
	"github.com/kilianp07/gridpilot/internal/fixture"
)

var epoch = time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC)

// NewEngine builds a deterministic engine for fx.
func NewEngine(fx *fixture.Fixture, bus eventbus.Publisher) (*decision.Engine, error) {
	p, err := fx.PolicyConstraints()
	if err != nil {
		return nil, err
	}
	g, err := safety.NewGuardian(safety.Config{Mode: fx.SafetyMode})
	if err != nil {
		return nil, err
	}
	return decision.NewEngine(decision.Config{}, decision.Dependencies{
		Policies:    policy.NewStore(p),
		Forecaster:  fx.Forecaster(epoch),
		Environment: fx.Environment(epoch),
		Guardian:    g,
		Degradation: physics.NewDegradationModel(rand.NewPCG(1, 2)),
		Bus:         bus,
	})
}

func RunScenario(t *testing.T, fx *fixture.Fixture) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	metrics.StartEventCollector(ctx, bus, sink)

	eng, err := NewEngine(fx, bus)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	req, err := fx.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	out := eng.Evaluate(ctx, req)
	check(t, fx.Expected, out)

	deadline := time.Now().Add(time.Second)
	for testutil.CollectAndCount(reg, "decision_evaluations_total") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("decision %s was not recorded", out.ID)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func check(t *testing.T, exp fixture.Expected, out model.DecisionOutput) {
	t.Helper()
	if out.Degraded != exp.Degraded {
		t.Fatalf("degraded = %v, want %v (risks %v)", out.Degraded, exp.Degraded, out.Risks)
	}
	if exp.Recommended != "" && out.RecommendedAction != exp.Recommended {
		t.Errorf("recommended %q, want %q", out.RecommendedAction, exp.Recommended)
	}
	if len(exp.OneOf) > 0 && !slices.Contains(exp.OneOf, out.RecommendedAction) {
		t.Errorf("recommended %q, want one of %v", out.RecommendedAction, exp.OneOf)
	}
	if exp.Alternatives > 0 && len(out.Alternatives) != exp.Alternatives {
		t.Errorf("expected %d alternatives, got %d", exp.Alternatives, len(out.Alternatives))
	}
	if out.Confidence < exp.MinConfidence {
		t.Errorf("confidence %.2f below %.2f", out.Confidence, exp.MinConfidence)
	}
	if exp.MinReliability > 0 {
		if out.Recommended == nil {
			t.Fatalf("no recommended rank")
		}
		if out.Recommended.ReliabilityScore < exp.MinReliability {
			t.Errorf("reliability %.3f below %.3f", out.Recommended.ReliabilityScore, exp.MinReliability)
		}
	}
	if exp.Safe != nil {
		if out.Safety == nil {
			t.Fatalf("no safety verdict")
		}
		if out.Safety.IsSafe != *exp.Safe {
			t.Errorf("safe = %v, want %v (%v)", out.Safety.IsSafe, *exp.Safe, out.Safety.Violations)
		}
	}
	for _, r := range exp.Risks {
		if !slices.Contains(out.Risks, r) {
			t.Errorf("missing risk %q in %v", r, out.Risks)
		}
	}
}
