package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/gridpilot/core/events"
	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
	"github.com/kilianp07/gridpilot/infra/logger"
	"github.com/kilianp07/gridpilot/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev, time.Now()); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event, now time.Time) error {
	switch e := ev.(type) {
	case events.DecisionEvent:
		return sink.RecordDecision(decisionRecord(e, now))
	case events.TelemetryEvent:
		if r, ok := sink.(coremetrics.TelemetryRecorder); ok {
			return r.RecordTelemetry(coremetrics.TelemetryRecord{
				AssetID:     e.Packet.AssetID,
				Value:       e.Packet.Value,
				Credibility: e.Packet.CredibilityScore,
				Verified:    e.Packet.Verified,
				Accepted:    e.Accepted,
				Flags:       e.Packet.Flags,
				Time:        e.Packet.Timestamp,
			})
		}
	case events.StrategyEvent:
		if r, ok := sink.(coremetrics.StrategyRecorder); ok {
			rec := coremetrics.StrategyRecord{Scenario: e.Scenario.String(), Action: e.Action, Time: now}
			if e.Err != nil {
				rec.Error = e.Err.Error()
			}
			return r.RecordStrategy(rec)
		}
	}
	return nil
}

// decisionRecord flattens a decision event into a metrics record.
func decisionRecord(e events.DecisionEvent, now time.Time) coremetrics.DecisionRecord {
	out := e.Output
	rec := coremetrics.DecisionRecord{
		DecisionID: out.ID,
		Scenario:   e.Scenario.String(),
		Strategy:   out.RecommendedAction,
		Confidence: out.Confidence,
		Safe:       out.Safety == nil || out.Safety.IsSafe,
		Degraded:   out.Degraded,
		Duration:   e.Duration,
		Time:       now,
	}
	if r := out.Recommended; r != nil {
		rec.Score = r.Score
		rec.CostTotal = r.CostImpact
		rec.CarbonTonnes = r.CarbonImpact
		rec.Reliability = r.ReliabilityScore
	}
	for _, mw := range out.Dispatch {
		rec.ServedMW += mw
	}
	return rec
}
