package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
	"github.com/kilianp07/gridpilot/core/metrics/carbon"
)

func TestCarbonSink_RecordDecision(t *testing.T) {
	store := carbon.NewMemoryStore()
	s, err := NewCarbonSink(store, 0, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		rec := coremetrics.DecisionRecord{Strategy: "Green", ServedMW: 100, CarbonTonnes: 5, CostTotal: 4000, Time: at}
		if err := s.RecordDecision(rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	_ = s.RecordDecision(coremetrics.DecisionRecord{Strategy: "Green", Degraded: true, ServedMW: 999, Time: at})

	recs, _ := store.Query("Green", at, at)
	if len(recs) != 1 || recs[0].Decisions != 2 {
		t.Fatalf("unexpected ledger %+v", recs)
	}
	if v := testutil.ToFloat64(s.energy.WithLabelValues("Green", "2025-06-01")); v != 200 {
		t.Fatalf("energy gauge %v", v)
	}
	if v := testutil.ToFloat64(s.intensity.WithLabelValues("Green", "2025-06-01")); v != 0.05 {
		t.Fatalf("intensity gauge %v", v)
	}
	if v := testutil.ToFloat64(s.cost.WithLabelValues("Green", "2025-06-01")); v != 40 {
		t.Fatalf("cost gauge %v", v)
	}
}

func TestCarbonSink_Retention(t *testing.T) {
	store := carbon.NewMemoryStore()
	s, err := NewCarbonSink(store, 24*time.Hour, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	old := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_ = s.RecordDecision(coremetrics.DecisionRecord{Strategy: "LP", ServedMW: 1, Time: old})
	_ = s.RecordDecision(coremetrics.DecisionRecord{Strategy: "LP", ServedMW: 1, Time: old.AddDate(0, 0, 3)})
	recs, _ := store.Query("LP", old, old.AddDate(0, 0, 3))
	if len(recs) != 1 {
		t.Fatalf("expected old day pruned, got %d records", len(recs))
	}
}
