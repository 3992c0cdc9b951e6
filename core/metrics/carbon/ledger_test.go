package carbon

import (
	"testing"
	"time"
)

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC))
	if err := s.Add(Record{Strategy: "green", Date: d, EnergyMWh: 100, CarbonTonnes: 2, CostTotal: 3000}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{Strategy: "green", Date: d.Add(2 * time.Hour), EnergyMWh: 50, CarbonTonnes: 1, CostTotal: 1500}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(Record{Strategy: "baseline", Date: d, EnergyMWh: 10}); err != nil {
		t.Fatalf("add3: %v", err)
	}
	recs, err := s.Query("green", d, d)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	r := recs[0]
	if r.Decisions != 2 || r.EnergyMWh != 150 || r.CarbonTonnes != 3 {
		t.Fatalf("unexpected aggregate %+v", r)
	}
	if r.Intensity() != 0.02 || r.AverageCost() != 30 {
		t.Fatalf("intensity %v cost %v", r.Intensity(), r.AverageCost())
	}
}

func TestMemoryStore_QueryOrderAndPrune(t *testing.T) {
	s := NewMemoryStore()
	base := Day(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	for i := 2; i >= 0; i-- {
		_ = s.Add(Record{Strategy: "lp", Date: base.AddDate(0, 0, i), EnergyMWh: 1})
	}
	recs, _ := s.Query("lp", base, base.AddDate(0, 0, 5))
	if len(recs) != 3 || !recs[0].Date.Equal(base) {
		t.Fatalf("expected 3 ordered records, got %+v", recs)
	}
	if n := s.Prune(base.AddDate(0, 0, 2)); n != 2 {
		t.Fatalf("expected 2 pruned, got %d", n)
	}
	recs, _ = s.Query("lp", base, base.AddDate(0, 0, 5))
	if len(recs) != 1 {
		t.Fatalf("expected 1 record left, got %d", len(recs))
	}
}

func TestRecord_EmptyRatios(t *testing.T) {
	var r Record
	if r.Intensity() != 0 || r.AverageCost() != 0 {
		t.Fatal("empty record should report zero ratios")
	}
}
