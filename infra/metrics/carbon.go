package metrics

import (
	"time"

	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
	"github.com/kilianp07/gridpilot/core/metrics/carbon"
	"github.com/prometheus/client_golang/prometheus"
)

// CarbonSink keeps a daily carbon ledger per recommended strategy and
// exposes the current day as Prometheus gauges.
type CarbonSink struct {
	store     carbon.Store
	retention time.Duration
	energy    *prometheus.GaugeVec
	intensity *prometheus.GaugeVec
	cost      *prometheus.GaugeVec
}

// NewCarbonSink creates a sink with gauges registered on reg. A zero
// retention keeps every day.
func NewCarbonSink(store carbon.Store, retention time.Duration, reg prometheus.Registerer) (*CarbonSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &CarbonSink{store: store, retention: retention}
	var err error
	if s.energy, err = Register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "strategy_served_energy_mwh",
		Help: "Daily energy served by recommended strategy",
	}, []string{"strategy", "day"})); err != nil {
		return nil, err
	}
	if s.intensity, err = Register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "strategy_carbon_intensity_tonnes_per_mwh",
		Help: "Daily carbon intensity by recommended strategy",
	}, []string{"strategy", "day"})); err != nil {
		return nil, err
	}
	if s.cost, err = Register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "strategy_average_cost_per_mwh",
		Help: "Daily average cost by recommended strategy",
	}, []string{"strategy", "day"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordDecision books the recommended strategy as one hour of served energy.
// Degraded outputs carry no dispatch and are ignored.
func (s *CarbonSink) RecordDecision(rec coremetrics.DecisionRecord) error {
	if rec.Degraded || rec.Strategy == "" {
		return nil
	}
	at := rec.Time
	if at.IsZero() {
		at = time.Now()
	}
	err := s.store.Add(carbon.Record{
		Strategy:     rec.Strategy,
		Date:         at,
		Decisions:    1,
		EnergyMWh:    rec.ServedMW,
		CarbonTonnes: rec.CarbonTonnes,
		CostTotal:    rec.CostTotal,
	})
	if err != nil {
		return err
	}
	if s.retention > 0 {
		s.store.Prune(at.Add(-s.retention))
	}
	records, err := s.store.Query(rec.Strategy, at, at)
	if err != nil || len(records) == 0 {
		return err
	}
	r := records[0]
	day := r.Date.Format("2006-01-02")
	s.energy.WithLabelValues(r.Strategy, day).Set(r.EnergyMWh)
	s.intensity.WithLabelValues(r.Strategy, day).Set(r.Intensity())
	s.cost.WithLabelValues(r.Strategy, day).Set(r.AverageCost())
	return nil
}
