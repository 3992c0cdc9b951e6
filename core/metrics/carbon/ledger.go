// Package carbon keeps a daily ledger of the carbon and cost footprint of the
// strategies recommended by the decision engine.
package carbon

import "time"

// Record aggregates the recommendations of one strategy over one day.
type Record struct {
	Strategy     string
	Date         time.Time
	Decisions    int
	EnergyMWh    float64
	CarbonTonnes float64
	CostTotal    float64
}

// Intensity returns tonnes of CO2 per MWh served.
func (r Record) Intensity() float64 {
	if r.EnergyMWh == 0 {
		return 0
	}
	return r.CarbonTonnes / r.EnergyMWh
}

// AverageCost returns the mean cost per MWh served.
func (r Record) AverageCost() float64 {
	if r.EnergyMWh == 0 {
		return 0
	}
	return r.CostTotal / r.EnergyMWh
}

// Store persists ledger records.
type Store interface {
	Add(Record) error
	Query(strategy string, start, end time.Time) ([]Record, error)
	Prune(before time.Time) int
}

// Day aligns t to the start of its day in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
