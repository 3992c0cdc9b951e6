package trust

import (
	"fmt"
	"math"
	"time"
)

// DefaultMaxRateOfChange is the physical ceiling in units per second.
const DefaultMaxRateOfChange = 500.0

const (
	FlagBaseline         = "baseline established"
	FlagTimestampAnomaly = "timestamp anomaly"
	FlagAdversarial      = "adversarial alert"
)

type lastSample struct {
	value float64
	ts    time.Time
	set   bool
}

// Verdict is the outcome of the adversarial filter for one sample.
type Verdict struct {
	Valid        bool
	RateOfChange float64
	Reason       string
	Flags        []string
}

// AdversarialFilter rejects samples whose rate of change cannot be physical.
type AdversarialFilter struct {
	maxRate float64
	last    *keyed[lastSample]
}

// NewAdversarialFilter creates a filter. A non-positive ceiling selects the default.
func NewAdversarialFilter(maxRate float64) *AdversarialFilter {
	if maxRate <= 0 {
		maxRate = DefaultMaxRateOfChange
	}
	return &AdversarialFilter{maxRate: maxRate, last: newKeyed[lastSample]()}
}

// Check evaluates a sample and updates the baseline when the sample is accepted.
func (f *AdversarialFilter) Check(assetID string, value float64, ts time.Time) Verdict {
	var v Verdict
	f.last.with(assetID, func(ls *lastSample, _ bool) {
		if !ls.set {
			*ls = lastSample{value: value, ts: ts, set: true}
			v = Verdict{Valid: true, Reason: FlagBaseline}
			return
		}
		dt := ts.Sub(ls.ts).Seconds()
		if dt <= 0 {
			v = Verdict{Valid: false, Reason: FlagTimestampAnomaly, Flags: []string{FlagTimestampAnomaly}}
			return
		}
		rate := math.Abs(value-ls.value) / dt
		if rate > f.maxRate {
			v = Verdict{
				Valid:        false,
				RateOfChange: rate,
				Reason:       fmt.Sprintf("rate of change %.1f/s exceeds %.1f/s", rate, f.maxRate),
				Flags:        []string{FlagAdversarial},
			}
			return
		}
		ls.value = value
		ls.ts = ts
		v = Verdict{Valid: true, RateOfChange: rate}
	})
	return v
}

// Forget drops the baseline of an asset.
func (f *AdversarialFilter) Forget(assetID string) { f.last.reset(assetID) }
