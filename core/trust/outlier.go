package trust

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	FlagOutlier = "statistical outlier"
	FlagJitter  = "jitter"

	// minOutlierHistory is the sample count below which z-scores are not computed.
	minOutlierHistory = 30

	outlierPenalty = 0.5
	jitterPenalty  = 0.8
)

// OutlierStatus describes the latest sample relative to its recent history.
type OutlierStatus struct {
	ZScore  float64
	Outlier bool
	Jitter  float64
	Jittery bool
}

type outlierState struct {
	hist driftState
	last float64
	seen bool
}

// OutlierDetector runs a z-score test against the recent samples of each
// asset and bounds the step between consecutive samples. A zero sigma or
// jitter ceiling disables the corresponding check.
type OutlierDetector struct {
	window    int
	sigma     float64
	maxJitter float64
	states    *keyed[outlierState]
}

// NewOutlierDetector keeps window samples per asset.
func NewOutlierDetector(window int, sigma, maxJitter float64) *OutlierDetector {
	if window <= minOutlierHistory {
		window = DefaultDriftWindow
	}
	return &OutlierDetector{window: window, sigma: sigma, maxJitter: maxJitter, states: newKeyed[outlierState]()}
}

// Enabled reports whether any check is active.
func (o *OutlierDetector) Enabled() bool { return o.sigma > 0 || o.maxJitter > 0 }

// Observe evaluates value against the history of assetID, then records it.
func (o *OutlierDetector) Observe(assetID string, value float64) OutlierStatus {
	var st OutlierStatus
	o.states.with(assetID, func(s *outlierState, _ bool) {
		if s.seen {
			st.Jitter = math.Abs(value - s.last)
			st.Jittery = o.maxJitter > 0 && st.Jitter > o.maxJitter
		}
		if o.sigma > 0 && len(s.hist.buf) > minOutlierHistory {
			mean, std := stat.PopMeanStdDev(s.hist.buf, nil)
			if std > 0 {
				st.ZScore = math.Abs(value-mean) / std
				st.Outlier = st.ZScore > o.sigma
			}
		}
		s.hist.push(value, o.window)
		s.last = value
		s.seen = true
	})
	return st
}

// Forget drops the history of an asset.
func (o *OutlierDetector) Forget(assetID string) { o.states.reset(assetID) }
