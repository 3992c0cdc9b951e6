package trust

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultDriftWindow = 100
	DefaultDriftSigma  = 3.0

	driftEpsilon = 1e-6
)

// FlagDrift marks a packet whose stream has drifted from its baseline.
const FlagDrift = "drift detected"

type driftState struct {
	buf      []float64
	next     int
	full     bool
	baseline bool
	mean     float64
	std      float64
}

func (d *driftState) push(v float64, window int) {
	if d.buf == nil {
		d.buf = make([]float64, 0, window)
	}
	if len(d.buf) < window {
		d.buf = append(d.buf, v)
	} else {
		d.buf[d.next] = v
	}
	d.next = (d.next + 1) % window
	d.full = len(d.buf) == window
}

// DriftStatus describes the drift evaluation of the latest sample.
type DriftStatus struct {
	// Evaluated is false until half a window has been collected.
	Evaluated bool
	// Baseline is true once the first full window has been captured.
	Baseline bool
	Stable   bool
	Shift    float64
}

// DriftMonitor compares the sliding mean of each stream with a frozen baseline.
type DriftMonitor struct {
	window int
	sigma  float64
	states *keyed[driftState]
}

// NewDriftMonitor creates a monitor. Non-positive arguments select defaults.
func NewDriftMonitor(window int, sigma float64) *DriftMonitor {
	if window <= 1 {
		window = DefaultDriftWindow
	}
	if sigma <= 0 {
		sigma = DefaultDriftSigma
	}
	return &DriftMonitor{window: window, sigma: sigma, states: newKeyed[driftState]()}
}

// Window returns the configured window length.
func (m *DriftMonitor) Window() int { return m.window }

// Observe records a value and evaluates the stream.
func (m *DriftMonitor) Observe(assetID string, value float64) DriftStatus {
	var st DriftStatus
	m.states.with(assetID, func(d *driftState, _ bool) {
		d.push(value, m.window)
		if len(d.buf) < m.window/2 {
			st = DriftStatus{Stable: true}
			return
		}
		if !d.baseline {
			if d.full {
				d.mean, d.std = stat.MeanStdDev(d.buf, nil)
				d.baseline = true
			}
			st = DriftStatus{Evaluated: true, Baseline: d.baseline, Stable: true}
			return
		}
		cur := stat.Mean(d.buf, nil)
		shift := math.Abs(cur-d.mean) / math.Max(d.std, driftEpsilon)
		st = DriftStatus{Evaluated: true, Baseline: true, Stable: shift < m.sigma, Shift: shift}
	})
	return st
}

// Forget drops the history and baseline of an asset.
func (m *DriftMonitor) Forget(assetID string) { m.states.reset(assetID) }
