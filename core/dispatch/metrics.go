package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	solveLatency *prometheus.HistogramVec
	unmetDemand  *prometheus.GaugeVec
	lpFallbacks  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.GaugeVec, prometheus.Counter) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_solve_latency_seconds",
			Help:    "Time spent computing a dispatch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	unmet := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatch_unmet_demand_mw",
			Help: "Unserved demand of the last dispatch",
		},
		[]string{"method"},
	)
	fb := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_lp_fallback_total",
			Help: "Number of LP failures answered with merit order",
		},
	)
	return lat, unmet, fb
}

func init() {
	solveLatency, unmetDemand, lpFallbacks = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveLatency, unmetDemand, lpFallbacks)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveLatency, unmetDemand, lpFallbacks = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
