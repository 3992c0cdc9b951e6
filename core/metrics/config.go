package metrics

import "github.com/kilianp07/gridpilot/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort exposes /metrics when non-empty.
	PrometheusPort string `json:"prometheus_port"`
}
