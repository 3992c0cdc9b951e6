package metrics

import (
	"time"

	"github.com/kilianp07/gridpilot/core/factory"
	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
	"github.com/kilianp07/gridpilot/core/metrics/carbon"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})

	_ = coremetrics.RegisterMetricsSink("carbon", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			RetentionDays int `json:"retention_days"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		retention := time.Duration(c.RetentionDays) * 24 * time.Hour
		return NewCarbonSink(carbon.NewMemoryStore(), retention, prometheus.DefaultRegisterer)
	})
}
