// Package metrics defines the recorder interfaces used to observe the
// decision engine. Sinks such as PromSink and InfluxSink (infra/metrics)
// record decisions, scored telemetry and optimizer fallbacks. Several sinks
// can be combined with NewMultiSink; NewMetricsSink does so automatically
// when more than one sink is configured.
package metrics
