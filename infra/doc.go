// Package infra holds the adapters of the decision engine: MQTT telemetry
// ingestion, weather and market HTTP clients, metrics sinks, logging and
// error monitoring. They implement interfaces declared under core.
package infra
