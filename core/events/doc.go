// Package events defines the domain events emitted on the event bus.
//
// Available event types:
//   - TelemetryEvent: a measurement scored by the trust pipeline
//   - DecisionEvent: the outcome of one decision evaluation
//   - StrategyEvent: optimizer selection and fallback information
package events
