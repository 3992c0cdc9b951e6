// Package trust scores the credibility of raw telemetry before it is used by
// the decision engine. Two independent checks are composed: an adversarial
// filter bounding the physical rate of change of each stream, and a drift
// monitor comparing the recent distribution of a stream against the first
// full window it observed.
//
// All state is keyed by asset identifier. Each asset owns its own lock, so
// measurements for distinct assets never contend.
package trust
