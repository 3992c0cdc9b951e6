// Package decision ranks dispatch strategies for a grid snapshot and explains
// the recommendation.
//
// An evaluation projects the grid one hour ahead (asset degradation, dynamic
// line ratings, reactor limits), simulates four candidate strategies, scores
// them against the active policy and hands the winner to the safety guardian.
// Engine.Evaluate never fails: any error or panic yields the degraded
// safety-mode output.
package decision
