package events

import "github.com/kilianp07/gridpilot/core/model"

// StrategyEvent is emitted when the optimizer is tried or abandoned.
// Action can be "lp_attempt", "lp_failure", or "merit_fallback".
type StrategyEvent struct {
	Scenario model.ScenarioType
	Action   string
	Err      error
}

const (
	ActionLPAttempt     = "lp_attempt"
	ActionLPFailure     = "lp_failure"
	ActionMeritFallback = "merit_fallback"
)
