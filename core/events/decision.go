package events

import (
	"time"

	"github.com/kilianp07/gridpilot/core/model"
)

// DecisionEvent is published after each evaluation, degraded or not.
type DecisionEvent struct {
	Scenario model.ScenarioType
	Output   model.DecisionOutput
	Duration time.Duration
}
