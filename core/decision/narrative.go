package decision

import (
	"fmt"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	SafetyModeAction  = "Maintain Current Operations (Safety Mode)"
	SafetyModeSummary = "System entered Safety Mode due to calculation anomaly."
)

func summary(best model.DecisionRank, scn model.Scenario) string {
	return fmt.Sprintf("Recommendation: %s. This strategy provides the best outcome for the '%s' scenario.", best.OptionName, scn.Description)
}

func risks(scn model.Scenario, best model.DecisionRank) []string {
	var out []string
	if best.ReliabilityScore < 1 {
		out = append(out, "Immediate load shedding required.")
	}
	switch scn.Type {
	case model.ScenarioDemandSpike:
		out = append(out, "Transformer overheating risk if demand is sustained.")
	case model.ScenarioSupplyFailure:
		out = append(out, "Cascading failure risk if reserve margin drops below 5%.")
	case model.ScenarioNormal, model.ScenarioPriceVolatility, model.ScenarioStorageDegradation:
	}
	if len(out) == 0 {
		out = append(out, "No significant operational risks identified.")
	}
	return out
}

func primaryFactor(scn model.Scenario, best model.DecisionRank) string {
	switch {
	case scn.Type.IsSevere():
		return "Reliability Assurance"
	case best.OptionName == StrategyGreen:
		return "Carbon Reduction"
	default:
		return "Balanced Performance"
	}
}

func confidence(best model.DecisionRank) float64 {
	if best.ReliabilityScore > 0.98 {
		return 0.92
	}
	return 0.75
}

// DegradedOutput is the terminal answer returned when no recommendation could
// be computed.
func DegradedOutput(reason string) model.DecisionOutput {
	return model.DecisionOutput{
		Summary:           SafetyModeSummary,
		RecommendedAction: SafetyModeAction,
		Alternatives:      []model.DecisionRank{},
		Risks:             []string{"Decision intelligence is operating in degraded mode.", reason},
		Assumptions:       []string{"System telemetry may be unreliable."},
		Confidence:        0,
		NextSteps:         []string{"Contact support", "Manual grid verification"},
		PrimaryFactor:     "System Safety",
		Degraded:          true,
	}
}
