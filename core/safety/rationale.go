package safety

import (
	"fmt"
	"strings"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	distressedPD     = 100.0
	distressedHealth = 0.5

	standardRationale = "Dispatch follows standard merit-order and thermal stability limits."
)

// Rationale explains which line rating and degradation signals shaped the
// dispatch of state.
func Rationale(state model.InfrastructureState) string {
	var windCooled, distressed int
	for _, l := range state.Links {
		if strings.Contains(l.LimitingFactor, "Wind") {
			windCooled++
		}
		if l.PDActivity > distressedPD || l.HealthIndex < distressedHealth {
			distressed++
		}
	}
	var parts []string
	if windCooled > 0 {
		parts = append(parts, fmt.Sprintf("Utilized %d lines with Dynamic Line Rating (Wind Cooling) to unlock headroom.", windCooled))
	}
	if distressed > 0 {
		parts = append(parts, fmt.Sprintf("Bypassed full capacity on %d assets due to pre-fault Partial Discharge signatures.", distressed))
	}
	if len(parts) == 0 {
		return standardRationale
	}
	return strings.Join(parts, " | ")
}
