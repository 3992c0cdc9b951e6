package events

import "github.com/kilianp07/gridpilot/core/model"

// TelemetryEvent is published for every enriched measurement.
type TelemetryEvent struct {
	Packet   model.TelemetryPacket
	Accepted bool
}
