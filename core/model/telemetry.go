package model

import "time"

// Measurement is a raw reading received from the field.
type Measurement struct {
	AssetID   string
	Value     float64
	Timestamp time.Time
}

// TelemetryPacket is a measurement enriched with its credibility assessment.
type TelemetryPacket struct {
	AssetID          string    `json:"asset_id"`
	Value            float64   `json:"value"`
	Timestamp        time.Time `json:"timestamp"`
	CredibilityScore float64   `json:"credibility_score"`
	Verified         bool      `json:"is_verified"`
	Flags            []string  `json:"flags"`
	// Context is set when the packet went through a synchronizer.
	Context *PacketContext `json:"context,omitempty"`
}

// PacketContext aligns a packet on the sampling grid and carries the grid
// conditions known when it was received.
type PacketContext struct {
	SyncedTimestamp time.Time    `json:"synced_timestamp"`
	Weather         *Weather     `json:"weather,omitempty"`
	Market          *MarketPrice `json:"market,omitempty"`
}

// HasFlag reports whether the packet carries the given flag.
func (p TelemetryPacket) HasFlag(flag string) bool {
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
