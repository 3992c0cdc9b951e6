package config

import (
	"fmt"
	"strings"
)

// TelemetryConfig holds configuration for the telemetry ingestion manager.
type TelemetryConfig struct {
	Enabled bool `json:"enabled"`
	// Mode is "push", "poll" or "hybrid".
	Mode string `json:"mode"`
	// StatePrefix is the topic prefix field gateways publish measurements on.
	StatePrefix string `json:"state_topic_prefix"`
	// EnrichedPrefix re-publishes scored packets when set.
	EnrichedPrefix  string `json:"enriched_topic_prefix"`
	RequestTopic    string `json:"request_topic"`
	IntervalSeconds int    `json:"interval_seconds"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	// DemandAsset is the asset whose accepted readings feed the demand history.
	DemandAsset string `json:"demand_asset"`
}

// SetDefaults applies sane defaults.
func (c *TelemetryConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "push"
	}
	if c.StatePrefix == "" {
		c.StatePrefix = "gridpilot/telemetry"
	}
	if c.RequestTopic == "" {
		c.RequestTopic = "gridpilot/telemetry/poll"
	}
}

// Validate checks the ingestion mode.
func (c TelemetryConfig) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "", "push", "poll", "hybrid":
		return nil
	default:
		return fmt.Errorf("unknown telemetry mode %q", c.Mode)
	}
}

func (c TelemetryConfig) Interval() int {
	if c.IntervalSeconds <= 0 {
		return 10
	}
	return c.IntervalSeconds
}

func (c TelemetryConfig) Timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 3
	}
	return c.TimeoutSeconds
}
