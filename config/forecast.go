package config

import "fmt"

// ForecastConfig sizes the demand history feeding the forecaster.
type ForecastConfig struct {
	// HistorySize is the number of observations kept in memory.
	HistorySize int `json:"history_size"`
	// Seed makes the forecast noise and simulated environment reproducible when non zero.
	Seed uint64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *ForecastConfig) SetDefaults() {
	if c.HistorySize <= 0 {
		c.HistorySize = 168
	}
}

func (c ForecastConfig) Validate() error {
	if c.HistorySize < 12 {
		return fmt.Errorf("history_size must be >= 12, got %d", c.HistorySize)
	}
	return nil
}
