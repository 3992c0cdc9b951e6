package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gridpilot/core/decision"
	"github.com/kilianp07/gridpilot/core/metrics"
	"github.com/kilianp07/gridpilot/core/safety"
	"github.com/kilianp07/gridpilot/core/trust"
	"github.com/kilianp07/gridpilot/infra/market"
	"github.com/kilianp07/gridpilot/infra/mqtt"
	"github.com/kilianp07/gridpilot/infra/weather"
)

type Config struct {
	MQTT      mqtt.Config     `json:"mqtt"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Trust     trust.Config    `json:"trust"`
	Decision  decision.Config `json:"decision"`
	Safety    safety.Config   `json:"safety"`
	Policy    PolicyConfig    `json:"policy"`
	Metrics   metrics.Config  `json:"metrics"`
	Logging   LoggingConfig   `json:"logging"`
	Sentry    SentryConfig    `json:"sentry"`
	Weather   weather.Config  `json:"weather"`
	Market    market.Config   `json:"market"`
	Forecast  ForecastConfig  `json:"forecast"`
}

// Load reads path and applies K_SECTION__KEY environment overrides. An empty
// path loads defaults and environment values only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Telemetry.SetDefaults()
	c.Trust.SetDefaults()
	c.Decision.SetDefaults()
	c.Safety.SetDefaults()
	c.Logging.SetDefaults()
	c.Forecast.SetDefaults()
}

// Validate checks the sections that are in use.
func (c Config) Validate() error {
	if c.Telemetry.Enabled {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if err := c.Trust.Validate(); err != nil {
		return fmt.Errorf("trust: %w", err)
	}
	if err := c.Safety.Validate(); err != nil {
		return fmt.Errorf("safety: %w", err)
	}
	if _, err := c.Policy.Constraints(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	if err := c.Weather.Validate(); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	return nil
}
