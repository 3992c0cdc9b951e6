// Package environment supplies the instantaneous context of an evaluation:
// weather for line ratings and the wholesale market price.
package environment

import (
	"context"

	"github.com/kilianp07/gridpilot/core/logger"
	"github.com/kilianp07/gridpilot/core/model"
)

// Provider returns current weather and market conditions.
type Provider interface {
	Weather(ctx context.Context) (model.Weather, error)
	MarketPrice(ctx context.Context) (model.MarketPrice, error)
}

// WeatherSource and PriceSource let a Composite combine independent adapters.
type WeatherSource interface {
	Weather(ctx context.Context) (model.Weather, error)
}

type PriceSource interface {
	MarketPrice(ctx context.Context) (model.MarketPrice, error)
}

// Composite joins a weather adapter and a market adapter into one Provider.
type Composite struct {
	WeatherSource
	PriceSource
}

// Fallback queries a primary provider and substitutes values from a backup
// provider when it fails. Neither call ever returns an error when the backup
// is a Simulated provider.
type Fallback struct {
	primary Provider
	backup  Provider
	log     logger.Logger
}

// NewFallback wraps primary. A nil primary always uses the backup.
func NewFallback(primary, backup Provider, log logger.Logger) *Fallback {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Fallback{primary: primary, backup: backup, log: log}
}

func (f *Fallback) Weather(ctx context.Context) (model.Weather, error) {
	if f.primary != nil {
		w, err := f.primary.Weather(ctx)
		if err == nil {
			return w, nil
		}
		f.log.Warnf("weather provider failed, using simulated values: %v", err)
	}
	return f.backup.Weather(ctx)
}

func (f *Fallback) MarketPrice(ctx context.Context) (model.MarketPrice, error) {
	if f.primary != nil {
		p, err := f.primary.MarketPrice(ctx)
		if err == nil {
			return p, nil
		}
		f.log.Warnf("market provider failed, using simulated values: %v", err)
	}
	return f.backup.MarketPrice(ctx)
}
