package environment

import (
	"context"
	"errors"

	"github.com/kilianp07/gridpilot/core/model"
)

// ErrUnavailable is returned by Static for values it does not hold.
var ErrUnavailable = errors.New("environment: value unavailable")

// Static serves fixed conditions, typically read from a fixture file.
type Static struct {
	Conditions *model.Weather
	Price      *model.MarketPrice
}

func (s Static) Weather(context.Context) (model.Weather, error) {
	if s.Conditions == nil {
		return model.Weather{}, ErrUnavailable
	}
	return *s.Conditions, nil
}

func (s Static) MarketPrice(context.Context) (model.MarketPrice, error) {
	if s.Price == nil {
		return model.MarketPrice{}, ErrUnavailable
	}
	return *s.Price, nil
}
