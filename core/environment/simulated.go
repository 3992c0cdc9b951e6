package environment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	baseTempC       = 25.0
	tempSpreadC     = 5.0
	minWindMPS      = 5.0
	maxWindMPS      = 15.0
	dayIrradiance   = 850.0
	irradianceNoise = 50.0
	peakPrice       = 75.0
	offPeakPrice    = 45.0
	priceLow        = -10.0
	priceHigh       = 20.0
)

// Simulated produces plausible values from the time of day.
type Simulated struct {
	now func() time.Time

	mu     sync.Mutex
	temp   distuv.Uniform
	wind   distuv.Uniform
	irr    distuv.Uniform
	spread distuv.Uniform
	region string
}

// NewSimulated creates a simulator. A nil src draws from a randomly seeded PCG.
func NewSimulated(src rand.Source, region string) *Simulated {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Simulated{
		now:    time.Now,
		temp:   distuv.Uniform{Min: baseTempC - tempSpreadC, Max: baseTempC + tempSpreadC, Src: src},
		wind:   distuv.Uniform{Min: minWindMPS, Max: maxWindMPS, Src: src},
		irr:    distuv.Uniform{Min: -irradianceNoise, Max: irradianceNoise, Src: src},
		spread: distuv.Uniform{Min: priceLow, Max: priceHigh, Src: src},
		region: region,
	}
}

// WithClock returns s using now as its clock.
func (s *Simulated) WithClock(now func() time.Time) *Simulated {
	s.now = now
	return s
}

func (s *Simulated) Weather(context.Context) (model.Weather, error) {
	ts := s.now()
	day := ts.Hour() >= 6 && ts.Hour() <= 18

	s.mu.Lock()
	defer s.mu.Unlock()
	w := model.Weather{
		Timestamp:    ts.UTC(),
		TemperatureC: s.temp.Rand(),
		WindSpeedMPS: s.wind.Rand(),
		Condition:    "Night",
	}
	if day {
		w.IrradianceWM2 = max(0, dayIrradiance+s.irr.Rand())
		w.Condition = "Clear"
	}
	return w, nil
}

func (s *Simulated) MarketPrice(context.Context) (model.MarketPrice, error) {
	ts := s.now()
	h := ts.Hour()
	base := offPeakPrice
	if (h >= 10 && h <= 14) || (h >= 18 && h <= 21) {
		base = peakPrice
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.MarketPrice{
		Timestamp:   ts.UTC(),
		PricePerMWh: base + s.spread.Rand(),
		Currency:    "EUR",
		Region:      s.region,
	}, nil
}
