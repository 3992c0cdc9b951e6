package physics

import (
	"math"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	conductorMaxC  = 75.0
	conductorBaseC = 35.0
	referenceWind  = 0.6
	minWindRatio   = 0.5
	calmWindMPS    = 3.0
	coldAmbientC   = 20.0
)

const (
	LimitWindCooling = "Wind Cooling"
	LimitLowAmbient  = "Low Ambient Temp"
	LimitThermal     = "Thermal Limit"
)

// AmpacityFactor returns the multiplier applied to a static line rating for
// the given ambient temperature and wind speed.
func AmpacityFactor(ambientC, windMPS float64) float64 {
	tf := 0.0
	if ambientC < conductorMaxC {
		tf = math.Sqrt((conductorMaxC - ambientC) / (conductorMaxC - conductorBaseC))
	}
	if windMPS < 0 || math.IsNaN(windMPS) {
		windMPS = 0
	}
	var wr float64
	switch {
	case windMPS > referenceWind:
		wr = 1 + 0.2*math.Log(windMPS/referenceWind+1)
	case windMPS < referenceWind:
		wr = math.Max(minWindRatio, windMPS/referenceWind)
	default:
		wr = 1
	}
	return tf * wr
}

// RateLink returns a copy of link with its dynamic rating and limiting factor
// set for the current weather.
func RateLink(link model.GridLink, w model.Weather) model.GridLink {
	f := AmpacityFactor(w.TemperatureC, w.WindSpeedMPS)
	link.DynamicRatingMVA = math.Max(0, link.StaticRatingMVA) * f
	switch {
	case f > 1 && w.TemperatureC < coldAmbientC && w.WindSpeedMPS <= calmWindMPS:
		link.LimitingFactor = LimitLowAmbient
	case f > 1:
		link.LimitingFactor = LimitWindCooling
	default:
		link.LimitingFactor = LimitThermal
	}
	return link
}

// RateLinks rates every link into a new slice.
func RateLinks(links []model.GridLink, w model.Weather) []model.GridLink {
	out := make([]model.GridLink, len(links))
	for i, l := range links {
		out[i] = RateLink(l, w)
	}
	return out
}
