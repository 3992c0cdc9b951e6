package physics

import (
	"testing"

	"github.com/kilianp07/gridpilot/core/model"
)

func TestAmpacityFactorBounds(t *testing.T) {
	if f := AmpacityFactor(10, 8); f <= 1 {
		t.Fatalf("cold windy factor = %v, want > 1", f)
	}
	if f := AmpacityFactor(40, 0.2); f >= 1 {
		t.Fatalf("hot calm factor = %v, want < 1", f)
	}
	if f := AmpacityFactor(80, 10); f != 0 {
		t.Fatalf("ambient above conductor limit should yield 0, got %v", f)
	}
	if f := AmpacityFactor(35, 0.6); f != 1 {
		t.Fatalf("reference conditions factor = %v, want 1", f)
	}
}

func TestRateLinkLabels(t *testing.T) {
	link := model.GridLink{ID: "l1", StaticRatingMVA: 100}
	tests := []struct {
		name string
		w    model.Weather
		want string
	}{
		{"windy", model.Weather{TemperatureC: 25, WindSpeedMPS: 10}, LimitWindCooling},
		{"cold calm", model.Weather{TemperatureC: 5, WindSpeedMPS: 1}, LimitLowAmbient},
		{"hot calm", model.Weather{TemperatureC: 40, WindSpeedMPS: 0.2}, LimitThermal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RateLink(link, tt.w)
			if got.LimitingFactor != tt.want {
				t.Fatalf("label = %q, want %q", got.LimitingFactor, tt.want)
			}
			if got.DynamicRatingMVA < 0 {
				t.Fatalf("negative rating %v", got.DynamicRatingMVA)
			}
		})
	}
	if link.LimitingFactor != "" {
		t.Fatalf("input link mutated")
	}
}

func TestRateLinksNegativeStatic(t *testing.T) {
	out := RateLinks([]model.GridLink{{StaticRatingMVA: -5}}, model.Weather{TemperatureC: 10, WindSpeedMPS: 8})
	if out[0].DynamicRatingMVA != 0 {
		t.Fatalf("dynamic rating = %v, want 0", out[0].DynamicRatingMVA)
	}
}
