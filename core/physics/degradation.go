package physics

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	baseAgingPerHour   = 3e-6
	stressLoadFactor   = 0.8
	stressExponent     = 5.0
	healthyIndex       = 0.9
	pdDecay            = 0.9
	pdPerDamage        = 100.0
	spikeProbPerDamage = 0.1
	spikeMinPC         = 50.0
	spikeMaxPC         = 500.0
	pdSmoothing        = 0.7

	pdRiskThreshold     = 100.0
	pdRiskScale         = 1000.0
	healthRiskThreshold = 0.2
	healthRiskScale     = 5.0
)

// DegradationModel ages insulation under load and simulates partial
// discharge activity. It is safe for concurrent use.
type DegradationModel struct {
	mu    sync.Mutex
	spike distuv.Bernoulli
	mag   distuv.Uniform
}

// NewDegradationModel creates a model drawing from src. A nil source uses a
// time seeded PCG.
func NewDegradationModel(src rand.Source) *DegradationModel {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &DegradationModel{
		spike: distuv.Bernoulli{Src: src},
		mag:   distuv.Uniform{Min: spikeMinPC, Max: spikeMaxPC, Src: src},
	}
}

// Stress returns the aging acceleration for a load factor.
func Stress(loadFactor float64) float64 {
	if loadFactor > stressLoadFactor {
		return math.Exp(stressExponent * (loadFactor - stressLoadFactor))
	}
	return 1
}

// Step advances the asset health by dtHours at the given load factor.
func (d *DegradationModel) Step(h model.AssetHealth, loadFactor, dtHours float64) model.AssetHealth {
	if dtHours < 0 {
		dtHours = 0
	}
	h.HealthIndex = math.Max(0, h.HealthIndex-baseAgingPerHour*Stress(loadFactor)*dtHours)

	if h.HealthIndex > healthyIndex {
		h.PDActivity *= pdDecay
		return h
	}
	damage := 1 - h.HealthIndex
	target := pdPerDamage*damage + d.drawSpike(damage)
	h.PDActivity = math.Max(0, pdSmoothing*h.PDActivity+(1-pdSmoothing)*target)
	return h
}

func (d *DegradationModel) drawSpike(damage float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spike.P = model.Clamp01(spikeProbPerDamage * damage)
	if d.spike.Rand() == 0 {
		return 0
	}
	return d.mag.Rand() * damage
}

// FailureProbability estimates the near-term failure likelihood of an asset.
func FailureProbability(h model.AssetHealth) float64 {
	pdRisk := 0.0
	if h.PDActivity > pdRiskThreshold {
		pdRisk = (h.PDActivity - pdRiskThreshold) / pdRiskScale
	}
	healthRisk := 0.0
	if h.HealthIndex < healthRiskThreshold {
		healthRisk = (healthRiskThreshold - h.HealthIndex) * healthRiskScale
	}
	return math.Min(1, math.Max(pdRisk, healthRisk))
}
