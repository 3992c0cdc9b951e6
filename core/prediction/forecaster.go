package prediction

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/gridpilot/core/logger"
	"github.com/kilianp07/gridpilot/core/model"
)

const (
	// Horizon is the number of hourly points in a forecast.
	Horizon = 24
	// MinHistory is the number of observations needed before the history is trusted.
	MinHistory = 12
	// HistoryWindow is the number of observations read from the history.
	HistoryWindow = 48

	defaultBaseMW      = 420.0
	defaultAmplitudeMW = 50.0
	dailyAmplitudeMW   = 20.0
	noiseStdMW         = 5.0
)

// DemandForecaster returns an hourly demand series starting one hour ahead.
type DemandForecaster interface {
	Forecast24h(ctx context.Context) []model.ForecastPoint
}

// History exposes recently observed demand, oldest first or in any order.
type History interface {
	Recent(ctx context.Context, limit int) ([]model.ForecastPoint, error)
}

// DefaultForecast is the fixed seasonal series used without usable history.
func DefaultForecast(now time.Time) []model.ForecastPoint {
	out := make([]model.ForecastPoint, Horizon)
	for i := 1; i <= Horizon; i++ {
		out[i-1] = model.ForecastPoint{
			Timestamp: now.Add(time.Duration(i) * time.Hour),
			DemandMW:  defaultBaseMW + math.Sin(float64(i)/4)*defaultAmplitudeMW,
		}
	}
	return out
}

// SeasonalForecaster projects the last observation along a daily cycle.
type SeasonalForecaster struct {
	history History
	log     logger.Logger
	now     func() time.Time

	mu    sync.Mutex
	noise distuv.Normal
}

// NewSeasonalForecaster creates a forecaster over h. A nil src draws from a
// randomly seeded PCG.
func NewSeasonalForecaster(h History, log logger.Logger, src rand.Source) *SeasonalForecaster {
	if log == nil {
		log = logger.NopLogger{}
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &SeasonalForecaster{
		history: h,
		log:     log,
		now:     time.Now,
		noise:   distuv.Normal{Mu: 0, Sigma: noiseStdMW, Src: src},
	}
}

// Forecast24h implements DemandForecaster.
func (f *SeasonalForecaster) Forecast24h(ctx context.Context) []model.ForecastPoint {
	if f.history == nil {
		return DefaultForecast(f.now())
	}
	hist, err := f.history.Recent(ctx, HistoryWindow)
	if err != nil {
		f.log.Warnf("demand history unavailable, using default forecast: %v", err)
		return DefaultForecast(f.now())
	}
	if len(hist) < MinHistory {
		return DefaultForecast(f.now())
	}
	sorted := append([]model.ForecastPoint(nil), hist...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })
	last := sorted[len(sorted)-1]

	out := make([]model.ForecastPoint, Horizon)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 1; i <= Horizon; i++ {
		ts := last.Timestamp.Add(time.Duration(i) * time.Hour)
		cycle := math.Sin(2 * math.Pi * float64(ts.Hour()) / 24)
		v := last.DemandMW + cycle*dailyAmplitudeMW + f.noise.Rand()
		out[i-1] = model.ForecastPoint{Timestamp: ts, DemandMW: math.Round(v*100) / 100}
	}
	return out
}

// Fixed returns the same series on every call.
type Fixed []model.ForecastPoint

func (f Fixed) Forecast24h(context.Context) []model.ForecastPoint { return f }
