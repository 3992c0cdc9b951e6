package trust

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	DefaultSyncResolution = time.Second
	DefaultContextRefresh = time.Minute
)

// ContextSource supplies the conditions attached to packets.
// environment.Provider satisfies it.
type ContextSource interface {
	Weather(ctx context.Context) (model.Weather, error)
	MarketPrice(ctx context.Context) (model.MarketPrice, error)
}

// Synchronizer snaps packet timestamps to a fixed resolution and attaches
// the latest known weather and market price. Packets falling in the same
// slot share the same context.
type Synchronizer struct {
	resolution time.Duration

	mu      sync.RWMutex
	weather *model.Weather
	market  *model.MarketPrice
}

// NewSynchronizer creates a synchronizer. A non-positive resolution selects
// DefaultSyncResolution.
func NewSynchronizer(resolution time.Duration) *Synchronizer {
	if resolution <= 0 {
		resolution = DefaultSyncResolution
	}
	return &Synchronizer{resolution: resolution}
}

// Resolution returns the slot width.
func (s *Synchronizer) Resolution() time.Duration { return s.resolution }

func (s *Synchronizer) UpdateWeather(w model.Weather) {
	s.mu.Lock()
	s.weather = &w
	s.mu.Unlock()
}

func (s *Synchronizer) UpdateMarket(p model.MarketPrice) {
	s.mu.Lock()
	s.market = &p
	s.mu.Unlock()
}

// Refresh pulls both values from src. A value that cannot be fetched keeps
// its previous state; the joined errors are returned.
func (s *Synchronizer) Refresh(ctx context.Context, src ContextSource) error {
	var errs []error
	if w, err := src.Weather(ctx); err != nil {
		errs = append(errs, fmt.Errorf("weather: %w", err))
	} else {
		s.UpdateWeather(w)
	}
	if p, err := src.MarketPrice(ctx); err != nil {
		errs = append(errs, fmt.Errorf("market: %w", err))
	} else {
		s.UpdateMarket(p)
	}
	return errors.Join(errs...)
}

// Snap truncates t to the start of its slot, in UTC.
func (s *Synchronizer) Snap(t time.Time) time.Time {
	return t.UTC().Truncate(s.resolution)
}

// Attach returns pkt with its synchronized context. The original timestamp
// is kept.
func (s *Synchronizer) Attach(pkt model.TelemetryPacket) model.TelemetryPacket {
	c := &model.PacketContext{SyncedTimestamp: s.Snap(pkt.Timestamp)}
	s.mu.RLock()
	if s.weather != nil {
		w := *s.weather
		c.Weather = &w
	}
	if s.market != nil {
		p := *s.market
		c.Market = &p
	}
	s.mu.RUnlock()
	pkt.Context = c
	return pkt
}

// RunRefresh refreshes the context from src every interval until ctx ends.
// The first refresh happens immediately. onErr may be nil.
func (s *Synchronizer) RunRefresh(ctx context.Context, src ContextSource, interval time.Duration, onErr func(error)) {
	if interval <= 0 {
		interval = DefaultContextRefresh
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.Refresh(ctx, src); err != nil && onErr != nil {
			onErr(err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
