package trust

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpilot/core/model"
)

type contextStub struct {
	weather    model.Weather
	price      model.MarketPrice
	weatherErr error
	priceErr   error
}

func (c contextStub) Weather(context.Context) (model.Weather, error) { return c.weather, c.weatherErr }

func (c contextStub) MarketPrice(context.Context) (model.MarketPrice, error) {
	return c.price, c.priceErr
}

func TestSynchronizerSnapsAndAttaches(t *testing.T) {
	s := NewSynchronizer(time.Second)
	require.NoError(t, s.Refresh(context.Background(), contextStub{
		weather: model.Weather{TemperatureC: 31},
		price:   model.MarketPrice{PricePerMWh: 84, Region: "FR"},
	}))

	ts := time.Date(2024, 7, 1, 18, 0, 5, 750_000_000, time.FixedZone("CEST", 2*3600))
	pkt := s.Attach(model.TelemetryPacket{AssetID: "a", Timestamp: ts})

	require.NotNil(t, pkt.Context)
	assert.Equal(t, ts, pkt.Timestamp)
	assert.Equal(t, time.Date(2024, 7, 1, 16, 0, 5, 0, time.UTC), pkt.Context.SyncedTimestamp)
	require.NotNil(t, pkt.Context.Weather)
	assert.Equal(t, 31.0, pkt.Context.Weather.TemperatureC)
	require.NotNil(t, pkt.Context.Market)
	assert.Equal(t, 84.0, pkt.Context.Market.PricePerMWh)
}

func TestSynchronizerSameSlotSharesContext(t *testing.T) {
	s := NewSynchronizer(500 * time.Millisecond)
	base := time.Unix(100, 0)
	a := s.Attach(model.TelemetryPacket{Timestamp: base.Add(100 * time.Millisecond)})
	b := s.Attach(model.TelemetryPacket{Timestamp: base.Add(400 * time.Millisecond)})
	c := s.Attach(model.TelemetryPacket{Timestamp: base.Add(600 * time.Millisecond)})
	assert.Equal(t, a.Context.SyncedTimestamp, b.Context.SyncedTimestamp)
	assert.NotEqual(t, a.Context.SyncedTimestamp, c.Context.SyncedTimestamp)
	assert.Nil(t, a.Context.Weather)
	assert.Nil(t, a.Context.Market)
}

func TestSynchronizerRefreshKeepsLastKnownValues(t *testing.T) {
	s := NewSynchronizer(0)
	assert.Equal(t, DefaultSyncResolution, s.Resolution())
	s.UpdateWeather(model.Weather{TemperatureC: 20})
	s.UpdateMarket(model.MarketPrice{PricePerMWh: 50})

	err := s.Refresh(context.Background(), contextStub{
		weatherErr: errors.New("offline"),
		price:      model.MarketPrice{PricePerMWh: 70},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather")

	pkt := s.Attach(model.TelemetryPacket{Timestamp: time.Unix(1, 0)})
	assert.Equal(t, 20.0, pkt.Context.Weather.TemperatureC)
	assert.Equal(t, 70.0, pkt.Context.Market.PricePerMWh)
}

func TestSynchronizerAttachedCopiesAreIndependent(t *testing.T) {
	s := NewSynchronizer(time.Second)
	s.UpdateWeather(model.Weather{TemperatureC: 20})
	pkt := s.Attach(model.TelemetryPacket{Timestamp: time.Unix(1, 0)})
	s.UpdateWeather(model.Weather{TemperatureC: 40})
	assert.Equal(t, 20.0, pkt.Context.Weather.TemperatureC)
}

func TestRunRefreshStopsWithContext(t *testing.T) {
	s := NewSynchronizer(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunRefresh(ctx, contextStub{weather: model.Weather{TemperatureC: 12}}, 10*time.Millisecond, nil)
		close(done)
	}()
	require.Eventually(t, func() bool {
		pkt := s.Attach(model.TelemetryPacket{})
		return pkt.Context.Weather != nil && pkt.Context.Weather.TemperatureC == 12
	}, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh loop did not stop")
	}
}
