// Package weather fetches current conditions from the OpenWeather API for
// dynamic line rating.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kilianp07/gridpilot/core/model"
)

const defaultBaseURL = "https://api.openweathermap.org"

// clearSkyIrradiance is the midday irradiance assumed under a cloudless sky.
const clearSkyIrradiance = 1000.0

// Config locates the site whose weather is queried.
type Config struct {
	APIKey  string        `json:"api_key"`
	Lat     float64       `json:"lat"`
	Lon     float64       `json:"lon"`
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool { return c.APIKey != "" }

// Validate checks coordinates when the client is enabled.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("weather coordinates out of range (%v, %v)", c.Lat, c.Lon)
	}
	return nil
}

// Client implements environment.WeatherSource.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns an OpenWeather client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type response struct {
	Dt      int64 `json:"dt"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Weather returns the current conditions at the configured site.
func (c *Client) Weather(ctx context.Context) (model.Weather, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(c.cfg.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.cfg.Lon, 'f', -1, 64))
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return model.Weather{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.Weather{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Weather{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return model.Weather{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if r.Dt == 0 {
		return model.Weather{}, errors.New("weather response without observation time")
	}
	return r.toModel(), nil
}

func (r response) toModel() model.Weather {
	w := model.Weather{
		Timestamp:    time.Unix(r.Dt, 0).UTC(),
		TemperatureC: r.Main.Temp,
		WindSpeedMPS: r.Wind.Speed,
		Condition:    "Unknown",
	}
	if len(r.Weather) > 0 && r.Weather[0].Main != "" {
		w.Condition = r.Weather[0].Main
	}
	if r.Dt >= r.Sys.Sunrise && r.Dt < r.Sys.Sunset {
		cover := model.Clamp01(r.Clouds.All / 100)
		w.IrradianceWM2 = clearSkyIrradiance * (1 - 0.75*cover)
	} else {
		w.Condition = "Night"
	}
	return w
}
