// Package market reads wholesale electricity prices from the RTE open API.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	defaultBaseURL  = "https://digital.iservices.rte-france.com"
	defaultTokenURL = "https://digital.iservices.rte-france.com/token/oauth/"
	pricePath       = "/open_api/wholesale_market/v2/france_power_exchanges"
)

// ErrNoPrice is returned when the exchange published no value for the window.
var ErrNoPrice = errors.New("no wholesale price published")

// Config holds the OAuth2 client credentials and endpoints.
type Config struct {
	ClientID     string        `json:"client_id"`
	ClientSecret string        `json:"client_secret"`
	TokenURL     string        `json:"token_url"`
	BaseURL      string        `json:"base_url"`
	Region       string        `json:"region"`
	Timeout      time.Duration `json:"timeout"`
}

// Enabled reports whether credentials are configured.
func (c Config) Enabled() bool { return c.ClientID != "" && c.ClientSecret != "" }

// Client implements environment.PriceSource.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

// Region is the bidding zone reported on prices.
func (c *Client) Region() string { return c.cfg.Region }

// NewClient returns a client whose requests carry a client-credentials token.
// Tokens are cached and refreshed by the oauth2 transport.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.Region == "" {
		cfg.Region = "FR"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	base := &http.Client{Timeout: cfg.Timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := oauth2.NewClient(ctx, cc.TokenSource(ctx))
	hc.Timeout = cfg.Timeout
	return &Client{cfg: cfg, http: hc, now: time.Now}
}

// Response mirrors the france_power_exchanges payload.
type Response struct {
	FrancePowerExchanges []struct {
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		UpdatedDate string `json:"updated_date"`
		Values      []struct {
			StartDate string  `json:"start_date"`
			EndDate   string  `json:"end_date"`
			Value     float64 `json:"value"`
			Price     float64 `json:"price"`
		} `json:"values"`
	} `json:"france_power_exchanges"`
}

// PricePoint is one hourly clearing price.
type PricePoint struct {
	Start time.Time
	End   time.Time
	Price float64
	// VolumeMWh is the traded volume.
	VolumeMWh float64
}

// Points flattens the response in publication order.
func (r Response) Points() ([]PricePoint, error) {
	var out []PricePoint
	for _, ex := range r.FrancePowerExchanges {
		for _, v := range ex.Values {
			start, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time: %w", err)
			}
			end, err := time.Parse(time.RFC3339, v.EndDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time: %w", err)
			}
			out = append(out, PricePoint{Start: start, End: end, Price: v.Price, VolumeMWh: v.Value})
		}
	}
	return out, nil
}

// Fetch retrieves the exchange results between start and end.
func (c *Client) Fetch(ctx context.Context, start, end time.Time) (Response, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+pricePath+"?"+q.Encode(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Response{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return r, nil
}

// MarketPrice returns the price of the current hour, or the latest published
// hour when the current one is not yet available.
func (c *Client) MarketPrice(ctx context.Context) (model.MarketPrice, error) {
	now := c.now().UTC()
	day := now.Truncate(24 * time.Hour)
	r, err := c.Fetch(ctx, day.Add(-24*time.Hour), day.Add(24*time.Hour))
	if err != nil {
		return model.MarketPrice{}, err
	}
	points, err := r.Points()
	if err != nil {
		return model.MarketPrice{}, err
	}
	if len(points) == 0 {
		return model.MarketPrice{}, ErrNoPrice
	}
	pick := points[len(points)-1]
	for _, p := range points {
		if !now.Before(p.Start) && now.Before(p.End) {
			pick = p
			break
		}
	}
	return model.MarketPrice{
		Timestamp:   pick.Start,
		PricePerMWh: pick.Price,
		Currency:    "EUR",
		Region:      c.cfg.Region,
	}, nil
}
