package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
	"github.com/kilianp07/gridpilot/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving the points.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// InfluxSink writes decision and telemetry points to InfluxDB using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDecision writes the recommended strategy of one evaluation.
func (s *InfluxSink) RecordDecision(rec coremetrics.DecisionRecord) error {
	p := write.NewPointWithMeasurement("decision").
		AddTag("scenario", rec.Scenario).
		AddTag("strategy", rec.Strategy).
		AddTag("component", "decision_engine").
		AddField("decision_id", rec.DecisionID).
		AddField("score", round3(rec.Score)).
		AddField("cost_total", round3(rec.CostTotal)).
		AddField("carbon_tonnes", round3(rec.CarbonTonnes)).
		AddField("reliability", round3(rec.Reliability)).
		AddField("served_mw", round3(rec.ServedMW)).
		AddField("confidence", round3(rec.Confidence)).
		AddField("safe", rec.Safe).
		AddField("degraded", rec.Degraded).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordTelemetry writes a scored measurement.
func (s *InfluxSink) RecordTelemetry(rec coremetrics.TelemetryRecord) error {
	p := write.NewPointWithMeasurement("telemetry").
		AddTag("asset_id", rec.AssetID).
		AddTag("component", "trust_pipeline").
		AddField("value", round3(rec.Value)).
		AddField("credibility", round3(rec.Credibility)).
		AddField("verified", rec.Verified).
		AddField("accepted", rec.Accepted)
	if len(rec.Flags) > 0 {
		p = p.AddField("flags", strings.Join(rec.Flags, ";"))
	}
	return s.write(p.SetTime(rec.Time))
}

// RecordStrategy writes optimizer attempts and fallbacks.
func (s *InfluxSink) RecordStrategy(rec coremetrics.StrategyRecord) error {
	p := write.NewPointWithMeasurement("dispatch_strategy").
		AddTag("scenario", rec.Scenario).
		AddTag("action", rec.Action).
		AddTag("component", "lp_optimizer").
		AddField("error", rec.Error).
		SetTime(rec.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
