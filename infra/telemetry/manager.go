package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridpilot/config"
	"github.com/kilianp07/gridpilot/core/events"
	"github.com/kilianp07/gridpilot/core/model"
	coremqtt "github.com/kilianp07/gridpilot/core/mqtt"
	"github.com/kilianp07/gridpilot/core/trust"
	"github.com/kilianp07/gridpilot/infra/logger"
	inframetrics "github.com/kilianp07/gridpilot/infra/metrics"
	"github.com/kilianp07/gridpilot/internal/eventbus"
)

// WaitPublisher delivers an event to every current subscriber or gives up
// when ctx ends.
type WaitPublisher interface {
	PublishWait(ctx context.Context, e eventbus.Event) error
}

// DemandRecorder stores observed demand for the forecaster.
type DemandRecorder interface {
	Record(model.ForecastPoint)
}

// Manager ingests field measurements over MQTT, scores them with the trust
// pipeline and fans the enriched packets out on the event bus.
type Manager struct {
	cfg      config.TelemetryConfig
	cli      coremqtt.Client
	pipeline *trust.Pipeline
	bus      WaitPublisher
	history  DemandRecorder
	log      logger.Logger

	packets     *prometheus.CounterVec
	decodeErrs  prometheus.Counter
	pollReq     prometheus.Counter
	lastCollect prometheus.Gauge
}

// NewManager wires the ingestion path. history may be nil.
func NewManager(cfg config.TelemetryConfig, cli coremqtt.Client, pipeline *trust.Pipeline, bus WaitPublisher, history DemandRecorder, reg prometheus.Registerer) (*Manager, error) {
	if cli == nil || pipeline == nil || bus == nil {
		return nil, errors.New("telemetry: nil parameter provided to NewManager")
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cfg.SetDefaults()
	m := &Manager{cfg: cfg, cli: cli, pipeline: pipeline, bus: bus, history: history, log: logger.New("telemetry")}
	var err error
	if m.packets, err = inframetrics.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_ingested_total",
		Help: "Measurements ingested from MQTT by trust outcome",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if m.decodeErrs, err = inframetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_decode_errors_total",
		Help: "Payloads that could not be decoded",
	})); err != nil {
		return nil, err
	}
	if m.pollReq, err = inframetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_poll_requests_total",
		Help: "Number of telemetry poll requests",
	})); err != nil {
		return nil, err
	}
	if m.lastCollect, err = inframetrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_last_collect_timestamp_seconds",
		Help: "Unix timestamp of the last ingested measurement",
	})); err != nil {
		return nil, err
	}
	return m, nil
}

// Start subscribes to the measurement topics and, in poll or hybrid mode,
// requests readings at the configured interval. It blocks until ctx ends.
func (m *Manager) Start(ctx context.Context) error {
	topic := strings.TrimSuffix(m.cfg.StatePrefix, "/") + "/+"
	if err := m.cli.Subscribe(topic, func(topic string, payload []byte) {
		m.handle(ctx, topic, payload)
	}); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	m.log.Infof("telemetry ingestion on %s (%s mode)", topic, m.cfg.Mode)
	mode := strings.ToLower(m.cfg.Mode)
	if mode == "poll" || mode == "hybrid" {
		go m.pollLoop(ctx)
	}
	<-ctx.Done()
	return nil
}

func (m *Manager) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(m.cfg.Interval()) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.poll()
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) poll() {
	m.pollReq.Inc()
	if err := m.cli.Publish(m.cfg.RequestTopic, []byte("poll")); err != nil {
		m.log.Warnf("poll request: %v", err)
	}
}

func (m *Manager) handle(ctx context.Context, topic string, payload []byte) {
	// Poll requests may share the measurement prefix.
	if topic == m.cfg.RequestTopic {
		return
	}
	if _, _, err := m.process(ctx, payload, topic); err != nil {
		m.log.Errorf("telemetry %s: %v", topic, err)
	}
}

// measurement is the wire format published by field gateways. Value may be
// a JSON number or a string such as "NaN" for sensors that report faults.
type measurement struct {
	AssetID string          `json:"asset_id"`
	Value   json.RawMessage `json:"value"`
	TS      *int64          `json:"ts"`
	Time    *time.Time      `json:"timestamp"`
}

// reading returns the measured value. A missing, null or unparseable value
// yields NaN so the trust pipeline flags it as an input anomaly.
func (msg measurement) reading() float64 {
	raw := bytes.TrimSpace(msg.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return math.NaN()
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	return v
}

func (m *Manager) process(ctx context.Context, payload []byte, topic string) (model.TelemetryPacket, bool, error) {
	var msg measurement
	if err := json.Unmarshal(payload, &msg); err != nil {
		m.decodeErrs.Inc()
		return model.TelemetryPacket{}, false, fmt.Errorf("decode: %w", err)
	}
	if msg.AssetID == "" {
		msg.AssetID = coremqtt.LastSegment(topic)
	}
	if msg.AssetID == "" {
		m.decodeErrs.Inc()
		return model.TelemetryPacket{}, false, errors.New("measurement without asset id")
	}
	meas := model.Measurement{AssetID: msg.AssetID, Value: msg.reading()}
	switch {
	case msg.Time != nil:
		meas.Timestamp = *msg.Time
	case msg.TS != nil:
		meas.Timestamp = time.Unix(*msg.TS, 0)
	}

	pkt := m.pipeline.Enrich(meas)
	accepted := m.pipeline.Accept(pkt)
	m.lastCollect.SetToCurrentTime()
	m.packets.WithLabelValues(result(pkt, accepted)).Inc()

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(m.cfg.Timeout())*time.Second)
	defer cancel()
	if err := m.bus.PublishWait(waitCtx, events.TelemetryEvent{Packet: pkt, Accepted: accepted}); err != nil {
		m.log.Warnf("telemetry event for %s not delivered: %v", pkt.AssetID, err)
	}

	if accepted && m.history != nil && pkt.AssetID == m.cfg.DemandAsset && !math.IsNaN(pkt.Value) {
		m.history.Record(model.ForecastPoint{Timestamp: pkt.Timestamp, DemandMW: pkt.Value})
	}
	if m.cfg.EnrichedPrefix != "" {
		if err := m.republish(pkt); err != nil {
			return pkt, accepted, err
		}
	}
	return pkt, accepted, nil
}

func (m *Manager) republish(pkt model.TelemetryPacket) error {
	body, err := json.Marshal(pkt)
	if err != nil {
		return err
	}
	topic := strings.TrimSuffix(m.cfg.EnrichedPrefix, "/") + "/" + pkt.AssetID
	if err := m.cli.Publish(topic, body); err != nil {
		return fmt.Errorf("republish: %w", err)
	}
	return nil
}

func result(pkt model.TelemetryPacket, accepted bool) string {
	switch {
	case accepted:
		return "accepted"
	case pkt.HasFlag(trust.FlagAdversarial):
		return "adversarial"
	case pkt.HasFlag(trust.FlagInputAnomaly):
		return "anomaly"
	default:
		return "unverified"
	}
}
