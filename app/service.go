package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridpilot/config"
	"github.com/kilianp07/gridpilot/core/decision"
	"github.com/kilianp07/gridpilot/core/dispatch"
	"github.com/kilianp07/gridpilot/core/environment"
	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
	"github.com/kilianp07/gridpilot/core/model"
	coremon "github.com/kilianp07/gridpilot/core/monitoring"
	coremqtt "github.com/kilianp07/gridpilot/core/mqtt"
	"github.com/kilianp07/gridpilot/core/physics"
	"github.com/kilianp07/gridpilot/core/policy"
	"github.com/kilianp07/gridpilot/core/prediction"
	"github.com/kilianp07/gridpilot/core/safety"
	"github.com/kilianp07/gridpilot/core/trust"
	"github.com/kilianp07/gridpilot/infra/logger"
	"github.com/kilianp07/gridpilot/infra/market"
	"github.com/kilianp07/gridpilot/infra/metrics"
	"github.com/kilianp07/gridpilot/infra/monitoring"
	"github.com/kilianp07/gridpilot/infra/mqtt"
	"github.com/kilianp07/gridpilot/infra/telemetry"
	"github.com/kilianp07/gridpilot/infra/weather"
	"github.com/kilianp07/gridpilot/internal/eventbus"
	"github.com/kilianp07/gridpilot/internal/fixture"
)

// ErrMarketDisabled is returned when price history is requested without
// market credentials.
var ErrMarketDisabled = errors.New("market api is not configured")

// Service wires the decision engine with its adapters.
type Service struct {
	Engine      *decision.Engine
	Policies    *policy.Store
	Forecaster  prediction.DemandForecaster
	Environment environment.Provider
	History     *prediction.MemoryHistory

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	client    coremqtt.Client
	telemetry *telemetry.Manager
	sync      *trust.Synchronizer
	market    *market.Client
	monitor   coremon.Monitor
	log       logger.Logger

	guardian    *safety.Guardian
	optimizer   *dispatch.LPOptimizer
	degradation *physics.DegradationModel
	reactor     *physics.ReactorController
}

// Option customises New.
type Option func(*options)

type options struct {
	client   coremqtt.Client
	registry prometheus.Registerer
}

// WithMQTTClient uses c instead of dialing the configured broker.
func WithMQTTClient(c coremqtt.Client) Option {
	return func(o *options) { o.client = c }
}

// WithRegisterer registers ingestion metrics on reg instead of the default registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{registry: prometheus.DefaultRegisterer}
	for _, fn := range opts {
		fn(&o)
	}
	if err := logger.Configure(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	bus := eventbus.New(eventbus.WithBuffer(64))
	history := prediction.NewMemoryHistory(cfg.Forecast.HistorySize)
	forecaster := prediction.NewSeasonalForecaster(history, logger.New("forecaster"), source(cfg.Forecast.Seed, 1))

	svc := &Service{
		Forecaster: forecaster,
		History:    history,
		cfg:        cfg,
		bus:        bus,
		sink:       sink,
		client:     o.client,
		monitor:    mon,
		log:        logg,
	}
	svc.Environment = svc.environment()

	p, err := cfg.Policy.Constraints()
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	svc.Policies = policy.NewStore(p)

	svc.guardian, err = safety.NewGuardian(cfg.Safety)
	if err != nil {
		return nil, fmt.Errorf("guardian: %w", err)
	}
	svc.optimizer = dispatch.NewLPOptimizer(
		dispatch.WithLogger(logger.New("lp")),
		dispatch.WithPublisher(bus),
		dispatch.WithMetrics(),
	)
	svc.degradation = physics.NewDegradationModel(source(cfg.Forecast.Seed, 2))
	svc.reactor = physics.NewReactorController(physics.BSR220())
	svc.Engine, err = svc.newEngine(svc.Policies, forecaster, svc.Environment, svc.guardian)
	if err != nil {
		return nil, fmt.Errorf("decision engine: %w", err)
	}

	if cfg.Telemetry.Enabled {
		if svc.client == nil {
			client, err := mqtt.NewPahoClient(cfg.MQTT)
			if err != nil {
				return nil, fmt.Errorf("mqtt client: %w", err)
			}
			svc.client = client
		}
		svc.sync = trust.NewSynchronizer(cfg.Trust.SyncResolution())
		pipeline := trust.NewPipeline(cfg.Trust, trust.WithSynchronizer(svc.sync))
		mgr, err := telemetry.NewManager(cfg.Telemetry, svc.client, pipeline, bus, history, o.registry)
		if err != nil {
			return nil, fmt.Errorf("telemetry manager: %w", err)
		}
		svc.telemetry = mgr
	}
	return svc, nil
}

func (s *Service) newEngine(p *policy.Store, fc prediction.DemandForecaster, env environment.WeatherSource, g *safety.Guardian) (*decision.Engine, error) {
	return decision.NewEngine(s.cfg.Decision, decision.Dependencies{
		Policies:    p,
		Forecaster:  fc,
		Environment: env,
		Guardian:    g,
		Optimizer:   s.optimizer,
		Degradation: s.degradation,
		Reactor:     s.reactor,
		Monitor:     s.monitor,
		Logger:      logger.New("decision"),
		Bus:         s.bus,
	})
}

// FixtureEngine builds an engine for a fixture file. Policy, forecast,
// weather and safety mode present in fx replace the service values.
func (s *Service) FixtureEngine(fx *fixture.Fixture) (*decision.Engine, error) {
	now := time.Now()
	policies := s.Policies
	p, err := fx.PolicyConstraints()
	if err != nil {
		return nil, err
	}
	if p != nil {
		policies = policy.NewStore(p)
	}
	var fc prediction.DemandForecaster = s.Forecaster
	if len(fx.Forecast) > 0 {
		fc = fx.Forecaster(now)
	}
	var env environment.WeatherSource = s.Environment
	if fx.Weather != nil {
		env = fx.Environment(now)
	}
	g := s.guardian
	if fx.SafetyMode != "" {
		sc := s.cfg.Safety
		sc.Mode = fx.SafetyMode
		if g, err = safety.NewGuardian(sc); err != nil {
			return nil, err
		}
	}
	return s.newEngine(policies, fc, env, g)
}

// Reactor returns the reactor controller used by the look-ahead stage.
func (s *Service) Reactor() *physics.ReactorController { return s.reactor }

// environment chains the configured HTTP adapters in front of the simulator.
func (s *Service) environment() environment.Provider {
	sim := environment.NewSimulated(source(s.cfg.Forecast.Seed, 3), s.cfg.Market.Region)
	var comp environment.Composite
	comp.WeatherSource = sim
	comp.PriceSource = sim
	live := false
	if s.cfg.Weather.Enabled() {
		comp.WeatherSource = weather.NewClient(s.cfg.Weather)
		live = true
	}
	if s.cfg.Market.Enabled() {
		s.market = market.NewClient(s.cfg.Market)
		comp.PriceSource = s.market
		live = true
	}
	if !live {
		return environment.NewFallback(nil, sim, logger.New("environment"))
	}
	return environment.NewFallback(comp, sim, logger.New("environment"))
}

func source(seed, stream uint64) rand.Source {
	if seed == 0 {
		return nil
	}
	return rand.NewPCG(seed, stream)
}

// RunOptions selects the periodic evaluation performed by Run.
type RunOptions struct {
	// Request is re-evaluated every Interval when not nil.
	Request  *decision.Request
	Interval time.Duration
	// DecisionTopic receives every decision as JSON when an MQTT client is available.
	DecisionTopic string
}

// Run starts the background workers and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context, ro RunOptions) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		coremon.Go("prom-server", func() {
			if err := metrics.StartPromServer(ctx, port, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		})
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ingestErr := make(chan error, 1)
	if s.telemetry != nil {
		coremon.Go("context-sync", func() {
			s.sync.RunRefresh(ctx, s.Environment, s.cfg.Trust.ContextRefresh(), func(err error) {
				s.log.Warnf("telemetry context: %v", err)
			})
		})
		coremon.Go("telemetry", func() {
			if err := s.telemetry.Start(ctx); err != nil {
				ingestErr <- fmt.Errorf("telemetry: %w", err)
				cancel()
			}
		})
	}
	if ro.Request != nil {
		interval := ro.Interval
		if interval <= 0 {
			interval = time.Minute
		}
		s.evaluateLoop(ctx, *ro.Request, interval, ro.DecisionTopic)
	} else {
		<-ctx.Done()
	}
	select {
	case err := <-ingestErr:
		return err
	default:
		return nil
	}
}

func (s *Service) evaluateLoop(ctx context.Context, req decision.Request, interval time.Duration, topic string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		out := s.Evaluate(ctx, req)
		s.log.Infow("decision", map[string]any{
			"id":          out.ID,
			"recommended": out.RecommendedAction,
			"confidence":  out.Confidence,
			"degraded":    out.Degraded,
		})
		if topic != "" && s.client != nil {
			if err := s.publish(topic, out); err != nil {
				s.log.Warnf("publish decision: %v", err)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) publish(topic string, out model.DecisionOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return s.client.Publish(topic, data)
}

// Evaluate runs one decision.
func (s *Service) Evaluate(ctx context.Context, req decision.Request) model.DecisionOutput {
	return s.Engine.Evaluate(ctx, req)
}

// Forecast returns the next 24 hourly demand points.
func (s *Service) Forecast(ctx context.Context) []model.ForecastPoint {
	return s.Forecaster.Forecast24h(ctx)
}

// Prices returns the published hourly wholesale prices between start and end.
func (s *Service) Prices(ctx context.Context, start, end time.Time) ([]model.MarketPrice, error) {
	if s.market == nil {
		return nil, ErrMarketDisabled
	}
	resp, err := s.market.Fetch(ctx, start, end)
	if err != nil {
		return nil, err
	}
	pts, err := resp.Points()
	if err != nil {
		return nil, err
	}
	out := make([]model.MarketPrice, len(pts))
	for i, p := range pts {
		out[i] = model.MarketPrice{Timestamp: p.Start, PricePerMWh: p.Price, Currency: "EUR", Region: s.market.Region()}
	}
	return out, nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.client != nil {
		s.client.Disconnect()
	}
	closeSink(s.sink)
	s.monitor.Flush(2 * time.Second)
	return nil
}

type closer interface{ Close() }

func closeSink(sink coremetrics.MetricsSink) {
	if m, ok := sink.(*coremetrics.MultiSink); ok {
		for _, child := range m.Sinks {
			closeSink(child)
		}
		return
	}
	if c, ok := sink.(closer); ok {
		c.Close()
	}
}
