package trust

import (
	"errors"
	"math"
	"time"

	"github.com/kilianp07/gridpilot/core/model"
)

const (
	DefaultVerifiedThreshold = 0.8

	adversarialPenalty = 0.1
	minDriftFactor     = 0.5
	driftPenaltySlope  = 0.1
)

const (
	FlagInputAnomaly     = "input anomaly"
	FlagTimestampDefault = "timestamp defaulted"
)

// Config tunes the trust pipeline.
type Config struct {
	MaxRateOfChange   float64 `json:"max_rate_of_change"`
	DriftWindow       int     `json:"drift_window"`
	DriftSigma        float64 `json:"drift_sigma"`
	VerifiedThreshold float64 `json:"verified_threshold"`
	// OutlierSigma enables the z-score check when positive.
	OutlierSigma float64 `json:"outlier_sigma"`
	// MaxJitter enables the consecutive step check when positive.
	MaxJitter float64 `json:"max_jitter"`
	// SyncResolutionMS is the timestamp grid of synchronized packets.
	SyncResolutionMS int `json:"sync_resolution_ms"`
	// ContextRefreshSeconds is how often weather and price are refreshed.
	ContextRefreshSeconds int `json:"context_refresh_seconds"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.MaxRateOfChange <= 0 {
		c.MaxRateOfChange = DefaultMaxRateOfChange
	}
	if c.DriftWindow <= 1 {
		c.DriftWindow = DefaultDriftWindow
	}
	if c.DriftSigma <= 0 {
		c.DriftSigma = DefaultDriftSigma
	}
	if c.VerifiedThreshold <= 0 || c.VerifiedThreshold > 1 {
		c.VerifiedThreshold = DefaultVerifiedThreshold
	}
	if c.SyncResolutionMS <= 0 {
		c.SyncResolutionMS = int(DefaultSyncResolution / time.Millisecond)
	}
	if c.ContextRefreshSeconds <= 0 {
		c.ContextRefreshSeconds = int(DefaultContextRefresh / time.Second)
	}
}

// Validate rejects negative check thresholds.
func (c Config) Validate() error {
	if c.OutlierSigma < 0 || c.MaxJitter < 0 {
		return errors.New("trust: outlier_sigma and max_jitter must not be negative")
	}
	return nil
}

func (c Config) SyncResolution() time.Duration {
	return time.Duration(c.SyncResolutionMS) * time.Millisecond
}

func (c Config) ContextRefresh() time.Duration {
	return time.Duration(c.ContextRefreshSeconds) * time.Second
}

// Pipeline enriches raw measurements with a credibility score.
type Pipeline struct {
	cfg     Config
	adv     *AdversarialFilter
	drift   *DriftMonitor
	outlier *OutlierDetector
	sync    *Synchronizer
	now     func() time.Time
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used for missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithSynchronizer attaches grid context to every enriched packet.
func WithSynchronizer(s *Synchronizer) Option {
	return func(p *Pipeline) { p.sync = s }
}

// NewPipeline builds a pipeline from cfg. Zero fields take defaults.
func NewPipeline(cfg Config, opts ...Option) *Pipeline {
	cfg.SetDefaults()
	p := &Pipeline{
		cfg:     cfg,
		adv:     NewAdversarialFilter(cfg.MaxRateOfChange),
		drift:   NewDriftMonitor(cfg.DriftWindow, cfg.DriftSigma),
		outlier: NewOutlierDetector(cfg.DriftWindow, cfg.OutlierSigma, cfg.MaxJitter),
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Threshold returns the credibility needed for a packet to be verified.
func (p *Pipeline) Threshold() float64 { return p.cfg.VerifiedThreshold }

// Enrich scores a single measurement. It never fails: anomalies lower the
// credibility and are reported through flags.
func (p *Pipeline) Enrich(m model.Measurement) model.TelemetryPacket {
	pkt := model.TelemetryPacket{
		AssetID:          m.AssetID,
		Value:            m.Value,
		Timestamp:        m.Timestamp,
		CredibilityScore: 1.0,
	}
	if pkt.Timestamp.IsZero() {
		pkt.Timestamp = p.now()
		pkt.Flags = append(pkt.Flags, FlagTimestampDefault)
	}

	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		pkt.Value = 0
		pkt.CredibilityScore *= adversarialPenalty
		pkt.Flags = append(pkt.Flags, FlagInputAnomaly)
		return p.finish(pkt)
	}

	v := p.adv.Check(m.AssetID, m.Value, pkt.Timestamp)
	if !v.Valid {
		pkt.CredibilityScore *= adversarialPenalty
		pkt.Flags = append(pkt.Flags, v.Flags...)
		return p.finish(pkt)
	}

	if p.outlier.Enabled() {
		st := p.outlier.Observe(m.AssetID, m.Value)
		if st.Outlier {
			pkt.CredibilityScore *= outlierPenalty
			pkt.Flags = append(pkt.Flags, FlagOutlier)
		}
		if st.Jittery {
			pkt.CredibilityScore *= jitterPenalty
			pkt.Flags = append(pkt.Flags, FlagJitter)
		}
	}

	ds := p.drift.Observe(m.AssetID, m.Value)
	if ds.Evaluated && !ds.Stable {
		pkt.CredibilityScore *= math.Max(minDriftFactor, 1-ds.Shift*driftPenaltySlope)
		pkt.Flags = append(pkt.Flags, FlagDrift)
	}
	return p.finish(pkt)
}

func (p *Pipeline) finish(pkt model.TelemetryPacket) model.TelemetryPacket {
	pkt.CredibilityScore = model.Clamp01(pkt.CredibilityScore)
	pkt.Verified = pkt.CredibilityScore >= p.cfg.VerifiedThreshold
	if p.sync != nil {
		pkt = p.sync.Attach(pkt)
	}
	return pkt
}

// Accept reports whether a packet may be used downstream.
func (p *Pipeline) Accept(pkt model.TelemetryPacket) bool {
	return pkt.CredibilityScore >= p.cfg.VerifiedThreshold
}

// Forget drops all state held for an asset.
func (p *Pipeline) Forget(assetID string) {
	p.adv.Forget(assetID)
	p.drift.Forget(assetID)
	p.outlier.Forget(assetID)
}
