package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/gridpilot/core/metrics"
)

type lineCapture struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCapture) handler(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.lines = append(c.lines, strings.TrimSpace(string(b)))
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (c *lineCapture) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestInfluxSink_RecordDecision(t *testing.T) {
	c := &lineCapture{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "t", Org: "o", Bucket: "b"})
	defer sink.Close()
	now := time.Unix(1700000000, 0)
	err := sink.RecordDecision(coremetrics.DecisionRecord{
		DecisionID: "d1", Scenario: "normal", Strategy: "Green", Score: 0.12345,
		CostTotal: 4000, Reliability: 1, Safe: true, Time: now,
	})
	require.NoError(t, err)

	lines := c.all()
	require.Len(t, lines, 1)
	line := lines[0]
	assert.True(t, strings.HasPrefix(line, "decision,"), line)
	assert.Contains(t, line, "scenario=normal")
	assert.Contains(t, line, "strategy=Green")
	assert.Contains(t, line, "score=0.123")
	assert.Contains(t, line, "safe=true")
	assert.Contains(t, line, `decision_id="d1"`)
	assert.True(t, strings.HasSuffix(line, "1700000000000000000"), line)
}

func TestInfluxSink_RecordTelemetryAndStrategy(t *testing.T) {
	c := &lineCapture{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "t", Org: "o", Bucket: "b"})
	defer sink.Close()
	now := time.Now()
	require.NoError(t, sink.RecordTelemetry(coremetrics.TelemetryRecord{
		AssetID: "L1", Value: 12.5, Credibility: 0.1, Flags: []string{"adversarial alert"}, Time: now,
	}))
	require.NoError(t, sink.RecordStrategy(coremetrics.StrategyRecord{
		Scenario: "normal", Action: "lp_failure", Error: "infeasible", Time: now,
	}))

	lines := c.all()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "telemetry,")
	assert.Contains(t, lines[0], "asset_id=L1")
	assert.Contains(t, lines[0], `flags="adversarial alert"`)
	assert.Contains(t, lines[0], "verified=false")
	assert.Contains(t, lines[1], "dispatch_strategy,")
	assert.Contains(t, lines[1], "action=lp_failure")
	assert.Contains(t, lines[1], `error="infeasible"`)
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket", Timeout: time.Second})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
