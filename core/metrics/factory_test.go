package metrics_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridpilot/core/factory"
	metrics "github.com/kilianp07/gridpilot/core/metrics"
	_ "github.com/kilianp07/gridpilot/infra/metrics"
)

func TestNewMetricsSink_Counts(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	if _, ok := s.(*metrics.MultiSink); ok {
		t.Fatal("single config should not be wrapped")
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "carbon"}})
	if err != nil {
		t.Fatalf("multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok || len(m.Sinks) != 2 {
		t.Fatalf("expected MultiSink with 2 sinks, got %T", s)
	}
}

func TestMetricsConfig_YAML(t *testing.T) {
	data := `prometheus_port: "9100"
sinks:
  - type: nop
  - type: carbon
    conf:
      retention_days: 7
`
	var cfg metrics.Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if len(cfg.Sinks) != 2 || cfg.Sinks[1].Conf["retention_days"] != 7 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestMetricsConfig_UnknownType(t *testing.T) {
	var cfg metrics.Config
	if err := json.Unmarshal([]byte(`{"sinks":[{"type":"missing"}]}`), &cfg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestSinkTypes(t *testing.T) {
	names := metrics.SinkTypes()
	want := map[string]bool{"nop": false, "prometheus": false, "influx": false, "carbon": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Fatalf("sink %s not registered (have %v)", n, names)
		}
	}
}
