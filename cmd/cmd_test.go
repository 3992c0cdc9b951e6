package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpilot/core/model"
	"github.com/kilianp07/gridpilot/core/physics"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSimulateReactorApproachesTarget(t *testing.T) {
	ctrl := physics.NewReactorController(physics.BSR220())
	samples := simulateReactor(ctrl, 180, 40, 1)
	require.Len(t, samples, 40)
	first, last := samples[0].State.PowerOutputMW, samples[39].State.PowerOutputMW
	if !(first < 220 && last < first && last > 179) {
		t.Fatalf("unexpected trajectory %.2f -> %.2f", first, last)
	}
}

func TestReactorCommandJSON(t *testing.T) {
	out, err := execute(t, "reactor", "--steps", "3", "--json")
	require.NoError(t, err)
	var got []reactorSample
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, 3, got[2].Step)
	assert.Less(t, got[0].State.PowerOutputMW, 220.0)
	reactorOpts.json = false
}

func TestReactorCommandTable(t *testing.T) {
	out, err := execute(t, "reactor", "--steps", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "STEP"))
}

func TestEvaluateCommand(t *testing.T) {
	out, err := execute(t, "evaluate", "--fixture", "../internal/fixture/testdata/heatwave.yaml")
	require.NoError(t, err)
	var dec model.DecisionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &dec))
	assert.False(t, dec.Degraded)
	assert.NotEmpty(t, dec.RecommendedAction)
}

func TestEvaluateCommandHTMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decision.html")
	_, err := execute(t, "evaluate", "--fixture", "../internal/fixture/testdata/heatwave.yaml", "--format", "html", "--out", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
	evalOpts.format, evalOpts.out = "json", ""
}

func TestEvaluateCommandRejectsCSV(t *testing.T) {
	_, err := execute(t, "evaluate", "--fixture", "../internal/fixture/testdata/heatwave.yaml", "--format", "csv")
	assert.Error(t, err)
	evalOpts.format = "json"
}

func TestForecastCommandCSV(t *testing.T) {
	out, err := execute(t, "forecast", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 25)
	assert.Equal(t, "timestamp,demand_mw", lines[0])
	forecastOpts.format = "json"
}

func TestForecastPricesWithoutMarket(t *testing.T) {
	_, err := execute(t, "forecast", "--prices")
	assert.Error(t, err)
	forecastOpts.prices = false
}
