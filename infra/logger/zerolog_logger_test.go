package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"asset": "L1"})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := newZerolog(&buf, zerolog.DebugLevel, "engine")
	l.Infow("evaluated", map[string]any{"scenario": "normal", "score": 0.5})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["component"])
	assert.Equal(t, "normal", line["scenario"])
	assert.Equal(t, "evaluated", line["message"])
}

func TestZerologLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := newZerolog(&buf, zerolog.WarnLevel, "x")
	l.Infof("hidden")
	assert.Zero(t, buf.Len())
	l.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigure_File(t *testing.T) {
	t.Cleanup(func() { _ = Configure(Options{}) })
	path := filepath.Join(t.TempDir(), "logs", "gridpilot.log")
	require.NoError(t, Configure(Options{Level: "debug", File: path, MaxSizeMB: 1}))
	New("file").Debugf("to file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	assert.Error(t, Configure(Options{Level: "loud"}))
}
