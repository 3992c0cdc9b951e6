package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkConf struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
	Retries int           `json:"retries"`
}

func TestRegistry_CreateDecodes(t *testing.T) {
	reg := NewRegistry[sinkConf]()
	require.NoError(t, reg.Register("influx", func(conf map[string]any) (sinkConf, error) {
		var c sinkConf
		err := Decode(conf, &c)
		return c, err
	}))

	got, err := reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{
		"url":     "http://influx:8086",
		"timeout": "3s",
		"retries": "2",
	}})
	require.NoError(t, err)
	assert.Equal(t, "http://influx:8086", got.URL)
	assert.Equal(t, 3*time.Second, got.Timeout)
	assert.Equal(t, 2, got.Retries)
}

func TestRegistry_NilConf(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("len", func(conf map[string]any) (int, error) {
		if conf == nil {
			return 0, errors.New("nil conf")
		}
		return len(conf), nil
	}))
	n, err := reg.Create(ModuleConfig{Type: "len"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }))
	assert.Error(t, reg.Register("y", nil))
	assert.Error(t, reg.Register("", func(map[string]any) (int, error) { return 0, nil }))

	_, err := reg.Create(ModuleConfig{Type: "missing"})
	assert.Error(t, err)

	boom := errors.New("boom")
	require.NoError(t, reg.Register("bad", func(map[string]any) (int, error) { return 0, boom }))
	_, err = reg.Create(ModuleConfig{Type: "bad"})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"bad", "x"}, reg.Names())
}
