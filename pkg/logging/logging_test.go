package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/segnet/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Debug("regenerated", zap.Int("segment", 3))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "regenerated", entry["msg"])
	assert.Equal(t, float64(3), entry["segment"])
}

func TestBuildRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestBuildWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segnet.log")
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	l.Info("to file")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"to file"`), "file content: %s", data)
}

func TestBuildErrors(t *testing.T) {
	_, err := build(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = build(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
