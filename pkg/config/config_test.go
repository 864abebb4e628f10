package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

func TestDefaults(t *testing.T) {
	s, err := NewConfig().Settings()
	require.NoError(t, err)

	assert.Equal(t, 5, s.Threshold)
	assert.Equal(t, 0.8, s.Alpha)
	assert.Equal(t, "louvain", s.Detector)
	assert.Equal(t, 1.0, s.Resolution)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, 10, s.MaxLevels)
	assert.Equal(t, 100, s.MaxIterations)
	assert.False(t, s.Directed)
	assert.Equal(t, 16, s.CacheSize)
	assert.Empty(t, s.StorePath)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commfilter.yaml")
	content := `
pipeline:
  threshold: 3
  alpha: 0.5
detector:
  name: components
store:
  path: /tmp/runs.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	s, err := cfg.Settings()
	require.NoError(t, err)

	assert.Equal(t, 3, s.Threshold)
	assert.Equal(t, 0.5, s.Alpha)
	assert.Equal(t, "components", s.Detector)
	assert.Equal(t, "/tmp/runs.db", s.StorePath)
	assert.Equal(t, 10, s.MaxLevels, "unset keys keep defaults")

	assert.Error(t, NewConfig().LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("COMMFILTER_PIPELINE_THRESHOLD", "7")
	t.Setenv("COMMFILTER_DETECTOR_NAME", "modularity")

	s, err := NewConfig().Settings()
	require.NoError(t, err)
	assert.Equal(t, 7, s.Threshold)
	assert.Equal(t, "modularity", s.Detector)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"zero threshold", "pipeline.threshold", 0},
		{"negative threshold", "pipeline.threshold", -2},
		{"alpha above one", "pipeline.alpha", 1.5},
		{"unknown detector", "detector.name", "leiden"},
		{"zero resolution", "detector.resolution", 0.0},
		{"too many levels", "detector.max_levels", 500},
		{"empty cache", "cache.size", 0},
		{"bad log level", "logging.level", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Set(tt.key, tt.value)
			_, err := cfg.Settings()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestThresholdError(t *testing.T) {
	for _, threshold := range []int{0, -2} {
		cfg := NewConfig()
		cfg.Set("pipeline.threshold", threshold)
		_, err := cfg.Settings()
		assert.ErrorIs(t, err, membership.ErrInvalidThreshold, "threshold %d", threshold)
	}
}

func TestCreateLogger(t *testing.T) {
	cfg := NewConfig()
	cfg.Set("logging.level", "warn")

	var buf bytes.Buffer
	logger := cfg.CreateLoggerTo(&buf)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "commfilter")
}
