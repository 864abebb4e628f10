// Package config loads pipeline settings with viper and builds the logger.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/graph-community-filter/pkg/membership"
	"github.com/gilchrisn/graph-community-filter/pkg/palette"
)

// EnvPrefix prefixes environment overrides, e.g. COMMFILTER_PIPELINE_THRESHOLD.
const EnvPrefix = "COMMFILTER"

// Config manages pipeline configuration using Viper.
type Config struct {
	v *viper.Viper
}

// Settings is the validated snapshot of a Config.
type Settings struct {
	Threshold     int     `mapstructure:"threshold" validate:"gte=1"`
	Alpha         float64 `mapstructure:"alpha" validate:"gte=0,lte=1"`
	Detector      string  `mapstructure:"detector" validate:"required,oneof=louvain modularity components betweenness"`
	Resolution    float64 `mapstructure:"resolution" validate:"gt=0"`
	Seed          int64   `mapstructure:"seed"`
	MaxLevels     int     `mapstructure:"max_levels" validate:"gte=1,lte=50"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"gte=1,lte=1000"`
	MaxRemovals   int     `mapstructure:"max_removals" validate:"gte=0"`
	Directed      bool    `mapstructure:"directed"`
	CacheSize     int     `mapstructure:"cache_size" validate:"gte=1"`
	StorePath     string  `mapstructure:"store_path"`
	LogLevel      string  `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
}

// NewConfig creates a new configuration with defaults.
func NewConfig() *Config {
	v := viper.New()

	v.SetDefault("pipeline.threshold", membership.DefaultThreshold)
	v.SetDefault("pipeline.alpha", palette.DefaultAlpha)

	v.SetDefault("detector.name", "louvain")
	v.SetDefault("detector.resolution", 1.0)
	v.SetDefault("detector.seed", 42)
	v.SetDefault("detector.max_levels", 10)
	v.SetDefault("detector.max_iterations", 100)
	v.SetDefault("detector.max_removals", 0)
	v.SetDefault("detector.directed", false)

	v.SetDefault("cache.size", 16)
	v.SetDefault("store.path", "")

	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// Getters
func (c *Config) Threshold() int       { return c.v.GetInt("pipeline.threshold") }
func (c *Config) Alpha() float64       { return c.v.GetFloat64("pipeline.alpha") }
func (c *Config) DetectorName() string { return c.v.GetString("detector.name") }
func (c *Config) Resolution() float64  { return c.v.GetFloat64("detector.resolution") }
func (c *Config) Seed() int64          { return c.v.GetInt64("detector.seed") }
func (c *Config) MaxLevels() int       { return c.v.GetInt("detector.max_levels") }
func (c *Config) MaxIterations() int   { return c.v.GetInt("detector.max_iterations") }
func (c *Config) MaxRemovals() int     { return c.v.GetInt("detector.max_removals") }
func (c *Config) Directed() bool       { return c.v.GetBool("detector.directed") }
func (c *Config) CacheSize() int       { return c.v.GetInt("cache.size") }
func (c *Config) StorePath() string    { return c.v.GetString("store.path") }
func (c *Config) LogLevel() string     { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Settings validates the configuration and returns a snapshot of it.
func (c *Config) Settings() (Settings, error) {
	s := Settings{
		Threshold:     c.Threshold(),
		Alpha:         c.Alpha(),
		Detector:      c.DetectorName(),
		Resolution:    c.Resolution(),
		Seed:          c.Seed(),
		MaxLevels:     c.MaxLevels(),
		MaxIterations: c.MaxIterations(),
		MaxRemovals:   c.MaxRemovals(),
		Directed:      c.Directed(),
		CacheSize:     c.CacheSize(),
		StorePath:     c.StorePath(),
		LogLevel:      c.LogLevel(),
	}

	if s.Threshold < 1 {
		return Settings{}, fmt.Errorf("invalid configuration: pipeline.threshold: %w: %d (must be at least 1)",
			membership.ErrInvalidThreshold, s.Threshold)
	}
	if err := validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

var validate = validator.New()

// CreateLogger creates a zerolog logger based on config, writing to stderr.
func (c *Config) CreateLogger() zerolog.Logger {
	return c.CreateLoggerTo(os.Stderr)
}

// CreateLoggerTo creates a console logger writing to w.
func (c *Config) CreateLoggerTo(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "commfilter").Logger()
}
