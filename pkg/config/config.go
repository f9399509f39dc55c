// Package config loads segnet settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no config path is
// given.
const EnvPath = "SEGNET_CONFIG"

// DefaultEvalTimeout bounds a scene script evaluation when no timeout is
// configured.
const DefaultEvalTimeout = 5 * time.Second

// Config is the root configuration.
type Config struct {
	Wall    WallConfig    `yaml:"wall"`
	Road    RoadConfig    `yaml:"road"`
	Network NetworkConfig `yaml:"network"`
	Engine  EngineConfig  `yaml:"engine"`
	Log     LogConfig     `yaml:"log"`
	Output  OutputConfig  `yaml:"output"`
}

// WallConfig sets the shape of every wall a scene creates.
type WallConfig struct {
	Height    float32 `yaml:"height"`
	Width     float32 `yaml:"width"`
	CapBottom bool    `yaml:"cap_bottom"`
}

// HalfWidth returns half the wall thickness.
func (w WallConfig) HalfWidth() float32 {
	return w.Width / 2
}

// RoadConfig sets the shape of every road a scene creates.
type RoadConfig struct {
	HalfWidth float32 `yaml:"half_width"`
	Elevation float32 `yaml:"elevation"`
}

// NetworkConfig controls how segments are joined into a network.
type NetworkConfig struct {
	// SnapTolerance is how close a new endpoint must be to an existing
	// junction to be joined to it.
	SnapTolerance float32 `yaml:"snap_tolerance"`
}

// EngineConfig controls scene script evaluation.
type EngineConfig struct {
	// Timeout is how long one evaluation may run, for example "5s".
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig selects the log level, encoding and optional rotated file.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or console
	File       string `yaml:"file"`   // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// OutputConfig controls how the mesh result is written.
type OutputConfig struct {
	Compress bool `yaml:"compress"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Wall: WallConfig{
			Height: 2.8,
			Width:  0.15,
		},
		Road: RoadConfig{
			HalfWidth: 2,
			Elevation: 0.001,
		},
		Network: NetworkConfig{
			SnapTolerance: 0.05,
		},
		Engine: EngineConfig{
			Timeout: DefaultEvalTimeout,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a YAML file on top of the defaults. If path is empty the
// SEGNET_CONFIG environment variable is used; if that is empty too the
// defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPath)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var err error
	if !(c.Wall.Height > 0) {
		err = multierr.Append(err, fmt.Errorf("wall.height must be positive, got %g", c.Wall.Height))
	}
	if !(c.Wall.Width > 0) {
		err = multierr.Append(err, fmt.Errorf("wall.width must be positive, got %g", c.Wall.Width))
	}
	if !(c.Road.HalfWidth > 0) {
		err = multierr.Append(err, fmt.Errorf("road.half_width must be positive, got %g", c.Road.HalfWidth))
	}
	if c.Road.Elevation < 0 {
		err = multierr.Append(err, fmt.Errorf("road.elevation must not be negative, got %g", c.Road.Elevation))
	}
	if c.Network.SnapTolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("network.snap_tolerance must not be negative, got %g", c.Network.SnapTolerance))
	}
	if c.Engine.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return err
}
