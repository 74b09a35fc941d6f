// Package config holds the runtime playback configuration: frame-rate
// normalization, global scaling and the pose smoothing rates. Values are
// loaded from YAML files with the same defaulting convention as the rest of
// the project's config files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level runtime configuration.
type Config struct {
	// FPS is the frame-rate the smoothing rates are normalized against.
	// Blend steps scale with dt*FPS so a rate of 1.0 converges in one frame
	// at this rate regardless of the actual tick length.
	FPS float64 `yaml:"fps"`

	// GlobalScale is applied on top of every skeleton's own scale.
	GlobalScale float64 `yaml:"global_scale"`

	// AngleSmoothingSpeed is the skeleton-level rate used when easing the
	// whole skeleton toward a target angle.
	AngleSmoothingSpeed float64 `yaml:"angle_smoothing_speed"`

	Smoothing SmoothingConfig `yaml:"smoothing"`
}

// SmoothingConfig configures the per-bone pose blending.
type SmoothingConfig struct {
	// BetweenAnimations are the blend rates applied right after an animation
	// switch. Lower values ease longer; 1.0 snaps immediately.
	BetweenAnimations RateConfig `yaml:"between_animations"`

	// SettleDuration is the length of the fast-settle window in time units.
	// While it counts down, rates are interpolated from the
	// between-animations values back to 1.0.
	SettleDuration float64 `yaml:"settle_duration"`
}

// RateConfig holds one blend rate per property group. Rates are in (0, 1].
type RateConfig struct {
	Position float64 `yaml:"position"`
	Angle    float64 `yaml:"angle"`
	Scale    float64 `yaml:"scale"`
}

// Default returns the configuration used when no config file is provided.
func Default() *Config {
	return &Config{
		FPS:                 60,
		GlobalScale:         1.0,
		AngleSmoothingSpeed: 10.0,
		Smoothing: SmoothingConfig{
			BetweenAnimations: RateConfig{
				Position: 0.15,
				Angle:    0.15,
				Scale:    0.15,
			},
			SettleDuration: 5,
		},
	}
}

// Load reads a YAML configuration file. Missing fields keep their defaults.
//
// Parameters:
//   - path: 配置文件路径 (path to the config file)
//
// Returns:
//   - *Config: The merged configuration
//   - error: Read or parse error, or nil if successful
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	cfg.fillZero()
	return cfg, nil
}

// fillZero restores defaults for fields an explicit config left at zero.
// A zero blend rate would freeze every bone, which no valid config wants.
func (c *Config) fillZero() {
	d := Default()
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.GlobalScale == 0 {
		c.GlobalScale = d.GlobalScale
	}
	if c.AngleSmoothingSpeed == 0 {
		c.AngleSmoothingSpeed = d.AngleSmoothingSpeed
	}
	if c.Smoothing.SettleDuration == 0 {
		c.Smoothing.SettleDuration = d.Smoothing.SettleDuration
	}
	b := &c.Smoothing.BetweenAnimations
	if b.Position == 0 {
		b.Position = d.Smoothing.BetweenAnimations.Position
	}
	if b.Angle == 0 {
		b.Angle = d.Smoothing.BetweenAnimations.Angle
	}
	if b.Scale == 0 {
		b.Scale = d.Smoothing.BetweenAnimations.Scale
	}
}
