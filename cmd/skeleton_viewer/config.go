// cmd/skeleton_viewer/config.go
// Configuration loading for the skeleton viewer.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WindowConfig controls the viewer window.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// PlaybackConfig controls the simulation rate.
type PlaybackConfig struct {
	TPS int `yaml:"tps"` // ticks per second (游戏目标 TPS)
}

// UnitConfig describes one loadable skeleton project.
type UnitConfig struct {
	Name             string  `yaml:"name"`
	Dir              string  `yaml:"dir"` // project directory holding <name>_ske.json / _tex.json / _tex.png
	DefaultAnimation string  `yaml:"default_animation"`
	Scale            float64 `yaml:"scale"`
}

// ViewerConfig is the complete viewer configuration.
type ViewerConfig struct {
	Window   WindowConfig   `yaml:"window"`
	Playback PlaybackConfig `yaml:"playback"`
	Skeleton string         `yaml:"skeleton"` // optional path to a skeleton tuning config
	Units    []UnitConfig   `yaml:"units"`
}

// LoadViewerConfig reads and validates the viewer configuration file.
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ViewerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Window.Width <= 0 {
		cfg.Window.Width = 800
	}
	if cfg.Window.Height <= 0 {
		cfg.Window.Height = 600
	}
	if cfg.Window.Title == "" {
		cfg.Window.Title = "Skeleton Viewer"
	}
	if cfg.Playback.TPS <= 0 {
		cfg.Playback.TPS = 60
	}
	if len(cfg.Units) == 0 {
		return nil, fmt.Errorf("config has no units")
	}
	for i := range cfg.Units {
		if cfg.Units[i].Dir == "" {
			return nil, fmt.Errorf("unit %q has no dir", cfg.Units[i].Name)
		}
		if cfg.Units[i].Scale == 0 {
			cfg.Units[i].Scale = 1.0
		}
	}

	return &cfg, nil
}
