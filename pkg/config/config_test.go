package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.FPS != 60 {
		t.Errorf("Expected FPS=60, got %g", cfg.FPS)
	}
	if cfg.GlobalScale != 1.0 {
		t.Errorf("Expected GlobalScale=1.0, got %g", cfg.GlobalScale)
	}
	if cfg.AngleSmoothingSpeed != 10.0 {
		t.Errorf("Expected AngleSmoothingSpeed=10.0, got %g", cfg.AngleSmoothingSpeed)
	}
	if cfg.Smoothing.BetweenAnimations.Position != 0.15 {
		t.Errorf("Expected between-animation position rate 0.15, got %g",
			cfg.Smoothing.BetweenAnimations.Position)
	}
	if cfg.Smoothing.SettleDuration != 5 {
		t.Errorf("Expected SettleDuration=5, got %g", cfg.Smoothing.SettleDuration)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("no/such/config.yaml"); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("fps: [not a number"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected a parse error for invalid YAML")
	}
}

// A partial config overrides only the fields it names; everything else keeps
// its default.
func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	content := `
fps: 30
smoothing:
  between_animations:
    angle: 0.3
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.FPS != 30 {
		t.Errorf("Expected overridden FPS=30, got %g", cfg.FPS)
	}
	if cfg.Smoothing.BetweenAnimations.Angle != 0.3 {
		t.Errorf("Expected overridden angle rate 0.3, got %g",
			cfg.Smoothing.BetweenAnimations.Angle)
	}
	if cfg.GlobalScale != 1.0 {
		t.Errorf("Expected default GlobalScale=1.0, got %g", cfg.GlobalScale)
	}
	if cfg.Smoothing.BetweenAnimations.Position != 0.15 {
		t.Errorf("Expected default position rate 0.15, got %g",
			cfg.Smoothing.BetweenAnimations.Position)
	}
	if cfg.Smoothing.SettleDuration != 5 {
		t.Errorf("Expected default SettleDuration=5, got %g", cfg.Smoothing.SettleDuration)
	}
}

// A zero blend rate would freeze every bone; explicit zeros fall back to the
// defaults like absent fields do.
func TestLoad_ZeroRatesRestored(t *testing.T) {
	content := `
smoothing:
  between_animations:
    position: 0
    angle: 0
    scale: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	b := cfg.Smoothing.BetweenAnimations
	if b.Position != 0.15 || b.Angle != 0.15 || b.Scale != 0.15 {
		t.Errorf("Expected zero rates restored to 0.15, got %+v", b)
	}
}
