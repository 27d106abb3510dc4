package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultMatchesDemoConstants(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Epochs != 5000 || cfg.BatchSize != 64 || cfg.NIdeas != 5 || cfg.ArtComponents != 15 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.LRG != 0.0001 || cfg.LRD != 0.0001 || cfg.DomainMin != -1 || cfg.DomainMax != 1 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RedrawEvery != 50 {
		t.Fatalf("expected redraw every 50, got %d", cfg.RedrawEvery)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, "# small run\nepochs: 10\nbatch_size: 4\nseed: 7\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Epochs != 10 || cfg.BatchSize != 4 || cfg.Seed != 7 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ArtComponents != ArtComponents || cfg.LogEvery != RedrawEvery {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "epochs: 10\nwarp_factor: 9\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "warp_factor") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Epochs != Epochs {
		t.Fatalf("expected default epochs, got %d", cfg.Epochs)
	}
}

func TestValidateAllowsZeroEpochs(t *testing.T) {
	cfg := Default()
	cfg.Epochs = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero epochs should be valid: %v", err)
	}
	cfg.Epochs = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative epochs should be rejected")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{Epochs: 20, Seed: 3})
	if cfg.Epochs != 20 || cfg.Seed != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	cfg.ApplyOverrides(Overrides{})
	if cfg.Epochs != 20 || cfg.Seed != 3 {
		t.Fatalf("zero overrides changed config: %+v", cfg)
	}
}
