package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for a run.
const (
	Epochs        = 5000
	BatchSize     = 64
	LRG           = 0.0001
	LRD           = 0.0001
	NIdeas        = 5
	ArtComponents = 15
	HiddenUnits   = 128
	DomainMin     = -1.0
	DomainMax     = 1.0
	RedrawEvery   = 50
)

// Config captures the knobs for a training run.
type Config struct {
	Epochs        int     `yaml:"epochs"`
	BatchSize     int     `yaml:"batch_size"`
	LRG           float64 `yaml:"lr_g"`
	LRD           float64 `yaml:"lr_d"`
	NIdeas        int     `yaml:"n_ideas"`
	ArtComponents int     `yaml:"art_components"`
	HiddenUnits   int     `yaml:"hidden_units"`
	DomainMin     float64 `yaml:"domain_min"`
	DomainMax     float64 `yaml:"domain_max"`
	RedrawEvery   int     `yaml:"redraw_every"`
	LogEvery      int     `yaml:"log_every"`
	Seed          int64   `yaml:"seed"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Epochs int
	Seed   int64
}

// Default returns the demo's built-in configuration.
func Default() *Config {
	return &Config{
		Epochs:        Epochs,
		BatchSize:     BatchSize,
		LRG:           LRG,
		LRD:           LRD,
		NIdeas:        NIdeas,
		ArtComponents: ArtComponents,
		HiddenUnits:   HiddenUnits,
		DomainMin:     DomainMin,
		DomainMax:     DomainMax,
		RedrawEvery:   RedrawEvery,
		LogEvery:      RedrawEvery,
	}
}

// Load reads a YAML file layered over Default and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.NIdeas <= 0 {
		return fmt.Errorf("n_ideas must be > 0 (got %d)", c.NIdeas)
	}
	if c.ArtComponents <= 0 {
		return fmt.Errorf("art_components must be > 0 (got %d)", c.ArtComponents)
	}
	if c.HiddenUnits <= 0 {
		return fmt.Errorf("hidden_units must be > 0 (got %d)", c.HiddenUnits)
	}
	if c.LRG <= 0 || c.LRD <= 0 {
		return fmt.Errorf("learning rates must be > 0 (got lr_g=%g lr_d=%g)", c.LRG, c.LRD)
	}
	if c.DomainMin >= c.DomainMax {
		return fmt.Errorf("domain_min must be < domain_max (got [%g, %g])", c.DomainMin, c.DomainMax)
	}
	if c.RedrawEvery <= 0 {
		c.RedrawEvery = RedrawEvery
	}
	if c.LogEvery <= 0 {
		c.LogEvery = c.RedrawEvery
	}
	return nil
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
