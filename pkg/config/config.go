// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/winreel/pkg/pipeline"
	"github.com/user/winreel/pkg/ports"
)

// Config represents the full configuration for winreel.
type Config struct {
	// Output
	OutputPath string `yaml:"output"`

	// Capture target
	Target     string `yaml:"target"`
	Display    int    `yaml:"display"`
	URL        string `yaml:"url"`
	ChromePath string `yaml:"chrome_path"`

	// Recording
	FPS        int     `yaml:"fps"`
	MaxSeconds int     `yaml:"max_seconds"`
	Scale      float64 `yaml:"scale"`
	Stamp      bool    `yaml:"stamp"`

	// Encoding
	Quality float64 `yaml:"quality"`
	Bitrate int     `yaml:"bitrate"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	s := pipeline.DefaultSession()
	return Config{
		OutputPath: s.OutputPath,
		Target:     string(s.Target),
		Display:    s.Display,
		FPS:        s.FPS,
		Scale:      s.Scale,
		Quality:    s.Quality,
		DebugDir:   "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file, layered over the
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	// Millisecond timestamps are i*1000/fps; above 1000 fps they stop
	// being distinct, and the tick interval collapses toward zero.
	if c.FPS < 1 || c.FPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000, got %d", c.FPS)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	if c.Quality < 0 || c.Quality > 1 {
		return fmt.Errorf("quality must be in [0,1], got %g", c.Quality)
	}
	if c.Bitrate < 0 {
		return fmt.Errorf("bitrate must not be negative, got %d", c.Bitrate)
	}
	if c.MaxSeconds < 0 {
		return fmt.Errorf("max_seconds must not be negative, got %d", c.MaxSeconds)
	}
	switch ports.TargetKind(c.Target) {
	case ports.TargetDisplay:
		if c.Display < 0 {
			return fmt.Errorf("display index must not be negative, got %d", c.Display)
		}
	case ports.TargetPage:
		if c.URL == "" {
			return fmt.Errorf("url is required for page capture")
		}
	default:
		return fmt.Errorf("unknown capture target %q", c.Target)
	}
	return nil
}

// ToSession converts Config to a pipeline.Session.
func (c Config) ToSession() pipeline.Session {
	return pipeline.Session{
		OutputPath: c.OutputPath,
		FPS:        c.FPS,
		Scale:      c.Scale,
		Quality:    c.Quality,
		Bitrate:    c.Bitrate,
		Target:     ports.TargetKind(c.Target),
		Display:    c.Display,
		PageURL:    c.URL,
		Stamp:      c.Stamp,
	}
}
