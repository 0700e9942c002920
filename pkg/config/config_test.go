package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/winreel/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.OutputPath != "animation.mov" {
		t.Errorf("default output %q", cfg.OutputPath)
	}
	if cfg.FPS != 10 {
		t.Errorf("default fps %d", cfg.FPS)
	}
	if cfg.Scale != 0.5 {
		t.Errorf("default scale %g", cfg.Scale)
	}
	if cfg.Target != string(ports.TargetDisplay) {
		t.Errorf("default target %q", cfg.Target)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
output: session.avi
target: page
url: https://example.com/
fps: 24
scale: 1.0
quality: 0.8
stamp: true
`
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.OutputPath != "session.avi" {
		t.Errorf("output %q", cfg.OutputPath)
	}
	if cfg.Target != "page" || cfg.URL != "https://example.com/" {
		t.Errorf("target %q url %q", cfg.Target, cfg.URL)
	}
	if cfg.FPS != 24 || cfg.Scale != 1.0 || cfg.Quality != 0.8 {
		t.Errorf("fps %d scale %g quality %g", cfg.FPS, cfg.Scale, cfg.Quality)
	}
	if !cfg.Stamp {
		t.Error("stamp not set")
	}
	// Unspecified keys keep their defaults.
	if cfg.DebugDir != "./debug" {
		t.Errorf("debug dir %q", cfg.DebugDir)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero fps", func(c *Config) { c.FPS = 0 }, false},
		{"fps above timestamp resolution", func(c *Config) { c.FPS = 1001 }, false},
		{"fps at timestamp resolution", func(c *Config) { c.FPS = 1000 }, true},
		{"negative scale", func(c *Config) { c.Scale = -0.5 }, false},
		{"quality above one", func(c *Config) { c.Quality = 1.5 }, false},
		{"negative bitrate", func(c *Config) { c.Bitrate = -100 }, false},
		{"empty output", func(c *Config) { c.OutputPath = "" }, false},
		{"unknown target", func(c *Config) { c.Target = "webcam" }, false},
		{"page without url", func(c *Config) { c.Target = "page" }, false},
		{"page with url", func(c *Config) { c.Target = "page"; c.URL = "https://example.com/" }, true},
		{"negative display", func(c *Config) { c.Display = -1 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestToSession(t *testing.T) {
	cfg := Defaults()
	cfg.OutputPath = "rec.mp4"
	cfg.FPS = 15
	cfg.Quality = 0.9
	cfg.Bitrate = 2000
	cfg.Stamp = true

	s := cfg.ToSession()
	if s.OutputPath != "rec.mp4" || s.FPS != 15 || s.Quality != 0.9 || s.Bitrate != 2000 {
		t.Errorf("session %+v does not mirror config", s)
	}
	if !s.Stamp {
		t.Error("stamp not carried over")
	}
	if s.Target != ports.TargetDisplay {
		t.Errorf("target %q", s.Target)
	}
}
